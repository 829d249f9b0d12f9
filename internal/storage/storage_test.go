package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/joelkehle/claimestimate/internal/claims"
)

func TestKeyFor(t *testing.T) {
	cases := []struct {
		res  Resource
		user string
		want string
	}{
		{Policies, "U1", "policies:U1"},
		{UserInfo, "U1", "userInfo:U1"},
		{CurrentEvent, "U1", "currentEvent"},
		{CurrentEvent, "", "currentEvent"},
		{CurrentUser, "", "currentUser"},
		{LastEstimate, "", "lastEstimate"},
	}
	for _, tc := range cases {
		got, err := KeyFor(tc.res, tc.user)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s/%s", tc.res, tc.user)
	}

	for _, res := range []Resource{Policies, UserInfo} {
		_, err := KeyFor(res, "  ")
		assert.ErrorIs(t, err, ErrMissingUser, res.String())
	}
	_, err := KeyFor(Resource(99), "U1")
	assert.Error(t, err)
}

func TestPoliciesAreNamespacedPerUser(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), zaptest.NewLogger(t))

	p := claims.NewPolicy("Cathay", "Medical", "", 100000)
	require.NoError(t, repo.SavePolicies(ctx, "U1", []claims.Policy{p}))

	got, ok, err := repo.LoadPolicies(ctx, "U2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)

	got, ok, err = repo.LoadPolicies(ctx, "U1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)

	require.NoError(t, repo.SaveUserInfo(ctx, "U1", claims.UserInfo{Name: "Amy", DOB: "1990-01-01"}))
	_, ok, err = repo.LoadUserInfo(ctx, "U2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = repo.LoadPolicies(ctx, "")
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestMalformedValueIsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewRepository(store, zaptest.NewLogger(t))

	require.NoError(t, store.Put(ctx, "policies:U1", []byte("{not json")))
	require.NoError(t, store.Put(ctx, "currentEvent", []byte(`{"hospitalizationDays":"five"}`)))
	require.NoError(t, store.Put(ctx, "currentUser", []byte(`{}`)))

	ps, ok, err := repo.LoadPolicies(ctx, "U1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotNil(t, ps)

	_, ok, err = repo.LoadCurrentEvent(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = repo.LoadCurrentUser(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCurrentEventIsSessionScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), nil)

	_, ok, err := repo.LoadCurrentEvent(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ev := claims.MedicalEvent{Diagnosis: "[疾病 (住院/門診)] flu", IncidentDate: "2026-01-02", TotalExpense: 100}
	require.NoError(t, repo.SaveCurrentEvent(ctx, ev))
	require.NoError(t, repo.SaveLastEstimate(ctx, CachedEstimate{Result: claims.EstimationResult{Summary: "s"}}))

	got, ok, err := repo.LoadCurrentEvent(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ev.Diagnosis, got.Diagnosis)
	assert.NotNil(t, got.EvidenceFiles)

	require.NoError(t, repo.ClearCurrentEvent(ctx))
	_, ok, _ = repo.LoadCurrentEvent(ctx)
	assert.False(t, ok)
	_, ok, _ = repo.LoadLastEstimate(ctx)
	assert.False(t, ok, "clearing the event drops the cached estimate too")
}

func TestStoreBackends(t *testing.T) {
	dir := t.TempDir()
	backends := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(dir, "state.json"), zaptest.NewLogger(t))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(dir, "state.db"))
			require.NoError(t, err)
			return s
		},
	}
	if addr := os.Getenv("CLAIMESTIMATE_TEST_REDIS_ADDR"); addr != "" {
		backends["redis"] = func(t *testing.T) Store {
			s, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr, Prefix: "claimestimate-test:"})
			require.NoError(t, err)
			return s
		}
	}
	if dsn := os.Getenv("CLAIMESTIMATE_TEST_POSTGRES_DSN"); dsn != "" {
		backends["postgres"] = func(t *testing.T) Store {
			s, err := NewPostgresStore(dsn)
			require.NoError(t, err)
			return s
		}
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			defer s.Close()

			_, ok, err := s.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Put(ctx, "policies:U1", []byte(`[1]`)))
			require.NoError(t, s.Put(ctx, "policies:U1", []byte(`[2]`)))
			v, ok, err := s.Get(ctx, "policies:U1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, `[2]`, string(v), "last writer wins")

			require.NoError(t, s.Delete(ctx, "policies:U1"))
			require.NoError(t, s.Delete(ctx, "policies:U1"))
			_, ok, err = s.Get(ctx, "policies:U1")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "etcd"}, nil)
	assert.Error(t, err)
	_, err = Open(context.Background(), Options{Backend: BackendSQLite}, nil)
	assert.Error(t, err)

	s, err := Open(context.Background(), Options{Backend: BackendMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}
