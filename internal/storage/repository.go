package storage

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/joelkehle/claimestimate/internal/claims"
)

// CachedEstimate is the last estimate shown for the current event. It is a
// convenience copy for re-rendering, never the authoritative state.
type CachedEstimate struct {
	Result    claims.EstimationResult `json:"result"`
	Degraded  bool                    `json:"degraded"`
	Language  claims.Language         `json:"language"`
	CreatedAt time.Time               `json:"createdAt"`
}

// Repository loads and saves domain values under keys from KeyFor. Values
// that fail to decode are logged and reported as absent.
type Repository struct {
	store Store
	log   *zap.Logger
}

func NewRepository(store Store, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{store: store, log: log}
}

func (r *Repository) Close() error { return r.store.Close() }

// Load decodes the value at key into out. ok is false when the key is
// missing or the stored bytes are not a valid encoding of out.
func (r *Repository) Load(ctx context.Context, key string, out any) (ok bool, err error) {
	blob, found, err := r.store.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(blob, out); err != nil {
		r.log.Warn("ignoring malformed stored value", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (r *Repository) Save(ctx context.Context, key string, value any) error {
	blob, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, key, blob)
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	return r.store.Delete(ctx, key)
}

func (r *Repository) LoadPolicies(ctx context.Context, userID string) ([]claims.Policy, bool, error) {
	key, err := KeyFor(Policies, userID)
	if err != nil {
		return nil, false, err
	}
	var ps []claims.Policy
	ok, err := r.Load(ctx, key, &ps)
	if !ok || err != nil {
		return []claims.Policy{}, false, err
	}
	if ps == nil {
		ps = []claims.Policy{}
	}
	for i := range ps {
		if ps[i].Riders == nil {
			ps[i].Riders = []claims.Rider{}
		}
	}
	return ps, true, nil
}

func (r *Repository) SavePolicies(ctx context.Context, userID string, ps []claims.Policy) error {
	key, err := KeyFor(Policies, userID)
	if err != nil {
		return err
	}
	if ps == nil {
		ps = []claims.Policy{}
	}
	return r.Save(ctx, key, ps)
}

func (r *Repository) LoadUserInfo(ctx context.Context, userID string) (claims.UserInfo, bool, error) {
	key, err := KeyFor(UserInfo, userID)
	if err != nil {
		return claims.UserInfo{}, false, err
	}
	var info claims.UserInfo
	ok, err := r.Load(ctx, key, &info)
	return info, ok, err
}

func (r *Repository) SaveUserInfo(ctx context.Context, userID string, info claims.UserInfo) error {
	key, err := KeyFor(UserInfo, userID)
	if err != nil {
		return err
	}
	return r.Save(ctx, key, info)
}

func (r *Repository) LoadCurrentEvent(ctx context.Context) (claims.MedicalEvent, bool, error) {
	key, _ := KeyFor(CurrentEvent, "")
	var e claims.MedicalEvent
	ok, err := r.Load(ctx, key, &e)
	if ok && e.EvidenceFiles == nil {
		e.EvidenceFiles = []claims.InlineDocument{}
	}
	return e, ok, err
}

func (r *Repository) SaveCurrentEvent(ctx context.Context, e claims.MedicalEvent) error {
	key, _ := KeyFor(CurrentEvent, "")
	if e.EvidenceFiles == nil {
		e.EvidenceFiles = []claims.InlineDocument{}
	}
	return r.Save(ctx, key, e)
}

func (r *Repository) ClearCurrentEvent(ctx context.Context) error {
	key, _ := KeyFor(CurrentEvent, "")
	if err := r.Delete(ctx, key); err != nil {
		return err
	}
	return r.ClearLastEstimate(ctx)
}

func (r *Repository) LoadCurrentUser(ctx context.Context) (claims.Identity, bool, error) {
	key, _ := KeyFor(CurrentUser, "")
	var id claims.Identity
	ok, err := r.Load(ctx, key, &id)
	if ok && id.ID == "" {
		return claims.Identity{}, false, nil
	}
	return id, ok, err
}

func (r *Repository) SaveCurrentUser(ctx context.Context, id claims.Identity) error {
	key, _ := KeyFor(CurrentUser, "")
	return r.Save(ctx, key, id)
}

func (r *Repository) ClearCurrentUser(ctx context.Context) error {
	key, _ := KeyFor(CurrentUser, "")
	return r.Delete(ctx, key)
}

func (r *Repository) LoadLastEstimate(ctx context.Context) (CachedEstimate, bool, error) {
	key, _ := KeyFor(LastEstimate, "")
	var c CachedEstimate
	ok, err := r.Load(ctx, key, &c)
	return c, ok, err
}

func (r *Repository) SaveLastEstimate(ctx context.Context, c CachedEstimate) error {
	key, _ := KeyFor(LastEstimate, "")
	return r.Save(ctx, key, c)
}

func (r *Repository) ClearLastEstimate(ctx context.Context) error {
	key, _ := KeyFor(LastEstimate, "")
	return r.Delete(ctx, key)
}
