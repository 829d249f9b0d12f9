package estimate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/evidence"
	"github.com/joelkehle/claimestimate/internal/oracle"
)

func TestRepairPolicyDraft(t *testing.T) {
	cases := []struct {
		raw  string
		want PolicyDraft
		ok   bool
	}{
		{`{"company":"南山人壽","mainPlanName":"新住院醫療","mainCoverageAmount":2000}`, PolicyDraft{"南山人壽", "新住院醫療", 2000}, true},
		{"```json\n{\"company\":\" Cathay \",\"mainCoverageAmount\":\"1,000,000\"}\n```", PolicyDraft{Company: "Cathay", MainCoverageAmount: 1000000}, true},
		{`{"company":3,"mainCoverageAmount":-10}`, PolicyDraft{}, true},
		{`no policy here`, PolicyDraft{}, false},
	}
	for _, tc := range cases {
		got, ok := RepairPolicyDraft(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestScannerScan(t *testing.T) {
	doc, err := evidence.Encode([]byte("%PDF-1.4 policy"), "")
	require.NoError(t, err)

	client := &fakeOracle{reply: `{"company":"Fubon","mainPlanName":"Cancer Care","mainCoverageAmount":300000}`}
	s := NewScanner(client, zaptest.NewLogger(t))
	draft, err := s.Scan(context.Background(), doc, claims.LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, PolicyDraft{"Fubon", "Cancer Care", 300000}, draft)
	assert.Equal(t, oracle.KindPolicyScan, client.seen.Kind)

	p := draft.Policy("Cancer")
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Cancer", p.MainPlanCategory)
	assert.NoError(t, claims.ValidatePolicy(p))
}

func TestScannerReturnsErrors(t *testing.T) {
	doc, err := evidence.Encode([]byte("\x89PNG\r\n\x1a\n...."), evidence.MediaPNG)
	require.NoError(t, err)

	s := NewScanner(&fakeOracle{reply: "sorry"}, nil)
	_, err = s.Scan(context.Background(), doc, claims.LangEnglish)
	assert.ErrorIs(t, err, ErrUnreadablePolicy)

	s = NewScanner(&fakeOracle{reply: `{}`}, nil)
	_, err = s.Scan(context.Background(), doc, claims.LangEnglish)
	assert.ErrorIs(t, err, ErrUnreadablePolicy)

	boom := claims.NewError(claims.CodeNetworkFailure, "down", errors.New("eof"))
	s = NewScanner(&fakeOracle{err: boom}, nil)
	_, err = s.Scan(context.Background(), doc, claims.LangEnglish)
	assert.ErrorIs(t, err, claims.ErrNetworkFailure)

	_, err = s.Scan(context.Background(), claims.InlineDocument{MediaType: "text/csv", Payload: "YQ=="}, claims.LangEnglish)
	assert.ErrorIs(t, err, claims.ErrUnsupportedMediaType)
}
