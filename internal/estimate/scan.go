package estimate

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/oracle"
)

// ErrUnreadablePolicy is returned by Scanner.Scan when the reply holds no
// usable policy fields.
var ErrUnreadablePolicy = errors.New("policy document could not be read")

// PolicyDraft is what a policy scan can recover. Riders are entered by hand.
type PolicyDraft struct {
	Company            string  `json:"company" yaml:"company"`
	MainPlanName       string  `json:"mainPlanName" yaml:"mainPlanName"`
	MainCoverageAmount float64 `json:"mainCoverageAmount" yaml:"mainCoverageAmount"`
}

func (d PolicyDraft) Empty() bool {
	return d.Company == "" && d.MainPlanName == "" && d.MainCoverageAmount == 0
}

// Policy turns the draft into a new policy with a fresh id.
func (d PolicyDraft) Policy(category string) claims.Policy {
	return claims.NewPolicy(d.Company, d.MainPlanName, category, d.MainCoverageAmount)
}

// RepairPolicyDraft is total like Repair. ok is false when no JSON object
// could be read. Coverage given as text such as "1,000,000" is accepted.
func RepairPolicyDraft(raw string) (draft PolicyDraft, ok bool) {
	obj, found := extractObject(raw)
	if !found {
		return PolicyDraft{}, false
	}
	draft.Company = strings.TrimSpace(text(obj[oracle.FieldCompany]))
	draft.MainPlanName = strings.TrimSpace(text(obj[oracle.FieldMainPlanName]))
	switch v := obj[oracle.FieldMainCoverageAmount].(type) {
	case float64:
		draft.MainCoverageAmount = v
	case string:
		if f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 64); err == nil {
			draft.MainCoverageAmount = f
		}
	}
	if draft.MainCoverageAmount < 0 {
		draft.MainCoverageAmount = 0
	}
	return draft, true
}

// Scanner reads policy documents through the oracle. Unlike estimation,
// failures come back as errors.
type Scanner struct {
	client oracle.Client
	log    *zap.Logger
}

func NewScanner(client oracle.Client, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{client: client, log: log}
}

func (s *Scanner) Scan(ctx context.Context, doc claims.InlineDocument, lang claims.Language) (PolicyDraft, error) {
	req, err := oracle.BuildScanRequest(doc, lang)
	if err != nil {
		return PolicyDraft{}, err
	}
	raw, err := s.client.Send(ctx, req)
	if err != nil {
		return PolicyDraft{}, err
	}
	draft, ok := RepairPolicyDraft(raw)
	if !ok || draft.Empty() {
		s.log.Warn("policy scan returned nothing usable", zap.Int("replyBytes", len(raw)))
		return PolicyDraft{}, ErrUnreadablePolicy
	}
	s.log.Info("policy scanned",
		zap.String("company", draft.Company),
		zap.String("plan", draft.MainPlanName))
	return draft, nil
}
