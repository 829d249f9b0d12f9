// Package oracle builds requests for the external reasoning service and
// delivers them over one of the supported transports.
package oracle

import (
	"github.com/joelkehle/claimestimate/internal/claims"
)

type Kind string

const (
	KindEstimate   Kind = "estimate"
	KindPolicyScan Kind = "policy_scan"
)

// Request is everything a transport needs for one call. Attachments carry
// the evidence payloads; Instructions never embed them.
type Request struct {
	Kind           Kind                    `json:"kind"`
	Instructions   string                  `json:"instructions"`
	Policies       []claims.Policy         `json:"policies,omitempty"`
	Incident       *claims.MedicalEvent    `json:"incident,omitempty"`
	OutputLanguage claims.Language         `json:"outputLanguage"`
	Attachments    []claims.InlineDocument `json:"attachments"`
	ResponseSchema *Schema                 `json:"responseSchema"`
}

// Build validates the inputs and assembles an estimation request.
func Build(policies []claims.Policy, event claims.MedicalEvent, lang claims.Language) (Request, error) {
	if err := claims.ValidatePolicies(policies); err != nil {
		return Request{}, err
	}
	if err := claims.ValidateEvent(event); err != nil {
		return Request{}, err
	}
	lang = claims.ParseLanguage(string(lang))

	attachments := make([]claims.InlineDocument, len(event.EvidenceFiles))
	copy(attachments, event.EvidenceFiles)

	schema := EstimationSchema()
	instructions, err := estimationInstructions(policies, event, lang, schema)
	if err != nil {
		return Request{}, err
	}

	incident := event
	return Request{
		Kind:           KindEstimate,
		Instructions:   instructions,
		Policies:       claims.ClonePolicies(policies),
		Incident:       &incident,
		OutputLanguage: lang,
		Attachments:    attachments,
		ResponseSchema: schema,
	}, nil
}
