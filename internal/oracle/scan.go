package oracle

import (
	"fmt"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/evidence"
)

const scanPrompt = `Task: Read the attached insurance policy document.

Extract:
1. company: the insurance company name
2. mainPlanName: the commercial name of the main plan
3. mainCoverageAmount: the main coverage amount as a plain number

Leave a field empty (or 0) when the document does not show it.`

// BuildScanRequest asks the oracle to read a policy document and report its
// company, plan name and coverage amount.
func BuildScanRequest(doc claims.InlineDocument, lang claims.Language) (Request, error) {
	if !evidence.Allowed(doc.MediaType) {
		return Request{}, claims.NewError(claims.CodeUnsupportedMediaType, doc.MediaType, nil)
	}
	if doc.Payload == "" {
		return Request{}, claims.NewError(claims.CodeInvalidEvent, "policy document is empty", nil)
	}
	lang = claims.ParseLanguage(string(lang))
	schema := PolicyDraftSchema()
	instructions := fmt.Sprintf("%s\n\nThe document is most likely written in %s; keep names as they appear.\n\n%s",
		scanPrompt, lang.DisplayName(), outputRules(schema))
	return Request{
		Kind:           KindPolicyScan,
		Instructions:   instructions,
		OutputLanguage: lang,
		Attachments:    []claims.InlineDocument{doc},
		ResponseSchema: schema,
	}, nil
}
