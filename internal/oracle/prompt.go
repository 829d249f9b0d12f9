package oracle

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/joelkehle/claimestimate/internal/claims"
)

const systemPrompt = "You are an expert insurance claim adjuster estimating benefits for a policyholder. Respond with strict JSON only."

const calculationRules = `Calculation rules:

1. DAILY (PER-DIEM) BENEFITS: amount = hospitalizationDays x daily rate stated
   by the policy or rider. Outpatient per-visit benefits use outpatientVisits
   the same way.

2. REIMBURSEMENT BENEFITS (actual expense, 實支實付): amount =
   min(totalExpense, coverage limit) - retainedAmount, never below 0.
   retainedAmount is the deductible the claimant keeps.

3. SURGERY BENEFITS: match surgeryName against the policy's surgery schedule
   by name. When the schedule pays a percentage of the coverage amount, apply
   that percentage. If no surgery was performed the treatment tag says so.

4. The text in square brackets at the start of diagnosis and surgeryName is
   the incident type and treatment type selected by the claimant.

5. Produce one item per coverage component you evaluated, using the policyId
   exactly as given. status is APPLICABLE when the component clearly pays,
   POTENTIAL when payment depends on documents or terms you cannot confirm,
   NOT_APPLICABLE otherwise with estimatedAmount 0.

6. totalEstimatedAmount is the sum of estimatedAmount over APPLICABLE and
   POTENTIAL items.`

// promptIncident is the incident as embedded in the instructions. Evidence
// payloads travel as attachments, so only their media types appear here.
type promptIncident struct {
	Diagnosis           string   `json:"diagnosis"`
	HospitalizationDays int      `json:"hospitalizationDays"`
	SurgeryName         string   `json:"surgeryName"`
	OutpatientVisits    int      `json:"outpatientVisits"`
	TotalExpense        float64  `json:"totalExpense"`
	RetainedAmount      float64  `json:"retainedAmount"`
	IncidentDate        string   `json:"incidentDate"`
	Evidence            []string `json:"evidence"`
}

func toPromptIncident(e claims.MedicalEvent) promptIncident {
	evidence := make([]string, 0, len(e.EvidenceFiles))
	for _, d := range e.EvidenceFiles {
		evidence = append(evidence, d.MediaType)
	}
	return promptIncident{
		Diagnosis:           e.Diagnosis,
		HospitalizationDays: e.HospitalizationDays,
		SurgeryName:         e.SurgeryName,
		OutpatientVisits:    e.OutpatientVisits,
		TotalExpense:        e.TotalExpense,
		RetainedAmount:      e.RetainedAmount,
		IncidentDate:        e.IncidentDate,
		Evidence:            evidence,
	}
}

func estimationInstructions(policies []claims.Policy, event claims.MedicalEvent, lang claims.Language, schema *Schema) (string, error) {
	policyJSON, err := json.MarshalIndent(policies, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode policies: %w", err)
	}
	incidentJSON, err := json.MarshalIndent(toPromptIncident(event), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode incident: %w", err)
	}

	attachments := "No evidence documents were provided."
	if n := len(event.EvidenceFiles); n > 0 {
		attachments = fmt.Sprintf("%d evidence document(s) (receipts, diagnosis certificates) are attached after this message. Use them to confirm amounts, days and procedures.", n)
	}

	return fmt.Sprintf(
		"Task: Estimate what the claimant can claim under each policy and rider for the medical incident below.\n\n%s\n\n%s\n\nPolicies:\n%s\n\nIncident:\n%s\n\nEvidence:\n%s\n\n%s",
		languageDirective(lang),
		calculationRules,
		policyJSON,
		incidentJSON,
		attachments,
		outputRules(schema,
			"status must be one of: "+joinEnum(claims.ClaimStatuses)+".",
			"communicationAdvice type must be one of: "+joinEnum(claims.AdviceTypes)+".",
			"communicationAdvice gives practical tips for talking to the insurer.",
		),
	), nil
}

func languageDirective(lang claims.Language) string {
	return fmt.Sprintf("Output language: %s. Write summary, componentName, reason, evaluationPoints and every advice title and content in %s.",
		lang.DisplayName(), lang.DisplayName())
}

func outputRules(schema *Schema, extra ...string) string {
	var b strings.Builder
	b.WriteString("Output rules:\n")
	b.WriteString("- Respond with a single JSON object and nothing else. No markdown fences, no commentary.\n")
	b.WriteString("- All amounts are JSON numbers, not strings.\n")
	for _, rule := range extra {
		b.WriteString("- " + rule + "\n")
	}
	b.WriteString("- The object must match this JSON schema:\n")
	b.WriteString(schema.Indented())
	return b.String()
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
