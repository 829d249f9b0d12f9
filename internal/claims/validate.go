package claims

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar date format of MedicalEvent.IncidentDate.
const DateLayout = "2006-01-02"

func ValidatePolicy(p Policy) error {
	if strings.TrimSpace(p.ID) == "" {
		return invalidPolicy("policy id is required")
	}
	if badAmount(p.MainCoverageAmount) {
		return invalidPolicy("policy %s: main coverage amount must be a non-negative number", p.ID)
	}
	seen := map[string]struct{}{}
	for i, r := range p.Riders {
		if strings.TrimSpace(r.ID) == "" {
			return invalidPolicy("policy %s: rider %d has no id", p.ID, i)
		}
		if _, dup := seen[r.ID]; dup {
			return invalidPolicy("policy %s: duplicate rider id %s", p.ID, r.ID)
		}
		seen[r.ID] = struct{}{}
		if badAmount(r.CoverageAmount) {
			return invalidPolicy("policy %s: rider %s coverage amount must be a non-negative number", p.ID, r.ID)
		}
	}
	return nil
}

// ValidatePolicies checks every policy and that ids are unique across the set.
func ValidatePolicies(ps []Policy) error {
	seen := make(map[string]struct{}, len(ps))
	for _, p := range ps {
		if err := ValidatePolicy(p); err != nil {
			return err
		}
		if _, dup := seen[p.ID]; dup {
			return invalidPolicy("duplicate policy id %s", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func ValidateEvent(e MedicalEvent) error {
	if badAmount(e.TotalExpense) {
		return invalidEvent("total expense must be a non-negative number")
	}
	if badAmount(e.RetainedAmount) {
		return invalidEvent("retained amount must be a non-negative number")
	}
	if e.HospitalizationDays < 0 {
		return invalidEvent("hospitalization days must not be negative")
	}
	if e.OutpatientVisits < 0 {
		return invalidEvent("outpatient visits must not be negative")
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(e.IncidentDate)); err != nil {
		return invalidEvent("incident date %q is not a %s date", e.IncidentDate, "YYYY-MM-DD")
	}
	for i, doc := range e.EvidenceFiles {
		if err := validateEvidence(i, doc); err != nil {
			return err
		}
	}
	return nil
}

// validateEvidence rejects a document either transport would refuse, so a
// bad stored incident fails here rather than inside an oracle call.
func validateEvidence(i int, doc InlineDocument) error {
	if strings.TrimSpace(doc.MediaType) == "" || doc.Payload == "" {
		return invalidEvent("evidence file %d is empty or has no media type", i)
	}
	if !MediaTypeAllowed(doc.MediaType) {
		return NewError(CodeUnsupportedMediaType,
			fmt.Sprintf("evidence file %d has media type %q", i, doc.MediaType), nil)
	}
	if _, err := base64.StdEncoding.DecodeString(doc.Payload); err != nil {
		return NewError(CodeInvalidEvent, fmt.Sprintf("evidence file %d is not valid base64", i), err)
	}
	return nil
}

func badAmount(v float64) bool {
	return v < 0 || math.IsNaN(v) || math.IsInf(v, 0)
}
