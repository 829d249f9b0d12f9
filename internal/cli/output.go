package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/estimate"
	"github.com/joelkehle/claimestimate/internal/report"
)

const (
	formatHuman = "human"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// encode writes v as JSON or YAML. ok is false for the human format, which
// each command renders itself.
func encode(w io.Writer, format string, v any) (ok bool, err error) {
	switch format {
	case formatJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprintln(w, string(out))
		return true, err
	case formatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprint(w, string(out))
		return true, err
	default:
		return false, nil
	}
}

func printSuccess(w io.Writer, msg string) {
	color.New(color.FgGreen).Fprintf(w, "✓ %s\n", msg)
}

func printWarning(w io.Writer, msg string) {
	color.New(color.FgYellow).Fprintf(w, "! %s\n", msg)
}

// estimateView is the machine-readable shape of an estimate.
type estimateView struct {
	State          string                  `json:"state" yaml:"state"`
	Cause          string                  `json:"cause,omitempty" yaml:"cause,omitempty"`
	Consistent     bool                    `json:"consistent" yaml:"consistent"`
	ItemSum        string                  `json:"itemSum" yaml:"itemSum"`
	Result         claims.EstimationResult `json:"result" yaml:"result"`
	DurationMillis int64                   `json:"durationMs,omitempty" yaml:"durationMs,omitempty"`
}

func newEstimateView(out estimate.Outcome) estimateView {
	v := estimateView{
		State:          out.State.String(),
		Consistent:     out.Reconciliation.Consistent,
		ItemSum:        out.Reconciliation.ItemSum.StringFixed(2),
		Result:         out.Result,
		DurationMillis: out.Duration.Milliseconds(),
	}
	if out.Cause != nil {
		v.Cause = out.Cause.Error()
	}
	return v
}

func displayEstimate(w io.Writer, r claims.EstimationResult, policies []claims.Policy, lang claims.Language) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)
	cyan.Fprintln(w, "SUMMARY")
	fmt.Fprintf(w, "   %s\n\n", r.Summary)
	green.Fprintf(w, "TOTAL ESTIMATED: %s\n\n", report.FormatAmount(r.TotalEstimatedAmount))

	if len(r.Items) > 0 {
		white.Fprintln(w, "ITEMS")
		for i, item := range r.Items {
			fmt.Fprintf(w, "   %d. %s %s  %s\n", i+1,
				statusColor(item.Status).Sprintf("[%s]", report.StatusLabel(item.Status, lang)),
				item.ComponentName,
				report.FormatAmount(item.EstimatedAmount))
			fmt.Fprintf(w, "      %s\n", color.HiBlackString(policyLabel(policies, item.PolicyID)))
			if item.Reason != "" {
				fmt.Fprintf(w, "      %s\n", item.Reason)
			}
		}
		fmt.Fprintln(w)
	}

	if len(r.EvaluationPoints) > 0 {
		yellow.Fprintln(w, "EVALUATION POINTS")
		for _, p := range r.EvaluationPoints {
			fmt.Fprintf(w, "   • %s\n", p)
		}
		fmt.Fprintln(w)
	}

	if len(r.CommunicationAdvice) > 0 {
		cyan.Fprintln(w, "ADVICE")
		for i, a := range r.CommunicationAdvice {
			fmt.Fprintf(w, "   %d. %s %s\n", i+1, adviceIcon(a.Type), a.Title)
			if a.Content != "" {
				fmt.Fprintf(w, "      %s\n", a.Content)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "%s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func statusColor(s claims.ClaimStatus) *color.Color {
	switch s {
	case claims.StatusApplicable:
		return color.New(color.FgGreen)
	case claims.StatusPotential:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgWhite)
	}
}

func adviceIcon(t claims.AdviceType) string {
	switch t {
	case claims.AdviceStrategy:
		return "➜"
	case claims.AdviceWarning:
		return "⚠"
	default:
		return "•"
	}
}

func policyLabel(policies []claims.Policy, id string) string {
	if p, ok := claims.FindPolicy(policies, id); ok {
		return strings.TrimSpace(p.Company + " " + p.MainPlanName)
	}
	return id
}

func displayPolicies(w io.Writer, ps []claims.Policy) {
	if len(ps) == 0 {
		fmt.Fprintln(w, "No policies yet. Add one with 'claimestimate policy add'.")
		return
	}
	bold := color.New(color.Bold)
	for i, p := range ps {
		bold.Fprintf(w, "%d. %s %s\n", i+1, p.Company, p.MainPlanName)
		fmt.Fprintf(w, "   id: %s\n", color.HiBlackString(p.ID))
		if p.MainPlanCategory != "" {
			fmt.Fprintf(w, "   category: %s\n", p.MainPlanCategory)
		}
		fmt.Fprintf(w, "   coverage: %s\n", report.FormatAmount(p.MainCoverageAmount))
		for _, r := range p.Riders {
			fmt.Fprintf(w, "   + %s  %s  %s\n", r.Name, report.FormatAmount(r.CoverageAmount), color.HiBlackString(r.ID))
			if r.Description != "" {
				fmt.Fprintf(w, "     %s\n", r.Description)
			}
		}
	}
}

// eventView hides evidence payloads; only their media types are shown.
type eventView struct {
	Diagnosis           string   `json:"diagnosis" yaml:"diagnosis"`
	SurgeryName         string   `json:"surgeryName" yaml:"surgeryName"`
	HospitalizationDays int      `json:"hospitalizationDays" yaml:"hospitalizationDays"`
	OutpatientVisits    int      `json:"outpatientVisits" yaml:"outpatientVisits"`
	TotalExpense        float64  `json:"totalExpense" yaml:"totalExpense"`
	RetainedAmount      float64  `json:"retainedAmount" yaml:"retainedAmount"`
	IncidentDate        string   `json:"incidentDate" yaml:"incidentDate"`
	Evidence            []string `json:"evidence" yaml:"evidence"`
}

func newEventView(e claims.MedicalEvent) eventView {
	v := eventView{
		Diagnosis:           e.Diagnosis,
		SurgeryName:         e.SurgeryName,
		HospitalizationDays: e.HospitalizationDays,
		OutpatientVisits:    e.OutpatientVisits,
		TotalExpense:        e.TotalExpense,
		RetainedAmount:      e.RetainedAmount,
		IncidentDate:        e.IncidentDate,
		Evidence:            make([]string, 0, len(e.EvidenceFiles)),
	}
	for _, f := range e.EvidenceFiles {
		v.Evidence = append(v.Evidence, f.MediaType)
	}
	return v
}

func displayEvent(w io.Writer, e claims.MedicalEvent) {
	bold := color.New(color.Bold)
	bold.Fprintln(w, "Current incident")
	fmt.Fprintf(w, "   date:       %s\n", e.IncidentDate)
	fmt.Fprintf(w, "   diagnosis:  %s\n", e.Diagnosis)
	fmt.Fprintf(w, "   treatment:  %s\n", e.SurgeryName)
	fmt.Fprintf(w, "   days:       %d\n", e.HospitalizationDays)
	fmt.Fprintf(w, "   visits:     %d\n", e.OutpatientVisits)
	fmt.Fprintf(w, "   expense:    %s\n", report.FormatAmount(e.TotalExpense))
	fmt.Fprintf(w, "   retained:   %s\n", report.FormatAmount(e.RetainedAmount))
	fmt.Fprintf(w, "   evidence:   %d file(s)\n", len(e.EvidenceFiles))
}
