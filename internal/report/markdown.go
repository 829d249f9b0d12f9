// Package report renders estimation results as Markdown, HTML and PDF.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joelkehle/claimestimate/internal/claims"
)

// Report is everything a rendered estimate shows.
type Report struct {
	Result      claims.EstimationResult
	Event       claims.MedicalEvent
	Policies    []claims.Policy
	Language    claims.Language
	Degraded    bool
	GeneratedAt time.Time
}

// Markdown renders a result for an event without policy names or a timestamp.
func Markdown(result claims.EstimationResult, event claims.MedicalEvent, lang claims.Language) string {
	return Report{Result: result, Event: event, Language: lang}.Markdown()
}

func (r Report) Markdown() string {
	l := labelsFor(r.Language)
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", l.title)
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "- %s: %s\n", l.generated, r.GeneratedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "- %s: %s\n\n", l.incidentDate, sanitizeLine(r.Event.IncidentDate))
	fmt.Fprintf(&b, "> %s\n\n", l.disclaimer)
	if r.Degraded {
		fmt.Fprintf(&b, "> **%s**\n\n", l.degraded)
	}

	fmt.Fprintf(&b, "## %s\n\n", l.summary)
	fmt.Fprintf(&b, "%s\n\n", sanitizeLine(r.Result.Summary))
	fmt.Fprintf(&b, "%s: **%s**\n\n", l.total, FormatAmount(r.Result.TotalEstimatedAmount))

	fmt.Fprintf(&b, "## %s\n\n", l.incident)
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s |\n", l.diagnosis, cell(r.Event.Diagnosis))
	fmt.Fprintf(&b, "| %s | %s |\n", l.surgery, cell(r.Event.SurgeryName))
	fmt.Fprintf(&b, "| %s | %d |\n", l.days, r.Event.HospitalizationDays)
	fmt.Fprintf(&b, "| %s | %d |\n", l.visits, r.Event.OutpatientVisits)
	fmt.Fprintf(&b, "| %s | %s |\n", l.expense, FormatAmount(r.Event.TotalExpense))
	fmt.Fprintf(&b, "| %s | %s |\n", l.retained, FormatAmount(r.Event.RetainedAmount))
	fmt.Fprintf(&b, "| %s | %d |\n\n", l.evidence, len(r.Event.EvidenceFiles))

	fmt.Fprintf(&b, "## %s\n\n", l.items)
	if len(r.Result.Items) == 0 {
		fmt.Fprintf(&b, "%s\n\n", l.noItems)
	} else {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", l.colPolicy, l.colComponent, l.colStatus, l.colAmount, l.colReason)
		b.WriteString("|---|---|---|---:|---|\n")
		for _, it := range r.Result.Items {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				cell(r.policyName(it.PolicyID)),
				cell(it.ComponentName),
				l.status[it.Status],
				FormatAmount(it.EstimatedAmount),
				cell(it.Reason))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## %s\n\n", l.points)
	if len(r.Result.EvaluationPoints) == 0 {
		b.WriteString("- —\n")
	}
	for _, p := range r.Result.EvaluationPoints {
		fmt.Fprintf(&b, "- %s\n", sanitizeLine(p))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", l.advice)
	if len(r.Result.CommunicationAdvice) == 0 {
		b.WriteString("- —\n")
	}
	for _, a := range r.Result.CommunicationAdvice {
		fmt.Fprintf(&b, "- **[%s] %s**: %s\n", l.adviceType[a.Type], sanitizeLine(a.Title), sanitizeLine(a.Content))
	}
	return b.String()
}

// policyName resolves an item's policy id to "company plan", falling back
// to the raw id.
func (r Report) policyName(id string) string {
	if p, ok := claims.FindPolicy(r.Policies, id); ok {
		return strings.TrimSpace(p.Company + " " + p.MainPlanName)
	}
	return id
}

// FormatAmount prints whole currency units with thousands separators and
// keeps cents only when present.
func FormatAmount(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	d = d.Abs()
	whole := d.Truncate(0)
	frac := d.Sub(whole)

	digits := whole.String()
	var grouped strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(c)
	}
	out := grouped.String()
	if !frac.IsZero() {
		out += strings.TrimPrefix(frac.StringFixed(2), "0")
	}
	if neg {
		out = "-" + out
	}
	return "NT$" + out
}

func sanitizeLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func cell(s string) string {
	s = sanitizeLine(s)
	if s == "" {
		return "—"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
