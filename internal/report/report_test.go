package report

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joelkehle/claimestimate/internal/claims"
)

func sampleReport() Report {
	return Report{
		Result: claims.EstimationResult{
			Summary:              "Hospital daily and surgery benefits apply.",
			TotalEstimatedAmount: 12500.5,
			Items: []claims.ClaimItem{
				{PolicyID: "p1", ComponentName: "Hospital Daily", EstimatedAmount: 5000, Status: claims.StatusApplicable, Reason: "5 days x 1000"},
				{PolicyID: "p1", ComponentName: "Surgery | minor", EstimatedAmount: 7500.5, Status: claims.StatusPotential, Reason: "needs\ncertificate"},
				{PolicyID: "gone", ComponentName: "Cancer", Status: claims.StatusNotApplicable},
			},
			EvaluationPoints:    []string{"Keep the receipts"},
			CommunicationAdvice: []claims.AdviceItem{{Title: "Ask", Content: "for the schedule", Type: claims.AdviceStrategy}},
		},
		Event: claims.MedicalEvent{
			Diagnosis:           "[疾病 (住院/門診)] appendicitis",
			HospitalizationDays: 5,
			SurgeryName:         "[手術] appendectomy",
			TotalExpense:        60000,
			IncidentDate:        "2026-02-10",
		},
		Policies:    []claims.Policy{{ID: "p1", Company: "Fubon", MainPlanName: "Hospital Plus"}},
		Language:    claims.LangEnglish,
		GeneratedAt: time.Date(2026, 2, 11, 9, 30, 0, 0, time.UTC),
	}
}

func TestMarkdownSections(t *testing.T) {
	md := sampleReport().Markdown()
	for _, want := range []string{
		"# Claim Estimate",
		"- Generated: 2026-02-11 09:30",
		"Estimated total: **NT$12,500.50**",
		"| Fubon Hospital Plus | Hospital Daily | Applicable | NT$5,000 | 5 days x 1000 |",
		`Surgery \| minor`,
		"needs certificate",
		"| gone | Cancer | Not applicable | NT$0 | — |",
		"- Keep the receipts",
		"- **[Strategy] Ask**: for the schedule",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestMarkdownLocalizedAndEmpty(t *testing.T) {
	md := Markdown(claims.EstimationResult{Summary: "x", Items: []claims.ClaimItem{}}, claims.MedicalEvent{}, claims.LangTraditionalChinese)
	if !strings.Contains(md, "# 理賠試算報告") || !strings.Contains(md, "未找到可理賠的項目。") {
		t.Fatalf("expected localized headings, got:\n%s", md)
	}
}

func TestFormatAmount(t *testing.T) {
	for in, want := range map[float64]string{
		0:          "NT$0",
		999:        "NT$999",
		1000:       "NT$1,000",
		1234567.8:  "NT$1,234,567.80",
		-2500:      "NT$-2,500",
		100000.004: "NT$100,000",
	} {
		if got := FormatAmount(in); got != want {
			t.Errorf("FormatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestHTMLMarksStatusCells(t *testing.T) {
	doc, err := sampleReport().HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	for _, want := range []string{
		"<table>",
		`<td data-status="APPLICABLE">Applicable</td>`,
		`<td data-status="POTENTIAL">Potential</td>`,
		`<td data-status="NOT_APPLICABLE">Not applicable</td>`,
		"td[data-status=",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestMarkStatusCellsNoopWithoutTable(t *testing.T) {
	in := "<p>Applicable</p>"
	if out := markStatusCells(in, claims.LangEnglish); out != in {
		t.Fatalf("expected no change, got %s", out)
	}
}

func TestChromiumPDFRenderer(t *testing.T) {
	if os.Getenv("CLAIMESTIMATE_TEST_CHROME") == "" {
		t.Skip("set CLAIMESTIMATE_TEST_CHROME=1 to render with a local Chromium")
	}
	pdf, err := NewChromiumPDFRenderer("").Render(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Fatalf("expected PDF bytes, got %q", pdf[:min(8, len(pdf))])
	}
}
