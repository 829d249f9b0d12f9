package oracle

import (
	"errors"
	"sort"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/evidence"
)

func samplePolicy() claims.Policy {
	return claims.Policy{
		ID:                 "P1",
		Company:            "國泰人壽",
		MainPlanName:       "Hospital Daily",
		MainCoverageAmount: 1000,
		Riders: []claims.Rider{{
			ID: "R1", Name: "Surgery rider", CoverageAmount: 50000, Description: "pays 10% for minor surgery",
		}},
	}
}

func sampleEvent(t *testing.T) claims.MedicalEvent {
	t.Helper()
	doc, err := evidence.Encode([]byte("%PDF-1.4 secret-receipt-bytes"), evidence.MediaPDF)
	if err != nil {
		t.Fatal(err)
	}
	return claims.MedicalEvent{
		Diagnosis:           "[疾病 (住院/門診)] pneumonia",
		HospitalizationDays: 3,
		SurgeryName:         "[無特定手術] ",
		TotalExpense:        30000,
		RetainedAmount:      1000,
		IncidentDate:        "2026-03-01",
		EvidenceFiles:       []claims.InlineDocument{doc},
	}
}

func TestBuildAssemblesRequest(t *testing.T) {
	ev := sampleEvent(t)
	req, err := Build([]claims.Policy{samplePolicy()}, ev, claims.LangTraditionalChinese)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if req.Kind != KindEstimate || req.OutputLanguage != claims.LangTraditionalChinese {
		t.Fatalf("kind=%s lang=%s", req.Kind, req.OutputLanguage)
	}
	if len(req.Attachments) != 1 || req.Attachments[0] != ev.EvidenceFiles[0] {
		t.Fatal("attachments should mirror the evidence files")
	}
	for _, want := range []string{
		"Traditional Chinese",
		"hospitalizationDays x daily rate",
		"min(totalExpense, coverage limit) - retainedAmount",
		`"P1"`,
		"pneumonia",
		"1 evidence document(s)",
		"APPLICABLE, POTENTIAL, NOT_APPLICABLE",
		"strategy, warning, tip",
	} {
		if !strings.Contains(req.Instructions, want) {
			t.Errorf("instructions missing %q", want)
		}
	}
	if strings.Contains(req.Instructions, ev.EvidenceFiles[0].Payload) {
		t.Fatal("instructions must not embed evidence payloads")
	}
}

func TestBuildDoesNotAliasEvidence(t *testing.T) {
	ev := sampleEvent(t)
	req, err := Build([]claims.Policy{samplePolicy()}, ev, claims.LangEnglish)
	if err != nil {
		t.Fatal(err)
	}
	ev.EvidenceFiles[0].MediaType = "mutated"
	if req.Attachments[0].MediaType != evidence.MediaPDF {
		t.Fatal("request attachments should be a copy")
	}
}

func TestBuildDoesNotAliasPolicies(t *testing.T) {
	policies := []claims.Policy{samplePolicy()}
	req, err := Build(policies, sampleEvent(t), claims.LangEnglish)
	if err != nil {
		t.Fatal(err)
	}
	policies[0].MainPlanName = "mutated"
	policies[0].Riders[0].Name = "mutated"
	if req.Policies[0].MainPlanName != "Hospital Daily" || req.Policies[0].Riders[0].Name != "Surgery rider" {
		t.Fatal("request policies should be a copy")
	}
}

func TestBuildRejectsUnusableEvidence(t *testing.T) {
	for name, tc := range map[string]struct {
		doc  claims.InlineDocument
		want error
	}{
		"text evidence":   {claims.InlineDocument{MediaType: "text/plain", Payload: "aGVsbG8="}, claims.ErrUnsupportedMediaType},
		"corrupt payload": {claims.InlineDocument{MediaType: evidence.MediaPNG, Payload: "%%%"}, claims.ErrInvalidEvent},
	} {
		t.Run(name, func(t *testing.T) {
			ev := sampleEvent(t)
			ev.EvidenceFiles = []claims.InlineDocument{tc.doc}
			req, err := Build([]claims.Policy{samplePolicy()}, ev, claims.LangEnglish)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(req.Attachments) != 0 {
				t.Fatal("no request should be built")
			}
		})
	}
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	bad := samplePolicy()
	bad.MainCoverageAmount = -1
	if _, err := Build([]claims.Policy{bad}, sampleEvent(t), claims.LangEnglish); !errors.Is(err, claims.ErrInvalidPolicy) {
		t.Fatalf("expected invalid policy, got %v", err)
	}
	ev := sampleEvent(t)
	ev.IncidentDate = "yesterday"
	if _, err := Build([]claims.Policy{samplePolicy()}, ev, claims.LangEnglish); !errors.Is(err, claims.ErrInvalidEvent) {
		t.Fatalf("expected invalid event, got %v", err)
	}
}

func TestEstimationSchemaNamesEveryResultField(t *testing.T) {
	s := EstimationSchema()
	var resultKeys map[string]any
	blob, _ := json.Marshal(claims.EstimationResult{Items: []claims.ClaimItem{{}}, CommunicationAdvice: []claims.AdviceItem{{}}})
	if err := json.Unmarshal(blob, &resultKeys); err != nil {
		t.Fatal(err)
	}
	assertSameKeys(t, "result", keys(resultKeys), keys(s.Properties))
	assertSameKeys(t, "result required", keys(resultKeys), s.Required)

	item := resultKeys[FieldItems].([]any)[0].(map[string]any)
	assertSameKeys(t, "item", keys(item), keys(s.Properties[FieldItems].Items.Properties))
	advice := resultKeys[FieldAdvice].([]any)[0].(map[string]any)
	assertSameKeys(t, "advice", keys(advice), keys(s.Properties[FieldAdvice].Items.Properties))

	status := s.Properties[FieldItems].Items.Properties[FieldStatus].Enum
	for _, v := range status {
		if !claims.ClaimStatus(v).Valid() {
			t.Fatalf("schema status %q not accepted by the domain", v)
		}
	}
	kinds := s.Properties[FieldAdvice].Items.Properties[FieldType].Enum
	for _, v := range kinds {
		if !claims.AdviceType(v).Valid() {
			t.Fatalf("schema advice type %q not accepted by the domain", v)
		}
	}
	if len(status) != len(claims.ClaimStatuses) || len(kinds) != len(claims.AdviceTypes) {
		t.Fatal("schema enums should list every domain value")
	}
}

func TestBuildScanRequest(t *testing.T) {
	doc, err := evidence.Encode([]byte("\xff\xd8\xff\xe0 jpeg"), evidence.MediaJPEG)
	if err != nil {
		t.Fatal(err)
	}
	req, err := BuildScanRequest(doc, "zh_tw")
	if err != nil {
		t.Fatalf("BuildScanRequest: %v", err)
	}
	if req.Kind != KindPolicyScan || len(req.Attachments) != 1 {
		t.Fatalf("unexpected request %+v", req)
	}
	if _, ok := req.ResponseSchema.Properties[FieldMainCoverageAmount]; !ok {
		t.Fatal("scan schema should ask for the coverage amount")
	}
	if strings.Contains(req.Instructions, "NOT_APPLICABLE") {
		t.Fatal("scan instructions should not carry estimation enums")
	}

	if _, err := BuildScanRequest(claims.InlineDocument{MediaType: "text/html", Payload: "eA=="}, claims.LangEnglish); !errors.Is(err, claims.ErrUnsupportedMediaType) {
		t.Fatalf("expected unsupported media type, got %v", err)
	}
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func assertSameKeys(t *testing.T, label string, got, want []string) {
	t.Helper()
	sort.Strings(got)
	sort.Strings(want)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("%s keys differ:\n got  %v\n want %v", label, got, want)
	}
}
