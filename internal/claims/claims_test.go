package claims

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() MedicalEvent {
	return MedicalEvent{
		Diagnosis:           "[疾病 (住院/門診)] pneumonia",
		HospitalizationDays: 5,
		SurgeryName:         "[住院手術] none",
		OutpatientVisits:    2,
		TotalExpense:        42000,
		RetainedAmount:      0,
		IncidentDate:        "2026-03-14",
		EvidenceFiles:       []InlineDocument{},
	}
}

func TestValidatePolicy(t *testing.T) {
	p := NewPolicy("Cathay", "Daily Hospital", "", 1000)
	require.NoError(t, ValidatePolicy(p))

	for name, mutate := range map[string]func(*Policy){
		"empty id":          func(p *Policy) { p.ID = "  " },
		"negative coverage": func(p *Policy) { p.MainCoverageAmount = -1 },
		"nan coverage":      func(p *Policy) { p.MainCoverageAmount = math.NaN() },
		"rider without id":  func(p *Policy) { p.Riders = []Rider{{Name: "x"}} },
		"negative rider":    func(p *Policy) { p.Riders = []Rider{{ID: "r1", CoverageAmount: -5}} },
		"duplicate rider":   func(p *Policy) { p.Riders = []Rider{{ID: "r1"}, {ID: "r1"}} },
	} {
		t.Run(name, func(t *testing.T) {
			bad := p
			mutate(&bad)
			err := ValidatePolicy(bad)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPolicy)
		})
	}
}

func TestValidatePoliciesRejectsDuplicateIDs(t *testing.T) {
	p := NewPolicy("Fubon", "Plan", "", 10)
	err := ValidatePolicies([]Policy{p, p})
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestValidateEvent(t *testing.T) {
	require.NoError(t, ValidateEvent(validEvent()))

	for name, mutate := range map[string]func(*MedicalEvent){
		"negative expense":  func(e *MedicalEvent) { e.TotalExpense = -1 },
		"negative retained": func(e *MedicalEvent) { e.RetainedAmount = -1 },
		"negative days":     func(e *MedicalEvent) { e.HospitalizationDays = -2 },
		"negative visits":   func(e *MedicalEvent) { e.OutpatientVisits = -2 },
		"bad date":          func(e *MedicalEvent) { e.IncidentDate = "14/03/2026" },
		"empty date":        func(e *MedicalEvent) { e.IncidentDate = "" },
		"empty evidence":    func(e *MedicalEvent) { e.EvidenceFiles = []InlineDocument{{MediaType: "application/pdf"}} },
	} {
		t.Run(name, func(t *testing.T) {
			e := validEvent()
			mutate(&e)
			assert.ErrorIs(t, ValidateEvent(e), ErrInvalidEvent)
		})
	}
}

func TestValidateEventEvidence(t *testing.T) {
	for name, tc := range map[string]struct {
		doc  InlineDocument
		want error
	}{
		"pdf":              {InlineDocument{MediaType: "application/pdf", Payload: "JVBERi0="}, nil},
		"mixed case type":  {InlineDocument{MediaType: "Image/PNG; name=a.png", Payload: "aGVsbG8="}, nil},
		"plain text":       {InlineDocument{MediaType: "text/plain", Payload: "aGVsbG8="}, ErrUnsupportedMediaType},
		"html":             {InlineDocument{MediaType: "text/html", Payload: "aGVsbG8="}, ErrUnsupportedMediaType},
		"corrupt payload":  {InlineDocument{MediaType: "image/jpeg", Payload: "not base64!"}, ErrInvalidEvent},
		"url-safe payload": {InlineDocument{MediaType: "image/jpeg", Payload: "_-8"}, ErrInvalidEvent},
	} {
		t.Run(name, func(t *testing.T) {
			e := validEvent()
			e.EvidenceFiles = []InlineDocument{tc.doc}
			err := ValidateEvent(e)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestMediaTypeAllowed(t *testing.T) {
	assert.True(t, MediaTypeAllowed("APPLICATION/PDF"))
	assert.True(t, MediaTypeAllowed(" image/webp "))
	assert.False(t, MediaTypeAllowed("image/svg+xml"))
	assert.False(t, MediaTypeAllowed(""))
	assert.Equal(t, "image/png", NormalizeMediaType("Image/PNG; charset=binary"))
}

func TestErrorMatchesByCode(t *testing.T) {
	err := fmt.Errorf("sending: %w", NewError(CodeNetworkFailure, "dial tcp", errors.New("refused")))
	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.NotErrorIs(t, err, ErrOracleRejected)
	assert.Equal(t, CodeNetworkFailure, CodeOf(err))
	assert.Equal(t, "", CodeOf(errors.New("plain")))

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.Transient())
	assert.False(t, (&Error{Code: CodeInvalidEvent}).Transient())
}

func TestPolicyBook(t *testing.T) {
	p1 := NewPolicy("Cathay", "Medical", "住院醫療 (實支實付)", 200000)
	p2 := NewPolicy("Fubon", "Accident", "", 1000000)

	book, err := AddPolicy(nil, p1)
	require.NoError(t, err)
	book, err = AddPolicy(book, p2)
	require.NoError(t, err)
	_, err = AddPolicy(book, p1)
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	rider := NewRider("Daily hospital", "住院醫療 (日額型)", 1000, "per day")
	withRider, err := AddRider(book, p1.ID, rider)
	require.NoError(t, err)
	assert.Empty(t, book[0].Riders, "AddRider must not mutate its input")
	assert.Len(t, withRider[0].Riders, 1)

	_, err = AddRider(book, "missing", rider)
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	dropped, ok := RemoveRider(withRider, p1.ID, rider.ID)
	require.True(t, ok)
	assert.Empty(t, dropped[0].Riders)

	remaining, ok := RemovePolicy(withRider, p1.ID)
	require.True(t, ok)
	require.Len(t, remaining, 1)
	assert.Equal(t, p2.ID, remaining[0].ID)
	_, found := FindPolicy(remaining, p1.ID)
	assert.False(t, found)
}

func TestNewIdentity(t *testing.T) {
	id, err := NewIdentity("amy@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "YW15QGV4YW1wbGUuY29t", id.ID)
	assert.Equal(t, "amy", id.Name)

	_, err = NewIdentity(" ", "x")
	assert.Error(t, err)
}

func TestTags(t *testing.T) {
	assert.Equal(t, "住院手術", ResolveTag(TreatmentMethods, "3", ""))
	assert.Equal(t, "laser", ResolveTag(TreatmentMethods, OtherOption, " laser "))
	assert.Equal(t, "laser", ResolveTag(IncidentTypes, "7", "laser"))
	assert.Equal(t, "custom tag", ResolveTag(IncidentTypes, "custom tag", ""))
	assert.Equal(t, "[住院手術] 無特定手術", TaggedText("住院手術", " ", LangTraditionalChinese.Phrase(PhraseNoSpecificSurgery)))
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, LangTraditionalChinese, ParseLanguage("zh_tw"))
	assert.Equal(t, LangEnglish, ParseLanguage("EN"))
	assert.Equal(t, DefaultLanguage, ParseLanguage("fr"))
	assert.Equal(t, "Analysis complete.", Language("xx").Phrase(PhraseAnalysisComplete))
	assert.True(t, StatusPotential.Valid())
	assert.False(t, ClaimStatus("maybe").Valid())
	assert.True(t, AdviceWarning.Valid())
	assert.False(t, AdviceType("TIP").Valid())
}
