package claims

type ClaimStatus string

const (
	StatusApplicable    ClaimStatus = "APPLICABLE"
	StatusPotential     ClaimStatus = "POTENTIAL"
	StatusNotApplicable ClaimStatus = "NOT_APPLICABLE"
)

// ClaimStatuses is the closed set accepted for ClaimItem.Status, in schema order.
var ClaimStatuses = []ClaimStatus{StatusApplicable, StatusPotential, StatusNotApplicable}

func (s ClaimStatus) Valid() bool {
	for _, v := range ClaimStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type AdviceType string

const (
	AdviceStrategy AdviceType = "strategy"
	AdviceWarning  AdviceType = "warning"
	AdviceTip      AdviceType = "tip"
)

var AdviceTypes = []AdviceType{AdviceStrategy, AdviceWarning, AdviceTip}

func (t AdviceType) Valid() bool {
	for _, v := range AdviceTypes {
		if t == v {
			return true
		}
	}
	return false
}

type Rider struct {
	ID             string  `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	Category       string  `json:"category,omitempty" yaml:"category,omitempty"`
	CoverageAmount float64 `json:"coverageAmount" yaml:"coverageAmount"`
	Description    string  `json:"description" yaml:"description"`
}

type Policy struct {
	ID                 string  `json:"id" yaml:"id"`
	Company            string  `json:"company" yaml:"company"`
	MainPlanName       string  `json:"mainPlanName" yaml:"mainPlanName"`
	MainPlanCategory   string  `json:"mainPlanCategory,omitempty" yaml:"mainPlanCategory,omitempty"`
	MainCoverageAmount float64 `json:"mainCoverageAmount" yaml:"mainCoverageAmount"`
	Riders             []Rider `json:"riders" yaml:"riders"`
}

// InlineDocument is an evidence file carried inline as standard base64.
type InlineDocument struct {
	MediaType string `json:"mediaType" yaml:"mediaType"`
	Payload   string `json:"payload" yaml:"-"`
}

type MedicalEvent struct {
	Diagnosis           string           `json:"diagnosis" yaml:"diagnosis"`
	HospitalizationDays int              `json:"hospitalizationDays" yaml:"hospitalizationDays"`
	SurgeryName         string           `json:"surgeryName" yaml:"surgeryName"`
	OutpatientVisits    int              `json:"outpatientVisits" yaml:"outpatientVisits"`
	TotalExpense        float64          `json:"totalExpense" yaml:"totalExpense"`
	RetainedAmount      float64          `json:"retainedAmount" yaml:"retainedAmount"`
	IncidentDate        string           `json:"incidentDate" yaml:"incidentDate"`
	EvidenceFiles       []InlineDocument `json:"evidenceFiles" yaml:"evidenceFiles"`
}

type ClaimItem struct {
	PolicyID        string      `json:"policyId" yaml:"policyId"`
	ComponentName   string      `json:"componentName" yaml:"componentName"`
	EstimatedAmount float64     `json:"estimatedAmount" yaml:"estimatedAmount"`
	Status          ClaimStatus `json:"status" yaml:"status"`
	Reason          string      `json:"reason" yaml:"reason"`
}

type AdviceItem struct {
	Title   string     `json:"title" yaml:"title"`
	Content string     `json:"content" yaml:"content"`
	Type    AdviceType `json:"type" yaml:"type"`
}

// EstimationResult is handed to callers only after repair, so every slice is
// non-nil and every enum holds a member of its closed set.
type EstimationResult struct {
	Summary              string       `json:"summary" yaml:"summary"`
	TotalEstimatedAmount float64      `json:"totalEstimatedAmount" yaml:"totalEstimatedAmount"`
	Items                []ClaimItem  `json:"items" yaml:"items"`
	EvaluationPoints     []string     `json:"evaluationPoints" yaml:"evaluationPoints"`
	CommunicationAdvice  []AdviceItem `json:"communicationAdvice" yaml:"communicationAdvice"`
}

type UserInfo struct {
	Name string `json:"name" yaml:"name"`
	DOB  string `json:"dob" yaml:"dob"`
}
