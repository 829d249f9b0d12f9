package oracle

import (
	json "github.com/goccy/go-json"

	"github.com/joelkehle/claimestimate/internal/claims"
)

// Field names of the estimation reply. The response repairer reads exactly
// these keys, so the schema and the repairer cannot drift apart.
const (
	FieldSummary          = "summary"
	FieldTotal            = "totalEstimatedAmount"
	FieldItems            = "items"
	FieldEvaluationPoints = "evaluationPoints"
	FieldAdvice           = "communicationAdvice"

	FieldPolicyID        = "policyId"
	FieldComponentName   = "componentName"
	FieldEstimatedAmount = "estimatedAmount"
	FieldStatus          = "status"
	FieldReason          = "reason"

	FieldTitle   = "title"
	FieldContent = "content"
	FieldType    = "type"

	FieldCompany            = "company"
	FieldMainPlanName       = "mainPlanName"
	FieldMainCoverageAmount = "mainCoverageAmount"
)

const (
	TypeObject = "object"
	TypeArray  = "array"
	TypeString = "string"
	TypeNumber = "number"
)

// Schema is the subset of JSON Schema both transports understand.
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Enum       []string           `json:"enum,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

func str() *Schema { return &Schema{Type: TypeString} }
func num() *Schema { return &Schema{Type: TypeNumber} }

func enumOf[T ~string](values []T) *Schema {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return &Schema{Type: TypeString, Enum: out}
}

func EstimationSchema() *Schema {
	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			FieldSummary: str(),
			FieldTotal:   num(),
			FieldItems: {
				Type: TypeArray,
				Items: &Schema{
					Type: TypeObject,
					Properties: map[string]*Schema{
						FieldPolicyID:        str(),
						FieldComponentName:   str(),
						FieldEstimatedAmount: num(),
						FieldStatus:          enumOf(claims.ClaimStatuses),
						FieldReason:          str(),
					},
					Required: []string{FieldPolicyID, FieldComponentName, FieldEstimatedAmount, FieldStatus, FieldReason},
				},
			},
			FieldEvaluationPoints: {Type: TypeArray, Items: str()},
			FieldAdvice: {
				Type: TypeArray,
				Items: &Schema{
					Type: TypeObject,
					Properties: map[string]*Schema{
						FieldTitle:   str(),
						FieldContent: str(),
						FieldType:    enumOf(claims.AdviceTypes),
					},
					Required: []string{FieldTitle, FieldContent, FieldType},
				},
			},
		},
		Required: []string{FieldSummary, FieldTotal, FieldItems, FieldEvaluationPoints, FieldAdvice},
	}
}

func PolicyDraftSchema() *Schema {
	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			FieldCompany:            str(),
			FieldMainPlanName:       str(),
			FieldMainCoverageAmount: num(),
		},
	}
}

// Indented renders the schema for embedding in instructions.
func (s *Schema) Indented() string {
	blob, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(blob)
}
