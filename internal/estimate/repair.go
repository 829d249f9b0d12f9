// Package estimate turns oracle replies into well-formed estimation results
// and runs one estimation end to end.
package estimate

import (
	"regexp"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/oracle"
)

// Repair never fails: anything it cannot read becomes Degraded(lang).
func Repair(raw string, lang claims.Language) claims.EstimationResult {
	r, _ := Inspect(raw, lang)
	return r
}

// Inspect is Repair that also reports whether the degraded fallback was used.
func Inspect(raw string, lang claims.Language) (result claims.EstimationResult, degraded bool) {
	lang = claims.ParseLanguage(string(lang))
	obj, ok := extractObject(raw)
	if !ok {
		return Degraded(lang), true
	}
	return coerceResult(obj, lang), false
}

// Degraded is the canonical result for a reply that could not be read at all.
func Degraded(lang claims.Language) claims.EstimationResult {
	lang = claims.ParseLanguage(string(lang))
	return claims.EstimationResult{
		Summary:              lang.Phrase(claims.PhraseAnalysisFailed),
		TotalEstimatedAmount: 0,
		Items:                []claims.ClaimItem{},
		EvaluationPoints:     []string{lang.Phrase(claims.PhraseCheckInput)},
		CommunicationAdvice:  []claims.AdviceItem{},
	}
}

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

// extractObject takes the first '{' through the last '}' as the candidate
// and falls back to the body of a code fence.
func extractObject(raw string) (map[string]any, bool) {
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		if obj, ok := parseObject(raw[start : end+1]); ok {
			return obj, true
		}
	}
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		return parseObject(m[1])
	}
	return nil, false
}

func parseObject(candidate string) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

func coerceResult(obj map[string]any, lang claims.Language) claims.EstimationResult {
	summary, ok := nonBlank(obj[oracle.FieldSummary])
	if !ok {
		summary = lang.Phrase(claims.PhraseAnalysisComplete)
	}
	return claims.EstimationResult{
		Summary:              summary,
		TotalEstimatedAmount: number(obj[oracle.FieldTotal]),
		Items:                coerceItems(obj[oracle.FieldItems]),
		EvaluationPoints:     coercePoints(obj[oracle.FieldEvaluationPoints]),
		CommunicationAdvice:  coerceAdvice(obj[oracle.FieldAdvice]),
	}
}

// coerceItems drops entries that are not objects or have no component name.
func coerceItems(v any) []claims.ClaimItem {
	out := []claims.ClaimItem{}
	list, _ := v.([]any)
	for _, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		name, ok := nonBlank(m[oracle.FieldComponentName])
		if !ok {
			continue
		}
		status := claims.ClaimStatus(text(m[oracle.FieldStatus]))
		if !status.Valid() {
			status = claims.StatusNotApplicable
		}
		out = append(out, claims.ClaimItem{
			PolicyID:        text(m[oracle.FieldPolicyID]),
			ComponentName:   name,
			EstimatedAmount: number(m[oracle.FieldEstimatedAmount]),
			Status:          status,
			Reason:          text(m[oracle.FieldReason]),
		})
	}
	return out
}

func coercePoints(v any) []string {
	out := []string{}
	list, _ := v.([]any)
	for _, el := range list {
		if s, ok := nonBlank(el); ok {
			out = append(out, s)
		}
	}
	return out
}

// coerceAdvice drops entries with neither a title nor content.
func coerceAdvice(v any) []claims.AdviceItem {
	out := []claims.AdviceItem{}
	list, _ := v.([]any)
	for _, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		title, content := text(m[oracle.FieldTitle]), text(m[oracle.FieldContent])
		if strings.TrimSpace(title) == "" && strings.TrimSpace(content) == "" {
			continue
		}
		kind := claims.AdviceType(text(m[oracle.FieldType]))
		if !kind.Valid() {
			kind = claims.AdviceTip
		}
		out = append(out, claims.AdviceItem{Title: title, Content: content, Type: kind})
	}
	return out
}

func text(v any) string {
	s, _ := v.(string)
	return s
}

func nonBlank(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// number accepts JSON numbers only; numeric strings are not amounts.
func number(v any) float64 {
	f, _ := v.(float64)
	return f
}
