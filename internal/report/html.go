package report

import (
	_ "embed"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/joelkehle/claimestimate/internal/claims"
)

//go:embed style.css
var styleCSS string

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML renders the report as a standalone document.
func (r Report) HTML() (string, error) {
	var content strings.Builder
	if err := markdown.Convert([]byte(r.Markdown()), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	l := labelsFor(r.Language)
	return "<!doctype html><html><head><meta charset='utf-8'><title>" + html.EscapeString(l.title) + "</title>" +
		"<style>" + styleCSS + "</style></head><body>" +
		"<article class='report'>" + markStatusCells(content.String(), r.Language) + "</article>" +
		"</body></html>", nil
}

// HTML converts a result for an event straight to an HTML document.
func HTML(result claims.EstimationResult, event claims.MedicalEvent, lang claims.Language) (string, error) {
	return Report{Result: result, Event: event, Language: lang}.HTML()
}

// markStatusCells tags status cells with their enum value so the stylesheet
// can color them.
func markStatusCells(contentHTML string, lang claims.Language) string {
	out := contentHTML
	for _, s := range claims.ClaimStatuses {
		re := regexp.MustCompile(`<td>\s*` + regexp.QuoteMeta(StatusLabel(s, lang)) + `\s*</td>`)
		out = re.ReplaceAllString(out, `<td data-status="`+string(s)+`">`+StatusLabel(s, lang)+`</td>`)
	}
	return out
}
