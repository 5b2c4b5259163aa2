// Package report turns free-form completion text into a structured report:
// named sections, headline metrics, and recommendation sentences.
//
// Everything here is best-effort pattern matching over unstructured model
// output, deliberately isolated behind this package so it can be replaced by
// a stricter contract (e.g. requesting JSON output from the model) without
// touching the workflow. All functions are pure and total over any string,
// including the empty string; a missing pattern just yields an empty result.
package report

import (
	"regexp"
	"strings"
)

// DefaultSection collects any text that appears before the first detected
// header.
const DefaultSection = "summary"

var (
	headerRe      = regexp.MustCompile(`^#+\s+|^\*\*.*\*\*`)
	headerMarkRe  = regexp.MustCompile(`#+|\*\*`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	currencyRe    = regexp.MustCompile(`\$[\d,]+\.?\d*`)
	txnCountRe    = regexp.MustCompile(`(?i)(\d+)\s*transactions?`)
	avgAmountRe   = regexp.MustCompile(`(?i)average.*?\$[\d,]+\.?\d*`)
	sentenceEndRe = regexp.MustCompile(`[.!?]+`)
)

var recommendationKeywords = []string{
	"recommend",
	"suggest",
	"should",
	"consider",
	"focus on",
	"improve",
	"opportunity",
}

// Extraction is the structured view of one completion response.
type Extraction struct {
	Sections        map[string]string
	Metrics         map[string]string
	Recommendations []string
}

// Extract runs all three extractors over the text.
func Extract(text string) Extraction {
	return Extraction{
		Sections:        ParseSections(text),
		Metrics:         ExtractMetrics(text),
		Recommendations: ExtractRecommendations(text),
	}
}

// ParseSections splits text into named sections. A line is a header when it
// begins a markdown heading or is wrapped in bold markup; the section name is
// the header text lowercased with whitespace collapsed to underscores. Text
// before the first header lands in the "summary" section.
func ParseSections(text string) map[string]string {
	sections := make(map[string]string)

	current := DefaultSection
	var content strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if headerRe.MatchString(line) {
			if body := strings.TrimSpace(content.String()); body != "" {
				sections[current] = body
			}
			name := strings.TrimSpace(headerMarkRe.ReplaceAllString(line, ""))
			current = whitespaceRe.ReplaceAllString(strings.ToLower(name), "_")
			content.Reset()
		} else {
			content.WriteString(line)
			content.WriteString("\n")
		}
	}
	if body := strings.TrimSpace(content.String()); body != "" {
		sections[current] = body
	}

	return sections
}

// ExtractMetrics scans for headline figures: the first currency amount as
// "revenue", an integer followed by "transaction(s)" as "transactions", and
// an "average ... $x" phrase as "averageTransaction". Absent patterns are
// simply omitted.
func ExtractMetrics(text string) map[string]string {
	metrics := make(map[string]string)

	if m := currencyRe.FindString(text); m != "" {
		metrics["revenue"] = m
	}
	if m := txnCountRe.FindStringSubmatch(text); m != nil {
		metrics["transactions"] = m[1]
	}
	if m := avgAmountRe.FindString(text); m != "" {
		metrics["averageTransaction"] = m
	}

	return metrics
}

// ExtractRecommendations mines sentences that read like advice: longer than
// 10 characters and containing at least one recommendation keyword. Original
// order is preserved and at most 5 results are returned.
func ExtractRecommendations(text string) []string {
	var recs []string
	for _, sentence := range sentenceEndRe.Split(text, -1) {
		trimmed := strings.TrimSpace(sentence)
		lower := strings.ToLower(trimmed)
		if len(lower) <= 10 {
			continue
		}
		for _, kw := range recommendationKeywords {
			if strings.Contains(lower, kw) {
				recs = append(recs, trimmed)
				break
			}
		}
		if len(recs) >= 5 {
			break
		}
	}
	return recs
}
