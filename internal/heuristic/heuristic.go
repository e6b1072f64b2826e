// Package heuristic produces a degraded keyword-count analysis when the LLM
// is unavailable. Availability is prioritized over completeness: a timeout or
// upstream failure downgrades to this result instead of hard-failing. The
// result is clearly flagged as a fallback and carries low confidence.
package heuristic

import (
	"fmt"
	"strings"

	"github.com/fineprint-dev/fineprint/internal/schema"
)

const (
	baseScore      = 3.0
	perMatch       = 0.8
	maxScore       = 10.0
	fallbackConf   = 0.3
	maxKeyPoints   = 5
	maxConcernsCat = 3
)

// categoryKeywords are the risk phrases scanned per category. Each distinct
// phrase found raises that category's score by perMatch over the base.
var categoryKeywords = map[schema.CategoryName][]string{
	schema.CategoryPrivacy: {
		"third party", "third parties", "sell your data", "share your information",
		"tracking", "cookies", "advertising partners", "data broker",
		"biometric", "location data", "retain your data",
	},
	schema.CategoryLiability: {
		"as is", "no warranty", "limitation of liability", "indemnify",
		"hold harmless", "arbitration", "class action waiver",
		"disclaim", "not responsible", "sole discretion",
	},
	schema.CategoryTermination: {
		"terminate at any time", "suspend your account", "without notice",
		"without cause", "forfeit", "no refund upon termination",
		"discontinue the service",
	},
	schema.CategoryPayment: {
		"automatic renewal", "auto-renew", "non-refundable", "recurring charge",
		"price changes", "fees may change", "cancellation fee", "free trial converts",
	},
}

// Analyze produces the keyword-count fallback analysis of text.
func Analyze(text string) schema.AnalysisResult {
	lower := strings.ToLower(text)

	categories := make(map[schema.CategoryName]schema.CategoryResult, len(schema.CategoryNames))
	var keyPoints []string
	var total float64

	for _, name := range schema.CategoryNames {
		score := baseScore
		var concerns []string
		for _, kw := range categoryKeywords[name] {
			if strings.Contains(lower, kw) {
				score += perMatch
				if len(concerns) < maxConcernsCat {
					concerns = append(concerns, fmt.Sprintf("Document contains %q language.", kw))
				}
				if len(keyPoints) < maxKeyPoints {
					keyPoints = append(keyPoints, fmt.Sprintf("Found %s-related phrase: %q.", name, kw))
				}
			}
		}
		if score > maxScore {
			score = maxScore
		}
		if len(concerns) == 0 {
			concerns = []string{fmt.Sprintf("No %s risk phrases detected by keyword scan.", name)}
		}
		categories[name] = schema.CategoryResult{Score: score, Concerns: concerns}
		total += score
	}

	riskScore := total / float64(len(schema.CategoryNames))
	if len(keyPoints) == 0 {
		keyPoints = []string{"Keyword scan found no known risk phrases; this does not guarantee the document is safe."}
	}

	return schema.AnalysisResult{
		RiskScore:  riskScore,
		RiskLevel:  schema.RiskLevelForScore(riskScore),
		Summary:    summaryFor(riskScore),
		KeyPoints:  keyPoints,
		Categories: categories,
		Confidence: fallbackConf,
		Fallback:   true,
	}
}

// summaryFor produces the fixed fallback summary for a heuristic score.
func summaryFor(score float64) string {
	return fmt.Sprintf(
		"Automated keyword scan only (the AI analysis was unavailable). Estimated risk %.1f/10. "+
			"Treat this as a rough signal and re-run the full analysis.", score)
}
