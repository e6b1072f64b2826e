// Package synthesis aggregates the results of sequential analysis passes
// into a single MultiPassResult. Later passes see more accumulated context,
// so scores are combined with a recency-weighted average. The weighting
// scheme is a heuristic policy choice, not a statistical estimator.
package synthesis

import (
	"errors"
	"math"

	"github.com/fineprint-dev/fineprint/internal/schema"
)

// ErrInsufficientPasses is returned when there are no completed passes to
// synthesize from. The caller cannot safely degrade further.
var ErrInsufficientPasses = errors.New("synthesis: no completed passes to synthesize")

const (
	// passWeightBase and passWeightStep define the recency weight of pass i
	// as base + step*i. Tunable policy constants; the specific coefficients
	// carry no correctness requirement.
	passWeightBase = 1.0
	passWeightStep = 0.5

	// confidencePassTarget and confidenceCap define pass-count confidence as
	// min(passes/target, cap).
	confidencePassTarget = 5.0
	confidenceCap        = 0.95
)

// Synthesize aggregates one or more normalized pass results. Passes must be
// in execution order: index position determines recency weight.
func Synthesize(passes []schema.AnalysisResult) (*schema.MultiPassResult, error) {
	if len(passes) == 0 {
		return nil, ErrInsufficientPasses
	}

	confidence := passConfidence(len(passes))
	insights := collectInsights(passes)

	result := &schema.MultiPassResult{
		PassesCompleted:       len(passes),
		AggregatedScores:      aggregateCategories(passes, confidence),
		ComprehensiveInsights: insights,
		DocumentMetadata:      documentMetadata(passes, confidence),
	}

	result.RiskScore = weightedScore(passes)
	result.RiskLevel = schema.RiskLevelForScore(result.RiskScore)
	// The final pass saw the most context; its summary stands for the run.
	result.Summary = passes[len(passes)-1].Summary
	result.KeyPoints = capSlice(insights.KeyPoints, 5)
	result.Categories = mergedCategories(passes, result.AggregatedScores)
	result.Confidence = confidence
	result.DocumentType = result.DocumentMetadata.DocumentType
	result.Jurisdiction = result.DocumentMetadata.Jurisdiction
	for _, p := range passes {
		if p.Fallback {
			result.Fallback = true
			break
		}
	}

	return result, nil
}

// passConfidence maps a completed-pass count to a confidence value.
func passConfidence(passes int) float64 {
	return math.Min(float64(passes)/confidencePassTarget, confidenceCap)
}

// weight returns the recency weight of the pass at index i.
func weight(i int) float64 {
	return passWeightBase + passWeightStep*float64(i)
}

// weightedScore computes the recency-weighted mean of the per-pass overall
// risk scores, rounded to 1 decimal.
func weightedScore(passes []schema.AnalysisResult) float64 {
	var sum, total float64
	for i, p := range passes {
		w := weight(i)
		sum += p.RiskScore * w
		total += w
	}
	return round1(sum / total)
}

// aggregateCategories computes the recency-weighted mean score per category.
// Passes missing a category are skipped for that category; the contributing
// count reflects only the passes that reported it.
func aggregateCategories(passes []schema.AnalysisResult, confidence float64) map[schema.CategoryName]schema.AggregatedScore {
	out := make(map[schema.CategoryName]schema.AggregatedScore, len(schema.CategoryNames))
	for _, name := range schema.CategoryNames {
		var sum, total float64
		var count int
		for i, p := range passes {
			cat, ok := p.Categories[name]
			if !ok {
				continue
			}
			w := weight(i)
			sum += cat.Score * w
			total += w
			count++
		}
		if count == 0 {
			continue
		}
		out[name] = schema.AggregatedScore{
			Score:              round1(sum / total),
			Confidence:         confidence,
			PassesContributing: count,
		}
	}
	return out
}

// mergedCategories builds the final per-category results: the aggregated
// score alongside the union of concerns across passes, capped at 3.
func mergedCategories(passes []schema.AnalysisResult, scores map[schema.CategoryName]schema.AggregatedScore) map[schema.CategoryName]schema.CategoryResult {
	out := make(map[schema.CategoryName]schema.CategoryResult, len(schema.CategoryNames))
	for _, name := range schema.CategoryNames {
		agg, ok := scores[name]
		if !ok {
			continue
		}
		var concerns []string
		seen := make(map[string]bool)
		for _, p := range passes {
			cat, ok := p.Categories[name]
			if !ok {
				continue
			}
			for _, c := range cat.Concerns {
				if !seen[c] {
					seen[c] = true
					concerns = append(concerns, c)
				}
			}
		}
		out[name] = schema.CategoryResult{
			Score:    agg.Score,
			Concerns: capSlice(concerns, 3),
		}
	}
	return out
}

// collectInsights unions the per-pass findings, deduplicated by exact string
// equality with first-seen order preserved. The union is unweighted.
func collectInsights(passes []schema.AnalysisResult) schema.Insights {
	var insights schema.Insights
	keySeen := make(map[string]bool)
	flagSeen := make(map[string]bool)
	recSeen := make(map[string]bool)
	jurSeen := make(map[string]bool)

	for _, p := range passes {
		insights.KeyPoints = appendUnique(insights.KeyPoints, keySeen, p.KeyPoints...)
		insights.RegulatoryFlags = appendUnique(insights.RegulatoryFlags, flagSeen, p.RegulatoryFlags...)
		insights.Recommendations = appendUnique(insights.Recommendations, recSeen, p.Recommendations...)
		if p.Jurisdiction != "" {
			insights.Jurisdictions = appendUnique(insights.Jurisdictions, jurSeen, p.Jurisdiction)
		}
	}
	return insights
}

// documentMetadata takes the mode of the observed document type and
// jurisdiction across passes. Ties break in first-seen order.
func documentMetadata(passes []schema.AnalysisResult, confidence float64) schema.DocumentMetadata {
	var types, jurisdictions []string
	for _, p := range passes {
		if p.DocumentType != "" {
			types = append(types, p.DocumentType)
		}
		if p.Jurisdiction != "" {
			jurisdictions = append(jurisdictions, p.Jurisdiction)
		}
	}
	return schema.DocumentMetadata{
		DocumentType: mode(types),
		Jurisdiction: mode(jurisdictions),
		Confidence:   confidence,
	}
}

// mode returns the most frequent value in values, ties broken by first-seen
// order. Empty input returns "".
func mode(values []string) string {
	counts := make(map[string]int, len(values))
	best := ""
	bestCount := 0
	for _, v := range values {
		counts[v]++
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}

// appendUnique appends the values not already in seen, preserving order.
func appendUnique(dst []string, seen map[string]bool, values ...string) []string {
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			dst = append(dst, v)
		}
	}
	return dst
}

// capSlice truncates s to at most n entries.
func capSlice(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// round1 rounds to 1 decimal place, half away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
