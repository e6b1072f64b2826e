// Package normalize turns untrusted raw LLM analysis output into a canonical
// AnalysisResult. The LLM is an occasionally-malformed upstream, so every
// field has a safe default and nothing in this package ever returns an error
// for bad content: markdown fences are stripped, invalid JSON escapes are
// sanitized, a repair pass is attempted, and each field is individually
// defaulted or clamped.
package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/fineprint-dev/fineprint/internal/schema"
)

const (
	defaultScore      = 5.0
	defaultConfidence = 0.7

	minSummaryLen = 10
	maxSummaryLen = 500
	maxKeyPoints  = 5
	minKeyPoint   = 5
	maxConcerns   = 3

	fallbackSummary  = "The analysis completed but no usable summary was returned for this document."
	fallbackKeyPoint = "Review the full document before accepting; the analysis returned no specific points."
	fallbackConcern  = "Analysis incomplete for this category; review the relevant clauses manually."
)

// fenceRe matches a markdown code fence block (``` or ~~~) with an optional
// language tag and captures the content between the fences.
var fenceRe = regexp.MustCompile("(?s)^(?:`{3}|~{3})[^\\n]*\\n(.*?)(?:`{3}|~{3})\\s*$")

// openFenceRe matches only an opening fence line, for truncated responses
// that never closed the fence.
var openFenceRe = regexp.MustCompile("^(?:`{3}|~{3})[^\\n]*\\n")

// invalidJSONEscapeRe matches a backslash followed by a character that is not
// a valid JSON escape. LLMs sometimes emit regex patterns (\d+, \w+)
// unescaped inside JSON strings; the sanitizer double-escapes them so the
// parser accepts the response.
var invalidJSONEscapeRe = regexp.MustCompile(`\\([^"\\/bfnrtu])`)

// Parse decodes a raw LLM response into a canonical AnalysisResult. It never
// fails: unparseable responses normalize to a fully defaulted result.
func Parse(raw string) schema.AnalysisResult {
	return Normalize(decode(raw))
}

// decode extracts a JSON object from raw, trying progressively harder:
// fence stripping, escape sanitizing, then a jsonrepair pass.
func decode(raw string) map[string]any {
	raw = stripMarkdownFences(raw)

	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err == nil {
		return m
	}
	fixed := fixInvalidJSONEscapes(raw)
	if err := json.Unmarshal([]byte(fixed), &m); err == nil {
		return m
	}
	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(repaired), &m); err != nil {
		return nil
	}
	return m
}

// Normalize validates and clamps a parsed LLM analysis object into the
// canonical shape. A nil or empty map yields a fully defaulted result with
// all four category keys present.
func Normalize(raw map[string]any) schema.AnalysisResult {
	result := schema.AnalysisResult{
		RiskScore:  normalizeScore(raw["risk_score"]),
		Summary:    normalizeSummary(raw["summary"]),
		KeyPoints:  normalizeKeyPoints(raw["key_points"]),
		Categories: normalizeCategories(raw["categories"]),
		Confidence: normalizeConfidence(raw["confidence"]),

		RegulatoryFlags: stringSlice(raw["regulatory_flags"]),
		Recommendations: stringSlice(raw["recommendations"]),
		DocumentType:    stringValue(raw["document_type"]),
		Jurisdiction:    stringValue(raw["jurisdiction"]),
	}
	// The bucket derivation is authoritative; whatever risk_level the LLM
	// asserted is discarded.
	result.RiskLevel = schema.RiskLevelForScore(result.RiskScore)
	return result
}

// normalizeScore parses a risk score, substituting the default when the
// value is missing, non-numeric, NaN, or outside [1,10].
func normalizeScore(v any) float64 {
	f, ok := floatValue(v)
	if !ok || math.IsNaN(f) || f < 1 || f > 10 {
		return defaultScore
	}
	return f
}

// normalizeSummary enforces the 10-500 character summary contract.
func normalizeSummary(v any) string {
	s := strings.TrimSpace(stringValue(v))
	if len(s) < minSummaryLen {
		return fallbackSummary
	}
	if len(s) > maxSummaryLen {
		return s[:maxSummaryLen-3] + "..."
	}
	return s
}

// normalizeKeyPoints filters to strings longer than minKeyPoint characters
// and caps the list, substituting one fallback entry when nothing survives.
func normalizeKeyPoints(v any) []string {
	var points []string
	for _, s := range stringSlice(v) {
		s = strings.TrimSpace(s)
		if len(s) > minKeyPoint {
			points = append(points, s)
		}
		if len(points) == maxKeyPoints {
			break
		}
	}
	if len(points) == 0 {
		return []string{fallbackKeyPoint}
	}
	return points
}

// normalizeCategories guarantees exactly the four fixed category keys.
// Absent or malformed categories are substituted wholesale; present ones
// have their score clamped to [1,10] and concerns capped.
func normalizeCategories(v any) map[schema.CategoryName]schema.CategoryResult {
	rawCats, _ := v.(map[string]any)
	out := make(map[schema.CategoryName]schema.CategoryResult, len(schema.CategoryNames))
	for _, name := range schema.CategoryNames {
		rawCat, ok := rawCats[string(name)].(map[string]any)
		if !ok {
			out[name] = defaultCategory()
			continue
		}
		score, ok := floatValue(rawCat["score"])
		if !ok || math.IsNaN(score) {
			score = defaultScore
		} else if score < 1 {
			score = 1
		} else if score > 10 {
			score = 10
		}
		concerns := stringSlice(rawCat["concerns"])
		if len(concerns) > maxConcerns {
			concerns = concerns[:maxConcerns]
		}
		if len(concerns) == 0 {
			concerns = []string{fallbackConcern}
		}
		out[name] = schema.CategoryResult{Score: score, Concerns: concerns}
	}
	return out
}

// normalizeConfidence clamps confidence to [0,1], defaulting on failure.
func normalizeConfidence(v any) float64 {
	f, ok := floatValue(v)
	if !ok || math.IsNaN(f) {
		return defaultConfidence
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// defaultCategory is the substitute for a missing or malformed category.
func defaultCategory() schema.CategoryResult {
	return schema.CategoryResult{
		Score:    defaultScore,
		Concerns: []string{fallbackConcern},
	}
}

// stripMarkdownFences removes the markdown code fences LLMs sometimes wrap
// around JSON output. A lone opening fence from a truncated response is also
// stripped so the content can still be parsed.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if loc := openFenceRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// fixInvalidJSONEscapes double-escapes invalid JSON escape sequences.
func fixInvalidJSONEscapes(s string) string {
	return invalidJSONEscapeRe.ReplaceAllString(s, `\\$1`)
}

// floatValue extracts a float from the loose types json.Unmarshal and LLMs
// produce: numbers, numeric strings, and integers.
func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// stringValue extracts a string, returning "" for anything else.
func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// stringSlice extracts the string members of a JSON array, dropping any
// non-string entries.
func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
