// Package prompt assembles the personalized prompts sent to the LLM. Assembly
// is deterministic string concatenation: a base explanation-style fragment,
// an occupation focus fragment, a tolerance-banded warning instruction, at
// most one demographic override, then the literal profile tags, numeric
// thresholds, and the document text. Output is opaque to everything
// downstream except the LLM call.
package prompt

import (
	"fmt"
	"strings"

	"github.com/fineprint-dev/fineprint/internal/schema"
)

// Prompt is an assembled system/user prompt pair.
type Prompt struct {
	System string
	User   string
}

// PassOptions parameterizes one analysis pass.
type PassOptions struct {
	// PassNumber is 1-based; TotalPasses is the planned pass count. Zero
	// values mean a single-pass analysis.
	PassNumber  int
	TotalPasses int
	// Focus narrows the analytical attention of this pass.
	Focus string
	// PriorSummaries carries the summaries of earlier passes, in order.
	PriorSummaries []string
}

// styleFragments are the four base system-prompt fragments.
var styleFragments = map[schema.ExplanationStyle]string{
	schema.StyleSimpleProtective: "Explain in plain, simple language a non-expert can follow. " +
		"Avoid legal jargon entirely; when a term is unavoidable, define it in one short sentence. " +
		"Err on the side of warning the user: when in doubt, flag it.",
	schema.StyleBalancedEducational: "Explain clearly and teach as you go. Define legal terms briefly " +
		"when first used and say why each flagged clause matters in practice. " +
		"Balance thoroughness against readability.",
	schema.StyleTechnicalEfficient: "Be precise and concise. Use correct legal and technical terminology " +
		"without explanation. Cite the clause language directly. Skip background the reader already knows.",
	schema.StyleComprehensiveCautious: "Be exhaustive. Cover every clause category, note secondary and " +
		"edge-case risks, and cross-reference related clauses. Prefer over-reporting to omission.",
}

// occupationFocus adds one occupation-specific attention instruction.
// Unknown occupations use the "other" fragment.
var occupationFocus = map[string]string{
	"technology": "Pay particular attention to data processing, API usage restrictions, " +
		"intellectual-property assignment, and license-back clauses.",
	"healthcare": "Pay particular attention to health-data handling, confidentiality obligations, " +
		"and regulatory compliance clauses (HIPAA and equivalents).",
	"legal": "Pay particular attention to arbitration, class-action waiver, choice-of-law, " +
		"and indemnification clauses; the reader can evaluate cited language directly.",
	"finance": "Pay particular attention to payment terms, automatic renewal, fee changes, " +
		"and liability caps around financial loss.",
	"education": "Pay particular attention to student-data handling and content-ownership clauses.",
	"student": "Pay particular attention to subscription traps, auto-renewal, and cancellation terms.",
	"retired": "Pay particular attention to recurring charges, cancellation procedures, " +
		"and clauses that are commonly abused in schemes targeting older consumers.",
	"other": "Pay balanced attention across privacy, liability, termination, and payment clauses.",
}

// Tolerance-banded warning instructions, selected by overall risk tolerance.
const (
	lowToleranceFragment = "This user is risk-averse. Flag every concerning clause, including " +
		"moderate ones. A clause scoring above the user's threshold must be called out explicitly."
	moderateToleranceFragment = "This user has moderate risk tolerance. Flag clearly concerning " +
		"clauses and summarize moderate ones briefly without alarm."
	highToleranceFragment = "This user is risk-tolerant. Flag only severe or unusual clauses; " +
		"do not warn about standard boilerplate."
)

// Demographic overrides. At most one applies, checked in fixed priority
// order: under 18, over 55, non-native speaker, vulnerable circumstance.
const (
	minorOverride = "The reader is a minor. Use very simple language, highlight clauses that " +
		"affect minors specifically, and recommend involving a parent or guardian for anything significant."
	seniorOverride = "The reader is an older adult. Use clear, unhurried language and highlight " +
		"recurring charges, cancellation difficulty, and clauses commonly abused in elder-targeted schemes."
	nonNativeOverride = "The reader is not a native speaker of the document's language. Use short " +
		"sentences and common words; restate every flagged clause in plain terms."
	vulnerableOverride = "The reader is in a vulnerable circumstance. Be maximally protective: " +
		"flag anything with potential for harm and keep explanations simple and actionable."
)

// outputSchema is the JSON schema fragment shown to the LLM.
const outputSchema = `Output ONLY valid JSON conforming to this schema. No prose, no markdown.
{
  "risk_score": 5.0,
  "risk_level": "low|medium|high",
  "summary": "10-500 character overall summary",
  "key_points": ["up to 5 short findings"],
  "categories": {
    "privacy":     {"score": 5.0, "concerns": ["up to 3 concerns"]},
    "liability":   {"score": 5.0, "concerns": ["up to 3 concerns"]},
    "termination": {"score": 5.0, "concerns": ["up to 3 concerns"]},
    "payment":     {"score": 5.0, "concerns": ["up to 3 concerns"]}
  },
  "confidence": 0.8,
  "regulatory_flags": ["optional regulatory concerns"],
  "recommendations": ["optional actions for the user"],
  "document_type": "terms_of_service|privacy_policy|eula|other",
  "jurisdiction": "governing jurisdiction if stated"
}
`

// Build assembles the prompt pair for one analysis call.
func Build(documentText string, computed schema.ComputedProfile, q schema.Questionnaire, opts PassOptions) Prompt {
	return Prompt{
		System: buildSystemPrompt(computed, q),
		User:   buildUserPrompt(documentText, computed, opts),
	}
}

// buildSystemPrompt assembles the personalized system prompt.
func buildSystemPrompt(computed schema.ComputedProfile, q schema.Questionnaire) string {
	var sb strings.Builder

	sb.WriteString("You are FinePrint, a terms-and-conditions risk analyzer. " +
		"You analyze legal documents on behalf of one specific user and tailor " +
		"the explanation to that user's profile.\n\n")

	style, ok := styleFragments[computed.ExplanationStyle]
	if !ok {
		style = styleFragments[schema.StyleBalancedEducational]
	}
	sb.WriteString(style)
	sb.WriteString("\n\n")

	focus, ok := occupationFocus[q.Demographics.Occupation]
	if !ok {
		focus = occupationFocus["other"]
	}
	sb.WriteString(focus)
	sb.WriteString("\n\n")

	sb.WriteString(toleranceFragment(computed.RiskTolerance.Overall))
	sb.WriteString("\n\n")

	if override := demographicOverride(q); override != "" {
		sb.WriteString(override)
		sb.WriteString("\n\n")
	}

	sb.WriteString(outputSchema)
	return sb.String()
}

// toleranceFragment selects the warning instruction by overall tolerance
// band: ≤3 cautious, ≤7 moderate, >7 tolerant.
func toleranceFragment(overall float64) string {
	switch {
	case overall <= 3:
		return lowToleranceFragment
	case overall <= 7:
		return moderateToleranceFragment
	default:
		return highToleranceFragment
	}
}

// demographicOverride returns the single applicable override fragment, or ""
// when none applies.
func demographicOverride(q schema.Questionnaire) string {
	switch {
	case q.Demographics.AgeRange == "under_18":
		return minorOverride
	case q.Demographics.AgeRange == "over_55":
		return seniorOverride
	case hasCircumstance(q, "non_native_speaker"):
		return nonNativeOverride
	case hasCircumstance(q, "elderly_or_vulnerable"):
		return vulnerableOverride
	default:
		return ""
	}
}

// buildUserPrompt assembles the user prompt: profile tokens, numeric
// thresholds, pass context, then the document.
func buildUserPrompt(documentText string, computed schema.ComputedProfile, opts PassOptions) string {
	var sb strings.Builder

	sb.WriteString("USER PROFILE TAGS: ")
	sb.WriteString(strings.Join(computed.ProfileTags, ", "))
	sb.WriteString("\n\n")

	t := computed.AlertThresholds
	fmt.Fprintf(&sb, "ALERT THRESHOLDS (warn when a category score meets or exceeds its threshold): "+
		"privacy=%.1f liability=%.1f termination=%.1f payment=%.1f overall=%.1f\n\n",
		t.Privacy, t.Liability, t.Termination, t.Payment, t.Overall)

	rt := computed.RiskTolerance
	fmt.Fprintf(&sb, "RISK TOLERANCE (0-10, higher means more tolerant): "+
		"privacy=%.1f financial=%.1f legal=%.1f overall=%.1f\n\n",
		rt.Privacy, rt.Financial, rt.Legal, rt.Overall)

	if opts.PassNumber > 0 {
		fmt.Fprintf(&sb, "ANALYSIS PASS %d of %d.\n", opts.PassNumber, opts.TotalPasses)
		if opts.Focus != "" {
			fmt.Fprintf(&sb, "FOCUS FOR THIS PASS: %s\n", opts.Focus)
		}
		sb.WriteString("\n")
	}
	if len(opts.PriorSummaries) > 0 {
		sb.WriteString("FINDINGS FROM EARLIER PASSES:\n")
		for i, s := range opts.PriorSummaries {
			fmt.Fprintf(&sb, "  pass %d: %s\n", i+1, s)
		}
		sb.WriteString("Build on these findings; refine rather than repeat them.\n\n")
	}

	sb.WriteString("DOCUMENT TEXT:\n")
	sb.WriteString(documentText)
	sb.WriteString("\n\nProduce the JSON analysis now.")

	return sb.String()
}

// hasCircumstance reports whether q lists circumstance.
func hasCircumstance(q schema.Questionnaire, circumstance string) bool {
	for _, c := range q.ContextualFactors.SpecialCircumstances {
		if c == circumstance {
			return true
		}
	}
	return false
}
