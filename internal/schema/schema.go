// Package schema defines the canonical data types shared across FinePrint:
// the questionnaire profile, the computed personalization profile, and the
// analysis result formats.
package schema

import "time"

// RiskLevel represents the bucketed overall risk of a document.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskLevelForScore derives the risk level from a risk score. This derivation
// is authoritative: it overrides any level asserted by the LLM.
// Buckets: score ≤ 3.5 → low, ≤ 7.0 → medium, else high.
func RiskLevelForScore(score float64) RiskLevel {
	switch {
	case score <= 3.5:
		return RiskLow
	case score <= 7.0:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// CategoryName identifies one of the four fixed analysis categories.
type CategoryName string

const (
	CategoryPrivacy     CategoryName = "privacy"
	CategoryLiability   CategoryName = "liability"
	CategoryTermination CategoryName = "termination"
	CategoryPayment     CategoryName = "payment"
)

// CategoryNames lists the fixed categories in canonical order. Every
// AnalysisResult carries exactly these four keys.
var CategoryNames = []CategoryName{
	CategoryPrivacy,
	CategoryLiability,
	CategoryTermination,
	CategoryPayment,
}

// ExplanationStyle selects the tone and depth of the personalized explanation.
type ExplanationStyle string

const (
	StyleSimpleProtective      ExplanationStyle = "simple_protective"
	StyleBalancedEducational   ExplanationStyle = "balanced_educational"
	StyleTechnicalEfficient    ExplanationStyle = "technical_efficient"
	StyleComprehensiveCautious ExplanationStyle = "comprehensive_cautious"
)

// ── Questionnaire ────────────────────────────────────────────────────────────

// Demographics holds the user's demographic answers.
type Demographics struct {
	AgeRange     string `json:"ageRange"`
	Occupation   string `json:"occupation"`
	Jurisdiction string `json:"jurisdiction"`
}

// DigitalBehavior holds the user's self-reported digital habits.
type DigitalBehavior struct {
	TechSophistication    string   `json:"techSophistication"`
	UsagePatterns         []string `json:"usagePatterns"`
	ExplanationPreference string   `json:"explanationPreference"`
}

// PrivacyPreferences holds the privacy section of the risk preferences.
type PrivacyPreferences struct {
	OverallImportance string `json:"overallImportance"`
}

// FinancialPreferences holds the financial section of the risk preferences.
type FinancialPreferences struct {
	PaymentApproach    string `json:"paymentApproach"`
	FinancialSituation string `json:"financialSituation"`
}

// LegalPreferences holds the legal section of the risk preferences.
type LegalPreferences struct {
	ArbitrationComfort string `json:"arbitrationComfort"`
}

// RiskPreferences groups the three explicit preference sections.
type RiskPreferences struct {
	Privacy   PrivacyPreferences   `json:"privacy"`
	Financial FinancialPreferences `json:"financial"`
	Legal     LegalPreferences     `json:"legal"`
}

// AlertPreferences controls when and how often the user wants to be warned.
type AlertPreferences struct {
	InterruptionTiming  string `json:"interruptionTiming"`
	AlertFrequencyLimit int    `json:"alertFrequencyLimit"`
}

// ContextualFactors holds situational answers that adjust scoring.
type ContextualFactors struct {
	DependentStatus      string           `json:"dependentStatus"`
	SpecialCircumstances []string         `json:"specialCircumstances"`
	AlertPreferences     AlertPreferences `json:"alertPreferences"`
}

// Questionnaire is the full user personalization questionnaire.
type Questionnaire struct {
	UserID            string            `json:"userId"`
	Demographics      Demographics      `json:"demographics"`
	DigitalBehavior   DigitalBehavior   `json:"digitalBehavior"`
	RiskPreferences   RiskPreferences   `json:"riskPreferences"`
	ContextualFactors ContextualFactors `json:"contextualFactors"`
}

// ── Computed profile ─────────────────────────────────────────────────────────

// RiskTolerance holds per-category tolerance scores in [0,10]; higher means
// the user accepts more risk in that category and needs fewer warnings.
// Overall is always the arithmetic mean of the three categories.
type RiskTolerance struct {
	Privacy   float64 `json:"privacy"`
	Financial float64 `json:"financial"`
	Legal     float64 `json:"legal"`
	Overall   float64 `json:"overall"`
}

// AlertThresholds holds per-category thresholds in [1,10]; a category score
// at or above its threshold should trigger a user-visible warning. Lower
// thresholds mean a more sensitive user.
type AlertThresholds struct {
	Privacy     float64 `json:"privacy"`
	Liability   float64 `json:"liability"`
	Termination float64 `json:"termination"`
	Payment     float64 `json:"payment"`
	Overall     float64 `json:"overall"`
}

// ComputedProfile is the derived personalization artifact. It is recomputed
// from the questionnaire on every save or section update, never hand-edited.
type ComputedProfile struct {
	RiskTolerance    RiskTolerance    `json:"riskTolerance"`
	AlertThresholds  AlertThresholds  `json:"alertThresholds"`
	ExplanationStyle ExplanationStyle `json:"explanationStyle"`
	// ProfileTags is an ordered list of prompt-templating tokens. Duplicates
	// are allowed and order is stable so prompts are reproducible.
	ProfileTags []string `json:"profileTags"`
}

// StoredProfile is a questionnaire with its embedded computed profile as
// persisted by a ProfileStore.
type StoredProfile struct {
	Questionnaire Questionnaire   `json:"questionnaire"`
	Computed      ComputedProfile `json:"computedProfile"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ── Analysis results ─────────────────────────────────────────────────────────

// CategoryResult is the per-category portion of an analysis.
type CategoryResult struct {
	Score    float64  `json:"score"`
	Concerns []string `json:"concerns"`
}

// AnalysisResult is the canonical per-document (or per-pass) analysis output.
// Instances are immutable once returned.
type AnalysisResult struct {
	RiskScore  float64                         `json:"risk_score"`
	RiskLevel  RiskLevel                       `json:"risk_level"`
	Summary    string                          `json:"summary"`
	KeyPoints  []string                        `json:"key_points"`
	Categories map[CategoryName]CategoryResult `json:"categories"`
	Confidence float64                         `json:"confidence"`

	// Optional per-pass extras the multi-pass synthesizer unions.
	RegulatoryFlags []string `json:"regulatory_flags,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	DocumentType    string   `json:"document_type,omitempty"`
	Jurisdiction    string   `json:"jurisdiction,omitempty"`

	// Fallback marks a degraded keyword-heuristic result produced when the
	// LLM was unavailable.
	Fallback bool `json:"fallback,omitempty"`
}

// AggregatedScore is a recency-weighted category score across passes.
type AggregatedScore struct {
	Score              float64 `json:"score"`
	Confidence         float64 `json:"confidence"`
	PassesContributing int     `json:"passes_contributing"`
}

// Insights is the deduplicated union of per-pass findings, in first-seen order.
type Insights struct {
	KeyPoints       []string `json:"key_points"`
	RegulatoryFlags []string `json:"regulatory_flags"`
	Recommendations []string `json:"recommendations"`
	Jurisdictions   []string `json:"jurisdictions"`
}

// DocumentMetadata is the mode of per-pass document observations.
type DocumentMetadata struct {
	DocumentType string  `json:"document_type"`
	Jurisdiction string  `json:"jurisdiction"`
	Confidence   float64 `json:"confidence"`
}

// MultiPassResult extends AnalysisResult with aggregation bookkeeping.
// Built once by the synthesizer, never mutated after return.
type MultiPassResult struct {
	AnalysisResult
	PassesCompleted       int                              `json:"passes_completed"`
	AggregatedScores      map[CategoryName]AggregatedScore `json:"aggregated_scores"`
	ComprehensiveInsights Insights                         `json:"comprehensive_insights"`
	DocumentMetadata      DocumentMetadata                 `json:"document_metadata"`
}
