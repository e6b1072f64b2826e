// Package questionnaire validates raw personalization questionnaires against
// the fixed category sets for every enumerated field. Validation happens
// before profile computation; the computer itself never rejects input.
package questionnaire

import (
	"fmt"

	"github.com/fineprint-dev/fineprint/internal/schema"
)

// FieldError records a single validation failure on a questionnaire field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("questionnaire: %s: %s", e.Field, e.Message)
}

// ValidationError aggregates every field failure from one validation run so
// callers can surface per-field messages in a single error value.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return e.Fields[0].Error()
	}
	return fmt.Sprintf("questionnaire: %d invalid fields (first: %s: %s)",
		len(e.Fields), e.Fields[0].Field, e.Fields[0].Message)
}

// AsError wraps a non-empty FieldError list in a ValidationError, or returns
// nil when the list is empty.
func AsError(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}

// Category sets for every enumerated questionnaire field. These are the only
// values validation accepts; the profile computer additionally tolerates
// unknown values with a neutral default as a safety net.
var (
	AgeRanges = []string{"under_18", "18_25", "26_40", "41_55", "over_55"}

	Occupations = []string{
		"technology", "healthcare", "legal", "finance",
		"education", "student", "retired", "other",
	}

	Jurisdictions = []string{"us", "eu", "uk", "canada", "australia", "other"}

	TechSophistications = []string{"beginner", "intermediate", "advanced", "expert"}

	UsagePatterns = []string{
		"social_media", "online_shopping", "banking",
		"streaming", "gaming", "work_tools", "cloud_storage",
	}

	ExplanationPreferences = []string{
		"simple_summaries", "balanced_overviews",
		"technical_details", "comprehensive_analysis",
	}

	PrivacyImportances = []string{
		"extremely_important", "very_important",
		"moderately_important", "not_very_important",
	}

	PaymentApproaches = []string{"very_cautious", "cautious", "moderate", "relaxed"}

	FinancialSituations = []string{"struggling", "stable", "comfortable", "wealthy"}

	ArbitrationComforts = []string{
		"very_uncomfortable", "uncomfortable", "neutral", "comfortable",
	}

	DependentStatuses = []string{"just_myself", "partner", "small_family", "large_family"}

	SpecialCircumstances = []string{
		"elderly_or_vulnerable", "non_native_speaker", "handles_sensitive_data",
		"regulated_industry", "small_business_owner", "public_figure",
	}

	InterruptionTimings = []string{
		"only_severe", "high_and_severe", "moderate_and_above", "any_concerning",
	}
)

// SectionNames lists the top-level questionnaire sections that may be
// replaced independently via a partial update.
var SectionNames = []string{
	"demographics", "digitalBehavior", "riskPreferences", "contextualFactors",
}

// maxAlertFrequencyLimit bounds alertFrequencyLimit. The frequency adjustment
// saturates at limit/20 = 1.2, so larger values only invite typos.
const maxAlertFrequencyLimit = 50

// Validate checks every enumerated field of q against its category set and
// returns one FieldError per failure. An empty result means q is valid.
func Validate(q schema.Questionnaire) []FieldError {
	var errs []FieldError

	if q.UserID == "" {
		errs = append(errs, FieldError{Field: "userId", Message: "is required"})
	}

	errs = appendEnumError(errs, "demographics.ageRange", q.Demographics.AgeRange, AgeRanges)
	errs = appendEnumError(errs, "demographics.occupation", q.Demographics.Occupation, Occupations)
	errs = appendEnumError(errs, "demographics.jurisdiction", q.Demographics.Jurisdiction, Jurisdictions)

	errs = appendEnumError(errs, "digitalBehavior.techSophistication",
		q.DigitalBehavior.TechSophistication, TechSophistications)
	errs = appendEnumError(errs, "digitalBehavior.explanationPreference",
		q.DigitalBehavior.ExplanationPreference, ExplanationPreferences)
	for i, p := range q.DigitalBehavior.UsagePatterns {
		errs = appendEnumError(errs,
			fmt.Sprintf("digitalBehavior.usagePatterns[%d]", i), p, UsagePatterns)
	}

	errs = appendEnumError(errs, "riskPreferences.privacy.overallImportance",
		q.RiskPreferences.Privacy.OverallImportance, PrivacyImportances)
	errs = appendEnumError(errs, "riskPreferences.financial.paymentApproach",
		q.RiskPreferences.Financial.PaymentApproach, PaymentApproaches)
	errs = appendEnumError(errs, "riskPreferences.financial.financialSituation",
		q.RiskPreferences.Financial.FinancialSituation, FinancialSituations)
	errs = appendEnumError(errs, "riskPreferences.legal.arbitrationComfort",
		q.RiskPreferences.Legal.ArbitrationComfort, ArbitrationComforts)

	errs = appendEnumError(errs, "contextualFactors.dependentStatus",
		q.ContextualFactors.DependentStatus, DependentStatuses)
	for i, c := range q.ContextualFactors.SpecialCircumstances {
		errs = appendEnumError(errs,
			fmt.Sprintf("contextualFactors.specialCircumstances[%d]", i), c, SpecialCircumstances)
	}
	errs = appendEnumError(errs, "contextualFactors.alertPreferences.interruptionTiming",
		q.ContextualFactors.AlertPreferences.InterruptionTiming, InterruptionTimings)

	limit := q.ContextualFactors.AlertPreferences.AlertFrequencyLimit
	if limit < 1 || limit > maxAlertFrequencyLimit {
		errs = append(errs, FieldError{
			Field:   "contextualFactors.alertPreferences.alertFrequencyLimit",
			Message: fmt.Sprintf("must be between 1 and %d, got %d", maxAlertFrequencyLimit, limit),
		})
	}

	return errs
}

// ValidSection reports whether name is a replaceable top-level section.
func ValidSection(name string) bool {
	for _, s := range SectionNames {
		if s == name {
			return true
		}
	}
	return false
}

// appendEnumError appends a FieldError when value is not in the allowed set.
func appendEnumError(errs []FieldError, field, value string, allowed []string) []FieldError {
	if value == "" {
		return append(errs, FieldError{Field: field, Message: "is required"})
	}
	for _, a := range allowed {
		if value == a {
			return errs
		}
	}
	return append(errs, FieldError{
		Field:   field,
		Message: fmt.Sprintf("value %q is not a recognized category", value),
	})
}
