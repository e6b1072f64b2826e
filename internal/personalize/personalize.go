// Package personalize implements the profile computer: the deterministic
// transformation of a validated questionnaire into risk-tolerance vectors,
// alert thresholds, an explanation-style classification, and the ordered
// profile tag list used for prompt templating.
//
// Compute is pure. It performs no I/O and never fails: any categorical value
// outside the known sets uses a neutral default weight. Rejecting unknown
// values is the questionnaire validator's job; if an unmapped value reaches
// this package in a validated call path, that is a validation-layer bug.
package personalize

import (
	"fmt"
	"math"

	"github.com/fineprint-dev/fineprint/internal/schema"
)

// Compute derives the personalization profile from a questionnaire.
func Compute(q schema.Questionnaire) schema.ComputedProfile {
	tolerance := computeRiskTolerance(q)
	return schema.ComputedProfile{
		RiskTolerance:    tolerance,
		AlertThresholds:  computeAlertThresholds(q, tolerance),
		ExplanationStyle: computeExplanationStyle(q),
		ProfileTags:      buildProfileTags(q),
	}
}

// computeRiskTolerance maps the three explicit preference answers to base
// tolerances, applies the shared and category-specific adjustment factors,
// and clamps each category to [0,10]. Overall is the mean of the three
// rounded category values, itself rounded to 1 decimal.
func computeRiskTolerance(q schema.Questionnaire) schema.RiskTolerance {
	shared := lookupFactor(ageCautiousness, q.Demographics.AgeRange) *
		lookupFactor(dependentAdjustment, q.ContextualFactors.DependentStatus) *
		circumstanceMultiplier(q.ContextualFactors.SpecialCircumstances)

	privacy := lookupBase(privacyImportanceBase, q.RiskPreferences.Privacy.OverallImportance) * shared

	financial := lookupBase(paymentApproachBase, q.RiskPreferences.Financial.PaymentApproach) *
		lookupFactor(financialSituationTolerance, q.RiskPreferences.Financial.FinancialSituation) *
		shared

	legal := lookupBase(arbitrationComfortBase, q.RiskPreferences.Legal.ArbitrationComfort) *
		lookupFactor(occupationRiskAwareness, q.Demographics.Occupation) *
		shared

	privacy = round1(clamp(privacy, 0, 10))
	financial = round1(clamp(financial, 0, 10))
	legal = round1(clamp(legal, 0, 10))

	return schema.RiskTolerance{
		Privacy:   privacy,
		Financial: financial,
		Legal:     legal,
		Overall:   round1((privacy + financial + legal) / 3),
	}
}

// computeAlertThresholds derives thresholds from the risk tolerances.
// Base threshold per category is 10 minus the corresponding tolerance;
// termination uses a fixed base. Each threshold is scaled by the
// interruption-timing preference and the frequency-limit adjustment, then
// clamped to [1,10].
func computeAlertThresholds(q schema.Questionnaire, tol schema.RiskTolerance) schema.AlertThresholds {
	timing := lookupFactor(interruptionTimingAdjustment,
		q.ContextualFactors.AlertPreferences.InterruptionTiming)
	frequency := frequencyAdjustment(q.ContextualFactors.AlertPreferences.AlertFrequencyLimit)

	adjust := func(base float64) float64 {
		return round1(clamp(base*timing*frequency, 1, 10))
	}

	return schema.AlertThresholds{
		Privacy:     adjust(10 - tol.Privacy),
		Liability:   adjust(10 - tol.Legal),
		Termination: adjust(terminationBase),
		Payment:     adjust(10 - tol.Financial),
		Overall:     adjust(10 - tol.Overall),
	}
}

// frequencyAdjustment converts the per-session alert budget into a threshold
// multiplier. Users willing to see many alerts get lower thresholds; the
// adjustment saturates at 1.2.
func frequencyAdjustment(limit int) float64 {
	if limit <= 0 {
		return neutralFactor
	}
	return math.Min(1.2, float64(limit)/20)
}

// circumstanceMultiplier multiplies the penalty of each matched special
// circumstance, floor-clamped so stacked penalties cannot collapse tolerance
// entirely.
func circumstanceMultiplier(circumstances []string) float64 {
	m := 1.0
	for _, c := range circumstances {
		if p, ok := circumstancePenalty[c]; ok {
			m *= p
		}
	}
	if m < circumstanceFloor {
		return circumstanceFloor
	}
	return m
}

// computeExplanationStyle classifies the explanation style.
//
// Precedence is a policy decision and must not be reordered: protective
// overrides from special circumstances always win over stated preference.
//  1. Vulnerability or language circumstance → simple_protective.
//  2. Sensitive-data or regulated-industry circumstance → technical_efficient.
//  3. Stated preference via the style table.
//  4. Default balanced_educational.
func computeExplanationStyle(q schema.Questionnaire) schema.ExplanationStyle {
	if hasCircumstance(q, "elderly_or_vulnerable") || hasCircumstance(q, "non_native_speaker") {
		return schema.StyleSimpleProtective
	}
	if hasCircumstance(q, "handles_sensitive_data") || hasCircumstance(q, "regulated_industry") {
		return schema.StyleTechnicalEfficient
	}
	if s, ok := stylePreference[q.DigitalBehavior.ExplanationPreference]; ok {
		return schema.ExplanationStyle(s)
	}
	return schema.StyleBalancedEducational
}

// buildProfileTags builds the flat prompt-templating token list. Each
// categorical value is prefixed with its field name; list-valued fields
// contribute one tag per entry. Order follows field declaration order and is
// stable so prompts are reproducible. No deduplication.
func buildProfileTags(q schema.Questionnaire) []string {
	tags := []string{
		"age_" + q.Demographics.AgeRange,
		"occupation_" + q.Demographics.Occupation,
		"jurisdiction_" + q.Demographics.Jurisdiction,
		"tech_" + q.DigitalBehavior.TechSophistication,
	}
	for _, u := range q.DigitalBehavior.UsagePatterns {
		tags = append(tags, "usage_"+u)
	}
	tags = append(tags,
		"explanation_"+q.DigitalBehavior.ExplanationPreference,
		"privacy_"+q.RiskPreferences.Privacy.OverallImportance,
		"payment_"+q.RiskPreferences.Financial.PaymentApproach,
		"financial_"+q.RiskPreferences.Financial.FinancialSituation,
		"arbitration_"+q.RiskPreferences.Legal.ArbitrationComfort,
		"dependents_"+q.ContextualFactors.DependentStatus,
	)
	for _, c := range q.ContextualFactors.SpecialCircumstances {
		tags = append(tags, "special_"+c)
	}
	tags = append(tags,
		"timing_"+q.ContextualFactors.AlertPreferences.InterruptionTiming,
		fmt.Sprintf("alert_limit_%d", q.ContextualFactors.AlertPreferences.AlertFrequencyLimit),
	)
	return tags
}

// hasCircumstance reports whether the questionnaire lists circumstance.
func hasCircumstance(q schema.Questionnaire, circumstance string) bool {
	for _, c := range q.ContextualFactors.SpecialCircumstances {
		if c == circumstance {
			return true
		}
	}
	return false
}

// round1 rounds to 1 decimal place, half away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
