package personalize

// Static weight tables mapping questionnaire categories to numeric factors.
// Constructed once at process start and never mutated. Unmapped values fall
// back to the neutral defaults below rather than failing.

const (
	// neutralBase is the tolerance used for any unmapped preference answer.
	neutralBase = 6.0
	// neutralFactor is the multiplier used for any unmapped adjustment answer.
	neutralFactor = 1.0

	// terminationBase is the fixed base threshold for the termination
	// category, which has no direct tolerance input.
	terminationBase = 7.0

	// circumstanceFloor is the lowest combined special-circumstances
	// multiplier; stacking penalties never drops below this.
	circumstanceFloor = 0.5
)

// Base tolerance on a 0-10 scale per explicit preference answer.
// Lower tolerance means more protection wanted.
var (
	privacyImportanceBase = map[string]float64{
		"extremely_important":  2.0,
		"very_important":       4.0,
		"moderately_important": 6.0,
		"not_very_important":   8.0,
	}

	paymentApproachBase = map[string]float64{
		"very_cautious": 2.0,
		"cautious":      4.0,
		"moderate":      6.0,
		"relaxed":       8.0,
	}

	arbitrationComfortBase = map[string]float64{
		"very_uncomfortable": 2.0,
		"uncomfortable":      4.0,
		"neutral":            6.0,
		"comfortable":        8.0,
	}
)

// Adjustment factors. Values below 1.0 reduce tolerance (more caution).
var (
	// ageCautiousness applies to all three tolerance categories.
	ageCautiousness = map[string]float64{
		"under_18": 0.7,
		"18_25":    0.9,
		"26_40":    1.0,
		"41_55":    0.95,
		"over_55":  0.8,
	}

	// occupationRiskAwareness applies to the legal category only.
	// Professions with contract exposure read terms more critically.
	occupationRiskAwareness = map[string]float64{
		"technology": 0.9,
		"healthcare": 0.9,
		"legal":      0.8,
		"finance":    0.85,
		"education":  0.95,
		"student":    1.0,
		"retired":    0.9,
		"other":      1.0,
	}

	// financialSituationTolerance applies to the financial category only.
	financialSituationTolerance = map[string]float64{
		"struggling":  0.7,
		"stable":      1.0,
		"comfortable": 1.1,
		"wealthy":     1.2,
	}

	// dependentAdjustment applies to all three tolerance categories.
	// More dependents, more caution.
	dependentAdjustment = map[string]float64{
		"just_myself":  1.0,
		"partner":      0.9,
		"small_family": 0.75,
		"large_family": 0.6,
	}

	// circumstancePenalty multiplies once per matched special circumstance.
	// The combined product is floor-clamped at circumstanceFloor.
	circumstancePenalty = map[string]float64{
		"elderly_or_vulnerable":  0.7,
		"non_native_speaker":     0.85,
		"handles_sensitive_data": 0.8,
		"regulated_industry":     0.85,
		"small_business_owner":   0.95,
		"public_figure":          0.9,
	}
)

// Alert threshold adjustments.
var (
	// interruptionTimingAdjustment scales every threshold. only_severe users
	// want thresholds raised (fewer alerts); any_concerning users want them
	// lowered.
	interruptionTimingAdjustment = map[string]float64{
		"only_severe":        1.5,
		"high_and_severe":    1.2,
		"moderate_and_above": 1.0,
		"any_concerning":     0.8,
	}
)

// stylePreference maps the stated explanation preference to a style. Safety
// overrides in computeExplanationStyle take precedence over this table.
var stylePreference = map[string]string{
	"simple_summaries":       "simple_protective",
	"balanced_overviews":     "balanced_educational",
	"technical_details":      "technical_efficient",
	"comprehensive_analysis": "comprehensive_cautious",
}

// lookupBase returns the base tolerance for value, or the neutral default.
func lookupBase(table map[string]float64, value string) float64 {
	if v, ok := table[value]; ok {
		return v
	}
	return neutralBase
}

// lookupFactor returns the adjustment factor for value, or the neutral default.
func lookupFactor(table map[string]float64, value string) float64 {
	if v, ok := table[value]; ok {
		return v
	}
	return neutralFactor
}
