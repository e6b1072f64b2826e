package prompt

import (
	"strings"
	"testing"

	"github.com/fineprint-dev/fineprint/internal/schema"
)

func profileFor(style schema.ExplanationStyle, overall float64) schema.ComputedProfile {
	return schema.ComputedProfile{
		RiskTolerance: schema.RiskTolerance{
			Privacy: 4, Financial: 5, Legal: 6, Overall: overall,
		},
		AlertThresholds: schema.AlertThresholds{
			Privacy: 6, Liability: 5, Termination: 7, Payment: 5.5, Overall: 6,
		},
		ExplanationStyle: style,
		ProfileTags:      []string{"age_26_40", "occupation_technology", "privacy_very_important"},
	}
}

func TestBuild_StyleFragmentSelection(t *testing.T) {
	cases := []struct {
		style schema.ExplanationStyle
		want  string
	}{
		{schema.StyleSimpleProtective, "plain, simple language"},
		{schema.StyleBalancedEducational, "teach as you go"},
		{schema.StyleTechnicalEfficient, "Be precise and concise"},
		{schema.StyleComprehensiveCautious, "Be exhaustive"},
	}
	for _, c := range cases {
		p := Build("doc", profileFor(c.style, 5), schema.Questionnaire{}, PassOptions{})
		if !strings.Contains(p.System, c.want) {
			t.Errorf("style %q: system prompt missing fragment %q", c.style, c.want)
		}
	}
}

func TestBuild_UnknownStyleFallsBack(t *testing.T) {
	p := Build("doc", profileFor("cryptic", 5), schema.Questionnaire{}, PassOptions{})
	if !strings.Contains(p.System, "teach as you go") {
		t.Error("unknown style should fall back to the balanced fragment")
	}
}

func TestBuild_OccupationFocus(t *testing.T) {
	q := schema.Questionnaire{}
	q.Demographics.Occupation = "legal"
	p := Build("doc", profileFor(schema.StyleBalancedEducational, 5), q, PassOptions{})
	if !strings.Contains(p.System, "arbitration, class-action waiver") {
		t.Error("legal occupation focus missing")
	}

	q.Demographics.Occupation = "astronaut"
	p = Build("doc", profileFor(schema.StyleBalancedEducational, 5), q, PassOptions{})
	if !strings.Contains(p.System, "balanced attention across privacy") {
		t.Error("unknown occupation should use the default focus")
	}
}

func TestToleranceFragment(t *testing.T) {
	cases := []struct {
		overall float64
		want    string
	}{
		{2.0, lowToleranceFragment},
		{3.0, lowToleranceFragment},
		{3.1, moderateToleranceFragment},
		{7.0, moderateToleranceFragment},
		{7.1, highToleranceFragment},
	}
	for _, c := range cases {
		if got := toleranceFragment(c.overall); got != c.want {
			t.Errorf("toleranceFragment(%v) picked the wrong band", c.overall)
		}
	}
}

func TestDemographicOverride_Priority(t *testing.T) {
	base := func() schema.Questionnaire {
		var q schema.Questionnaire
		q.Demographics.AgeRange = "26_40"
		return q
	}

	cases := []struct {
		name string
		mut  func(*schema.Questionnaire)
		want string
	}{
		{"none", func(q *schema.Questionnaire) {}, ""},
		{"minor", func(q *schema.Questionnaire) { q.Demographics.AgeRange = "under_18" }, minorOverride},
		{"senior", func(q *schema.Questionnaire) { q.Demographics.AgeRange = "over_55" }, seniorOverride},
		{"non_native", func(q *schema.Questionnaire) {
			q.ContextualFactors.SpecialCircumstances = []string{"non_native_speaker"}
		}, nonNativeOverride},
		{"vulnerable", func(q *schema.Questionnaire) {
			q.ContextualFactors.SpecialCircumstances = []string{"elderly_or_vulnerable"}
		}, vulnerableOverride},
		// Age beats circumstance; non-native beats vulnerable.
		{"minor_beats_vulnerable", func(q *schema.Questionnaire) {
			q.Demographics.AgeRange = "under_18"
			q.ContextualFactors.SpecialCircumstances = []string{"elderly_or_vulnerable"}
		}, minorOverride},
		{"non_native_beats_vulnerable", func(q *schema.Questionnaire) {
			q.ContextualFactors.SpecialCircumstances = []string{"elderly_or_vulnerable", "non_native_speaker"}
		}, nonNativeOverride},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q := base()
			c.mut(&q)
			if got := demographicOverride(q); got != c.want {
				t.Errorf("demographicOverride picked %.40q, want %.40q", got, c.want)
			}
		})
	}
}

func TestBuild_AtMostOneOverride(t *testing.T) {
	var q schema.Questionnaire
	q.Demographics.AgeRange = "over_55"
	q.ContextualFactors.SpecialCircumstances = []string{"non_native_speaker", "elderly_or_vulnerable"}
	p := Build("doc", profileFor(schema.StyleSimpleProtective, 2), q, PassOptions{})
	if !strings.Contains(p.System, seniorOverride) {
		t.Error("senior override missing")
	}
	if strings.Contains(p.System, nonNativeOverride) || strings.Contains(p.System, vulnerableOverride) {
		t.Error("more than one demographic override applied")
	}
}

func TestBuild_UserPromptContents(t *testing.T) {
	computed := profileFor(schema.StyleBalancedEducational, 5)
	doc := "These Terms of Service govern your use of the service."
	p := Build(doc, computed, schema.Questionnaire{}, PassOptions{})

	for _, want := range []string{
		"age_26_40, occupation_technology, privacy_very_important",
		"privacy=6.0 liability=5.0 termination=7.0 payment=5.5 overall=6.0",
		"privacy=4.0 financial=5.0 legal=6.0 overall=5.0",
		doc,
		"Produce the JSON analysis now.",
	} {
		if !strings.Contains(p.User, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
	if strings.Contains(p.User, "ANALYSIS PASS") {
		t.Error("single-pass prompt should not carry pass context")
	}
}

func TestBuild_PassContext(t *testing.T) {
	computed := profileFor(schema.StyleBalancedEducational, 5)
	opts := PassOptions{
		PassNumber:     3,
		TotalPasses:    5,
		Focus:          "termination and account suspension clauses",
		PriorSummaries: []string{"First pass summary.", "Second pass summary."},
	}
	p := Build("doc", computed, schema.Questionnaire{}, opts)

	for _, want := range []string{
		"ANALYSIS PASS 3 of 5.",
		"FOCUS FOR THIS PASS: termination and account suspension clauses",
		"pass 1: First pass summary.",
		"pass 2: Second pass summary.",
		"refine rather than repeat",
	} {
		if !strings.Contains(p.User, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestBuild_SystemPromptEndsWithSchema(t *testing.T) {
	p := Build("doc", profileFor(schema.StyleBalancedEducational, 5), schema.Questionnaire{}, PassOptions{})
	if !strings.Contains(p.System, `"risk_score"`) || !strings.Contains(p.System, `"categories"`) {
		t.Error("output schema missing from system prompt")
	}
}
