package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fineprint-dev/fineprint/internal/schema"
)

func sampleResult() *schema.MultiPassResult {
	r := &schema.MultiPassResult{
		PassesCompleted: 3,
		ComprehensiveInsights: schema.Insights{
			RegulatoryFlags: []string{"GDPR transfer clause"},
			Recommendations: []string{"Opt out of arbitration within 30 days"},
		},
		DocumentMetadata: schema.DocumentMetadata{
			DocumentType: "terms_of_service",
			Jurisdiction: "us",
			Confidence:   0.6,
		},
	}
	r.RiskScore = 6.4
	r.RiskLevel = schema.RiskMedium
	r.Summary = "Medium-risk terms with an aggressive renewal clause."
	r.KeyPoints = []string{"Auto-renewal with a 60-day cancellation window"}
	r.Categories = map[schema.CategoryName]schema.CategoryResult{
		schema.CategoryPrivacy: {Score: 7.5, Concerns: []string{"broad sharing"}},
		schema.CategoryPayment: {Score: 4.0, Concerns: []string{"auto-renewal"}},
	}
	r.Confidence = 0.6
	return r
}

func sampleThresholds() schema.AlertThresholds {
	return schema.AlertThresholds{Privacy: 6, Liability: 6, Termination: 6, Payment: 6, Overall: 6}
}

func TestRenderJSON(t *testing.T) {
	b, err := RenderJSON(sampleResult())
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, err := RenderJSON(nil); err == nil {
		t.Error("RenderJSON(nil) should error")
	}
}

func TestRenderMarkdown_ThresholdMarking(t *testing.T) {
	out := RenderMarkdown(sampleResult(), sampleThresholds())

	lines := strings.Split(out, "\n")
	var privacyLine, paymentLine string
	for _, l := range lines {
		if strings.HasPrefix(l, "| privacy ") {
			privacyLine = l
		}
		if strings.HasPrefix(l, "| payment ") {
			paymentLine = l
		}
	}
	if privacyLine == "" || paymentLine == "" {
		t.Fatalf("category rows missing:\n%s", out)
	}
	if !strings.Contains(privacyLine, "over your threshold") {
		t.Errorf("privacy 7.5 ≥ threshold 6 not marked: %q", privacyLine)
	}
	if strings.Contains(paymentLine, "over your threshold") {
		t.Errorf("payment 4.0 < threshold 6 wrongly marked: %q", paymentLine)
	}
}

func TestRenderMarkdown_Sections(t *testing.T) {
	out := RenderMarkdown(sampleResult(), sampleThresholds())
	for _, want := range []string{
		"**Risk:** 6.4/10 (medium)",
		"**Passes:** 3",
		"Medium-risk terms with an aggressive renewal clause.",
		"### Key Points",
		"### Regulatory Flags",
		"- GDPR transfer clause",
		"### Recommendations",
		"**Type:** terms_of_service",
		"**Jurisdiction:** us",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(out, "fallback") {
		t.Error("non-fallback result carries the fallback banner")
	}
}

func TestRenderMarkdown_FallbackBanner(t *testing.T) {
	r := sampleResult()
	r.Fallback = true
	out := RenderMarkdown(r, sampleThresholds())
	if !strings.Contains(out, "Keyword-scan fallback") {
		t.Error("fallback banner missing")
	}
}

func TestRenderMarkdown_Nil(t *testing.T) {
	if out := RenderMarkdown(nil, sampleThresholds()); out != "" {
		t.Errorf("RenderMarkdown(nil) = %q, want empty", out)
	}
}

func TestRenderMarkdown_EscapesTableCells(t *testing.T) {
	r := sampleResult()
	r.Categories[schema.CategoryPrivacy] = schema.CategoryResult{
		Score:    7.5,
		Concerns: []string{"pipes | in\nconcern text"},
	}
	out := RenderMarkdown(r, sampleThresholds())
	if !strings.Contains(out, `pipes \| in concern text`) {
		t.Error("table cell not escaped")
	}
}

func TestRenderProfileMarkdown(t *testing.T) {
	computed := schema.ComputedProfile{
		RiskTolerance:    schema.RiskTolerance{Privacy: 2.5, Financial: 5, Legal: 6, Overall: 4.5},
		AlertThresholds:  schema.AlertThresholds{Privacy: 8, Liability: 5, Termination: 6, Payment: 5, Overall: 6},
		ExplanationStyle: schema.StyleSimpleProtective,
		ProfileTags:      []string{"age_over_55", "privacy_extremely_important"},
	}
	out := RenderProfileMarkdown(computed)
	for _, want := range []string{
		"**Explanation style:** simple_protective",
		"| privacy | 2.5 |",
		"| privacy | 8.0 |",
		"age_over_55, privacy_extremely_important",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("profile markdown missing %q", want)
		}
	}
}
