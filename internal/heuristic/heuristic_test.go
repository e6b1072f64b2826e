package heuristic

import (
	"strings"
	"testing"

	"github.com/fineprint-dev/fineprint/internal/schema"
)

func TestAnalyze_CleanDocument(t *testing.T) {
	got := Analyze("We value you as a customer and hope you enjoy the service.")

	if !got.Fallback {
		t.Error("heuristic result not flagged as fallback")
	}
	if got.Confidence != fallbackConf {
		t.Errorf("Confidence = %v, want %v", got.Confidence, fallbackConf)
	}
	if got.RiskScore != baseScore {
		t.Errorf("RiskScore = %v, want base %v with no matches", got.RiskScore, baseScore)
	}
	if got.RiskLevel != schema.RiskLow {
		t.Errorf("RiskLevel = %q, want low", got.RiskLevel)
	}
	for _, name := range schema.CategoryNames {
		cat, ok := got.Categories[name]
		if !ok {
			t.Fatalf("category %q missing", name)
		}
		if cat.Score != baseScore {
			t.Errorf("category %q score = %v, want base", name, cat.Score)
		}
		if len(cat.Concerns) != 1 {
			t.Errorf("category %q concerns = %v, want single no-match note", name, cat.Concerns)
		}
	}
	if len(got.KeyPoints) != 1 || !strings.Contains(got.KeyPoints[0], "no known risk phrases") {
		t.Errorf("KeyPoints = %v, want single no-match note", got.KeyPoints)
	}
}

func TestAnalyze_MatchesRaiseScores(t *testing.T) {
	text := `We may share your information with third parties and advertising partners.
All services are provided AS IS with no warranty. You agree to binding arbitration.
Subscriptions are subject to automatic renewal and all fees are non-refundable.`
	got := Analyze(text)

	privacy := got.Categories[schema.CategoryPrivacy]
	if privacy.Score <= baseScore {
		t.Errorf("privacy score = %v, want above base", privacy.Score)
	}
	liability := got.Categories[schema.CategoryLiability]
	if liability.Score <= baseScore {
		t.Errorf("liability score = %v, want above base", liability.Score)
	}
	payment := got.Categories[schema.CategoryPayment]
	if payment.Score <= baseScore {
		t.Errorf("payment score = %v, want above base", payment.Score)
	}
	if got.RiskScore <= baseScore {
		t.Errorf("RiskScore = %v, want above base", got.RiskScore)
	}
	if len(got.KeyPoints) == 0 || len(got.KeyPoints) > 5 {
		t.Errorf("KeyPoints count = %d, want 1..5", len(got.KeyPoints))
	}
	if len(privacy.Concerns) > 3 {
		t.Errorf("privacy concerns = %d, want capped at 3", len(privacy.Concerns))
	}
}

func TestAnalyze_ScoreClamp(t *testing.T) {
	// Every liability phrase present: base 3.0 + 10×0.8 = 11, clamped to 10.
	text := strings.Join(categoryKeywords[schema.CategoryLiability], ". ")
	got := Analyze(text)
	if got.Categories[schema.CategoryLiability].Score != 10 {
		t.Errorf("liability score = %v, want clamped 10", got.Categories[schema.CategoryLiability].Score)
	}
}

func TestAnalyze_CaseInsensitive(t *testing.T) {
	upper := Analyze("AUTOMATIC RENEWAL APPLIES TO ALL PLANS.")
	lower := Analyze("automatic renewal applies to all plans.")
	if upper.Categories[schema.CategoryPayment].Score != lower.Categories[schema.CategoryPayment].Score {
		t.Error("keyword matching is case sensitive")
	}
}

func TestAnalyze_SummaryNamesFallback(t *testing.T) {
	got := Analyze("plain text")
	if !strings.Contains(got.Summary, "keyword scan") {
		t.Errorf("Summary = %q, want fallback wording", got.Summary)
	}
	if !strings.Contains(got.Summary, "3.0/10") {
		t.Errorf("Summary = %q, want embedded score", got.Summary)
	}
}
