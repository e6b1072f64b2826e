package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fineprint-dev/fineprint/internal/llm"
	"github.com/fineprint-dev/fineprint/internal/schema"
)

// mockProvider serves canned responses in order and records the prompts it
// was called with. An entry of "ERROR" fails that call.
type mockProvider struct {
	responses []string
	calls     int
	systems   []string
	users     []string
}

func (m *mockProvider) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.systems = append(m.systems, system)
	m.users = append(m.users, user)
	idx := m.calls
	m.calls++
	if idx >= len(m.responses) {
		return "", errors.New("mock: out of responses")
	}
	if m.responses[idx] == "ERROR" {
		return "", errors.New("mock: simulated provider failure")
	}
	return m.responses[idx], nil
}

// installMock swaps llm.NewProvider for the duration of the test.
func installMock(t *testing.T, m *mockProvider) {
	t.Helper()
	orig := llm.NewProvider
	llm.NewProvider = func(providerName, model string) (llm.Provider, error) {
		return m, nil
	}
	t.Cleanup(func() { llm.NewProvider = orig })
}

func passResponse(score float64, summary string) string {
	return fmt.Sprintf(`{
		"risk_score": %v,
		"summary": %q,
		"key_points": ["automatic renewal clause present"],
		"categories": {
			"privacy":     {"score": %v, "concerns": ["broad data sharing"]},
			"liability":   {"score": 4, "concerns": []},
			"termination": {"score": 5, "concerns": []},
			"payment":     {"score": 6, "concerns": ["auto-renewal"]}
		},
		"confidence": 0.8
	}`, score, summary, score)
}

func testProfile() (schema.Questionnaire, schema.ComputedProfile) {
	var q schema.Questionnaire
	q.UserID = "user-1"
	q.Demographics.Occupation = "technology"
	computed := schema.ComputedProfile{
		RiskTolerance:    schema.RiskTolerance{Privacy: 5, Financial: 5, Legal: 5, Overall: 5},
		AlertThresholds:  schema.AlertThresholds{Privacy: 5, Liability: 5, Termination: 5, Payment: 5, Overall: 5},
		ExplanationStyle: schema.StyleBalancedEducational,
		ProfileTags:      []string{"occupation_technology"},
	}
	return q, computed
}

const testDocument = "These Terms of Service include an automatic renewal clause and broad data sharing provisions."

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestAnalyzeDocument_MultiPass(t *testing.T) {
	mock := &mockProvider{responses: []string{
		passResponse(4, "First pass: structural overview."),
		passResponse(6, "Second pass: privacy findings."),
		passResponse(8, "Third pass: liability findings."),
	}}
	installMock(t, mock)
	a := newTestAnalyzer(t)
	q, computed := testProfile()

	got, err := a.AnalyzeDocument(context.Background(), testDocument, q, computed, Options{Passes: 3})
	if err != nil {
		t.Fatalf("AnalyzeDocument: %v", err)
	}
	if mock.calls != 3 {
		t.Errorf("provider called %d times, want 3", mock.calls)
	}
	if got.PassesCompleted != 3 {
		t.Errorf("PassesCompleted = %d, want 3", got.PassesCompleted)
	}
	if got.Fallback {
		t.Error("successful run flagged as fallback")
	}
	if got.Summary != "Third pass: liability findings." {
		t.Errorf("Summary = %q, want final pass summary", got.Summary)
	}

	// Later passes must see earlier summaries.
	if !strings.Contains(mock.users[2], "First pass: structural overview.") {
		t.Error("third pass prompt missing first pass summary")
	}
	if strings.Contains(mock.users[0], "FINDINGS FROM EARLIER PASSES") {
		t.Error("first pass prompt carries prior findings")
	}
	// Pass context advances.
	if !strings.Contains(mock.users[0], "ANALYSIS PASS 1 of 3") ||
		!strings.Contains(mock.users[1], "ANALYSIS PASS 2 of 3") {
		t.Error("pass numbering missing from prompts")
	}
}

func TestAnalyzeDocument_PartialRunSynthesized(t *testing.T) {
	mock := &mockProvider{responses: []string{
		passResponse(4, "Pass one."),
		passResponse(5, "Pass two."),
		passResponse(6, "Pass three."),
		"ERROR",
	}}
	installMock(t, mock)
	a := newTestAnalyzer(t)
	q, computed := testProfile()

	got, err := a.AnalyzeDocument(context.Background(), testDocument, q, computed, Options{Passes: 5})
	if err != nil {
		t.Fatalf("AnalyzeDocument: %v", err)
	}
	if got.PassesCompleted != 3 {
		t.Errorf("PassesCompleted = %d, want 3 after pass-4 failure", got.PassesCompleted)
	}
	if got.Fallback {
		t.Error("partial LLM run flagged as keyword fallback")
	}
	// The failed pass truncates the run; pass 5 is never attempted.
	if mock.calls != 4 {
		t.Errorf("provider called %d times, want 4", mock.calls)
	}
}

func TestAnalyzeDocument_EarlyFailureFallsBack(t *testing.T) {
	mock := &mockProvider{responses: []string{
		passResponse(4, "Pass one."),
		"ERROR",
	}}
	installMock(t, mock)
	a := newTestAnalyzer(t)
	q, computed := testProfile()

	got, err := a.AnalyzeDocument(context.Background(), testDocument, q, computed, Options{Passes: 3})
	if err != nil {
		t.Fatalf("AnalyzeDocument should degrade, not fail: %v", err)
	}
	if !got.Fallback {
		t.Error("degraded result not flagged as fallback")
	}
	if got.PassesCompleted != 1 {
		t.Errorf("fallback PassesCompleted = %d, want 1", got.PassesCompleted)
	}
	if got.Confidence != 0.2 {
		t.Errorf("fallback confidence = %v, want 0.2", got.Confidence)
	}
}

func TestAnalyzeDocument_FallbackNotCached(t *testing.T) {
	mock := &mockProvider{responses: []string{
		"ERROR",
		passResponse(5, "Recovered pass."),
	}}
	installMock(t, mock)
	a := newTestAnalyzer(t)
	q, computed := testProfile()
	opts := Options{Passes: 1}

	first, err := a.AnalyzeDocument(context.Background(), testDocument, q, computed, opts)
	if err != nil {
		t.Fatalf("first AnalyzeDocument: %v", err)
	}
	if !first.Fallback {
		t.Fatal("first result should be the keyword fallback")
	}

	second, err := a.AnalyzeDocument(context.Background(), testDocument, q, computed, opts)
	if err != nil {
		t.Fatalf("second AnalyzeDocument: %v", err)
	}
	if second.Fallback {
		t.Error("second request served the uncached fallback instead of retrying the LLM")
	}
	if mock.calls != 2 {
		t.Errorf("provider called %d times, want 2 (fallback must not be cached)", mock.calls)
	}
}

func TestAnalyzeDocument_CacheHit(t *testing.T) {
	mock := &mockProvider{responses: []string{passResponse(5, "Only pass of the run.")}}
	installMock(t, mock)
	a := newTestAnalyzer(t)
	q, computed := testProfile()
	opts := Options{Passes: 1}

	first, err := a.AnalyzeDocument(context.Background(), testDocument, q, computed, opts)
	if err != nil {
		t.Fatalf("first AnalyzeDocument: %v", err)
	}
	second, err := a.AnalyzeDocument(context.Background(), testDocument, q, computed, opts)
	if err != nil {
		t.Fatalf("second AnalyzeDocument: %v", err)
	}
	if mock.calls != 1 {
		t.Errorf("provider called %d times, want 1 (second request should hit cache)", mock.calls)
	}
	if second.RiskScore != first.RiskScore || second.Summary != first.Summary {
		t.Error("cached result differs from original")
	}
}

func TestAnalyzeDocument_CacheKeyedByProfile(t *testing.T) {
	mock := &mockProvider{responses: []string{
		passResponse(5, "Run for the first profile."),
		passResponse(5, "Run for the second profile."),
	}}
	installMock(t, mock)
	a := newTestAnalyzer(t)
	q, computed := testProfile()
	opts := Options{Passes: 1}

	if _, err := a.AnalyzeDocument(context.Background(), testDocument, q, computed, opts); err != nil {
		t.Fatalf("first AnalyzeDocument: %v", err)
	}
	other := computed
	other.ProfileTags = []string{"occupation_legal"}
	if _, err := a.AnalyzeDocument(context.Background(), testDocument, q, other, opts); err != nil {
		t.Fatalf("second AnalyzeDocument: %v", err)
	}
	if mock.calls != 2 {
		t.Errorf("provider called %d times, want 2 (different profiles must not share cache entries)", mock.calls)
	}
}

func TestAnalyzeDocument_ProviderConfigErrorSurfaces(t *testing.T) {
	orig := llm.NewProvider
	llm.NewProvider = func(providerName, model string) (llm.Provider, error) {
		return nil, errors.New("llm: unknown provider \"bogus\"")
	}
	t.Cleanup(func() { llm.NewProvider = orig })
	a := newTestAnalyzer(t)
	q, computed := testProfile()

	_, err := a.AnalyzeDocument(context.Background(), testDocument, q, computed, Options{Provider: "bogus"})
	if err == nil {
		t.Fatal("configuration error was swallowed by the fallback")
	}
	if !strings.Contains(err.Error(), "create provider") {
		t.Errorf("error = %v, want provider construction wrap", err)
	}
}

func TestWithDefaults(t *testing.T) {
	got := withDefaults(Options{})
	if got.Passes != 1 {
		t.Errorf("default Passes = %d, want 1", got.Passes)
	}
	if got.Timeout != defaultDocumentTimeout {
		t.Errorf("default Timeout = %v, want %v", got.Timeout, defaultDocumentTimeout)
	}
	if got.MaxTokens != defaultMaxTokens || got.Temperature != defaultTemperature {
		t.Errorf("defaults = %d tokens / %v temp", got.MaxTokens, got.Temperature)
	}

	clause := withDefaults(Options{Clause: true})
	if clause.Timeout != defaultClauseTimeout {
		t.Errorf("clause Timeout = %v, want %v", clause.Timeout, defaultClauseTimeout)
	}

	capped := withDefaults(Options{Passes: 9})
	if capped.Passes != maxPasses {
		t.Errorf("Passes = %d, want capped at %d", capped.Passes, maxPasses)
	}
}
