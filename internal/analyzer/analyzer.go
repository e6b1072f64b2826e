// Package analyzer orchestrates a full analysis request: cache lookup by
// content fingerprint, sequential LLM passes with accumulated context,
// normalization and synthesis of the results, and degradation to the keyword
// heuristic when the LLM is unavailable. Availability wins over completeness:
// an LLM hiccup downgrades the result, it never hard-fails the request.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fineprint-dev/fineprint/internal/cache"
	"github.com/fineprint-dev/fineprint/internal/document"
	"github.com/fineprint-dev/fineprint/internal/heuristic"
	"github.com/fineprint-dev/fineprint/internal/llm"
	"github.com/fineprint-dev/fineprint/internal/normalize"
	"github.com/fineprint-dev/fineprint/internal/prompt"
	"github.com/fineprint-dev/fineprint/internal/schema"
	"github.com/fineprint-dev/fineprint/internal/synthesis"
)

// ErrMultiPassIncomplete is returned by the raw pass runner when a pass fails
// before enough passes completed to synthesize safely.
var ErrMultiPassIncomplete = errors.New("analyzer: fewer than the minimum passes completed")

const (
	// maxPasses caps a multi-pass run; later passes add context but with
	// diminishing returns.
	maxPasses = 5
	// minPassesForPartial is how many passes must complete before a failed
	// pass can be tolerated by synthesizing what exists.
	minPassesForPartial = 3

	defaultDocumentTimeout = 30 * time.Second
	defaultClauseTimeout   = 10 * time.Second
	defaultMaxTokens       = 4096
	defaultTemperature     = 0.2
)

// passFocuses narrows each pass's analytical attention, in execution order.
var passFocuses = []string{
	"Overall document structure and the most significant risks of any kind.",
	"Privacy and data handling: collection, sharing, retention, tracking, and user content rights.",
	"Liability and termination: warranty disclaimers, indemnification, arbitration, account suspension.",
	"Payment and renewal: fees, automatic renewal, refunds, price-change rights, cancellation mechanics.",
	"Jurisdiction and regulatory exposure: governing law, venue, compliance flags, final recommendations.",
}

// Options configures an analysis run.
type Options struct {
	Provider string
	Model    string
	// Passes is the planned pass count; values outside [1, maxPasses] clamp.
	Passes int
	// Clause marks a single-clause analysis, which uses the shorter timeout.
	Clause      bool
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	CacheTTL    time.Duration
	Debug       bool
}

// fingerprintOptions is the option subset that affects analysis output.
// Personalization steers the prompt, so the computed profile participates in
// the fingerprint; two users with different profiles never share a result.
type fingerprintOptions struct {
	Provider string                  `json:"provider"`
	Model    string                  `json:"model"`
	Passes   int                     `json:"passes"`
	Clause   bool                    `json:"clause"`
	Style    schema.ExplanationStyle `json:"style"`
	Tags     []string                `json:"tags"`
}

// Analyzer runs analysis requests against a shared result cache.
type Analyzer struct {
	results *cache.Cache[schema.MultiPassResult]
}

// New creates an Analyzer with a result cache of the given size.
func New(cacheSize int) (*Analyzer, error) {
	results, err := cache.New[schema.MultiPassResult](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("analyzer: %w", err)
	}
	return &Analyzer{results: results}, nil
}

// AnalyzeDocument analyzes text for the profiled user. Results are cached by
// content fingerprint; LLM failures degrade to the keyword heuristic rather
// than propagating. Single-pass runs return a MultiPassResult with
// PassesCompleted of 1 so callers handle one shape.
func (a *Analyzer) AnalyzeDocument(
	ctx context.Context,
	text string,
	q schema.Questionnaire,
	computed schema.ComputedProfile,
	opts Options,
) (*schema.MultiPassResult, error) {
	opts = withDefaults(opts)
	text = document.NormalizeWhitespace(text)

	fp := cache.Fingerprint(text, fingerprintOptions{
		Provider: opts.Provider,
		Model:    opts.Model,
		Passes:   opts.Passes,
		Clause:   opts.Clause,
		Style:    computed.ExplanationStyle,
		Tags:     computed.ProfileTags,
	})
	if cached, ok := a.results.Get(fp); ok {
		return &cached, nil
	}

	// A provider construction failure is a configuration problem (unknown
	// backend, missing API key), not an availability problem; surface it
	// instead of degrading.
	provider, err := llm.NewProvider(opts.Provider, opts.Model)
	if err != nil {
		return nil, fmt.Errorf("analyzer: create provider: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	passes, err := runPasses(ctx, provider, text, q, computed, opts)
	if err != nil {
		// Availability problem: any context the LLM call left behind is
		// abandoned and the degraded keyword result stands in. Fallback
		// results are not cached; the next request retries the LLM.
		fmt.Fprintf(os.Stderr, "fineprint: llm analysis unavailable, using keyword fallback: %v\n", err)
		result, synthErr := synthesis.Synthesize([]schema.AnalysisResult{heuristic.Analyze(text)})
		if synthErr != nil {
			return nil, synthErr
		}
		return result, nil
	}

	result, err := synthesis.Synthesize(passes)
	if err != nil {
		return nil, err
	}
	a.results.Set(fp, *result, opts.CacheTTL)
	return result, nil
}

// runPasses executes up to opts.Passes strictly sequential LLM passes, each
// fed the summaries of the passes before it. A pass failure after
// minPassesForPartial completed passes truncates the run; an earlier failure
// returns ErrMultiPassIncomplete.
func runPasses(
	ctx context.Context,
	provider llm.Provider,
	text string,
	q schema.Questionnaire,
	computed schema.ComputedProfile,
	opts Options,
) ([]schema.AnalysisResult, error) {
	var passes []schema.AnalysisResult
	var priorSummaries []string

	for i := 0; i < opts.Passes; i++ {
		p := prompt.Build(text, computed, q, prompt.PassOptions{
			PassNumber:     i + 1,
			TotalPasses:    opts.Passes,
			Focus:          passFocuses[i%len(passFocuses)],
			PriorSummaries: priorSummaries,
		})
		if opts.Debug {
			fmt.Fprintf(os.Stderr, "=== DEBUG: pass %d system prompt ===\n%s\n", i+1, p.System)
			fmt.Fprintf(os.Stderr, "=== DEBUG: pass %d user prompt ===\n%s\n", i+1, p.User)
		}

		raw, err := provider.Complete(ctx, p.System, p.User, opts.MaxTokens, opts.Temperature)
		if err != nil {
			if len(passes) >= minPassesForPartial {
				// Enough signal to synthesize from what succeeded.
				fmt.Fprintf(os.Stderr, "fineprint: pass %d failed, synthesizing %d completed passes: %v\n",
					i+1, len(passes), err)
				return passes, nil
			}
			return nil, fmt.Errorf("%w: pass %d: %v", ErrMultiPassIncomplete, i+1, err)
		}

		// Malformed content is a data-quality problem, absorbed here by
		// per-field defaulting; only availability problems abort a pass.
		pass := normalize.Parse(raw)
		passes = append(passes, pass)
		priorSummaries = append(priorSummaries, pass.Summary)
	}
	return passes, nil
}

// withDefaults fills unset options.
func withDefaults(opts Options) Options {
	if opts.Passes < 1 {
		opts.Passes = 1
	}
	if opts.Passes > maxPasses {
		opts.Passes = maxPasses
	}
	if opts.Timeout <= 0 {
		if opts.Clause {
			opts.Timeout = defaultClauseTimeout
		} else {
			opts.Timeout = defaultDocumentTimeout
		}
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.DefaultTTL
	}
	return opts
}
