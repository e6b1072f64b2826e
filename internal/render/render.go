// Package render produces output from analysis results and computed
// profiles, for terminal use or PR-style comments.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fineprint-dev/fineprint/internal/schema"
)

// RenderJSON produces a pretty-printed JSON representation of v.
func RenderJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("render: nil value")
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: json marshal: %w", err)
	}
	return b, nil
}

// RenderMarkdown produces a Markdown summary of a multi-pass result,
// personalized against the user's alert thresholds: a category at or above
// its threshold is marked as a warning for this user.
func RenderMarkdown(result *schema.MultiPassResult, thresholds schema.AlertThresholds) string {
	if result == nil {
		return ""
	}
	var sb strings.Builder

	sb.WriteString("## FinePrint Analysis\n\n")
	fmt.Fprintf(&sb, "**Risk:** %.1f/10 (%s)  \n", result.RiskScore, result.RiskLevel)
	fmt.Fprintf(&sb, "**Confidence:** %.2f  \n", result.Confidence)
	fmt.Fprintf(&sb, "**Passes:** %d\n", result.PassesCompleted)
	if result.Fallback {
		sb.WriteString("\n> ⚠ Keyword-scan fallback result; the AI analysis was unavailable.\n")
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s\n\n", mdEscape(result.Summary))

	if len(result.KeyPoints) > 0 {
		sb.WriteString("### Key Points\n\n")
		for _, p := range result.KeyPoints {
			fmt.Fprintf(&sb, "- %s\n", mdEscape(p))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("### Categories\n\n")
	sb.WriteString("| Category | Score | Alert | Concerns |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, name := range schema.CategoryNames {
		cat, ok := result.Categories[name]
		if !ok {
			continue
		}
		alert := ""
		if cat.Score >= thresholdFor(thresholds, name) {
			alert = "⚠ over your threshold"
		}
		fmt.Fprintf(&sb, "| %s | %.1f | %s | %s |\n",
			name, cat.Score, alert, mdEscape(strings.Join(cat.Concerns, "; ")))
	}
	sb.WriteString("\n")

	ins := result.ComprehensiveInsights
	if len(ins.RegulatoryFlags) > 0 {
		sb.WriteString("### Regulatory Flags\n\n")
		for _, f := range ins.RegulatoryFlags {
			fmt.Fprintf(&sb, "- %s\n", mdEscape(f))
		}
		sb.WriteString("\n")
	}
	if len(ins.Recommendations) > 0 {
		sb.WriteString("### Recommendations\n\n")
		for _, r := range ins.Recommendations {
			fmt.Fprintf(&sb, "- %s\n", mdEscape(r))
		}
		sb.WriteString("\n")
	}

	meta := result.DocumentMetadata
	if meta.DocumentType != "" || meta.Jurisdiction != "" {
		sb.WriteString("### Document\n\n")
		if meta.DocumentType != "" {
			fmt.Fprintf(&sb, "**Type:** %s  \n", meta.DocumentType)
		}
		if meta.Jurisdiction != "" {
			fmt.Fprintf(&sb, "**Jurisdiction:** %s  \n", meta.Jurisdiction)
		}
		fmt.Fprintf(&sb, "**Metadata confidence:** %.2f\n\n", meta.Confidence)
	}

	return sb.String()
}

// RenderProfileMarkdown produces a Markdown summary of a computed profile.
func RenderProfileMarkdown(computed schema.ComputedProfile) string {
	var sb strings.Builder
	sb.WriteString("## Personalization Profile\n\n")
	fmt.Fprintf(&sb, "**Explanation style:** %s\n\n", computed.ExplanationStyle)

	rt := computed.RiskTolerance
	sb.WriteString("| Risk tolerance | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| privacy | %.1f |\n| financial | %.1f |\n| legal | %.1f |\n| overall | %.1f |\n\n",
		rt.Privacy, rt.Financial, rt.Legal, rt.Overall)

	t := computed.AlertThresholds
	sb.WriteString("| Alert threshold | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| privacy | %.1f |\n| liability | %.1f |\n| termination | %.1f |\n| payment | %.1f |\n| overall | %.1f |\n\n",
		t.Privacy, t.Liability, t.Termination, t.Payment, t.Overall)

	fmt.Fprintf(&sb, "**Tags:** %s\n", strings.Join(computed.ProfileTags, ", "))
	return sb.String()
}

// thresholdFor maps a category name to its alert threshold.
func thresholdFor(t schema.AlertThresholds, name schema.CategoryName) float64 {
	switch name {
	case schema.CategoryPrivacy:
		return t.Privacy
	case schema.CategoryLiability:
		return t.Liability
	case schema.CategoryTermination:
		return t.Termination
	case schema.CategoryPayment:
		return t.Payment
	default:
		return t.Overall
	}
}

// mdEscape replaces characters that would break Markdown table cells.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
