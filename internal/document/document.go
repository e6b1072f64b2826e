// Package document splits terms-and-conditions text into titled sections so
// individual clauses can be analyzed on their own. Splitting is line
// oriented: markdown headings, numbered headings ("12." / "3.1"), and
// short ALL-CAPS lines all open a new section. Text before the first heading
// becomes a preamble section.
package document

import (
	"regexp"
	"strings"
	"unicode"
)

// Section is one titled span of the document with 1-based line bounds.
type Section struct {
	Title     string
	Body      string
	LineStart int
	LineEnd   int
}

// numberedHeadingRe matches headings like "7. Termination" or "3.2 Fees".
var numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*[.)]?\s+\S`)

// maxHeadingLen bounds heading detection; prose lines are longer.
const maxHeadingLen = 80

// Split divides text into sections. A document with no detectable headings
// yields a single section spanning the whole text.
func Split(text string) []Section {
	lines := strings.Split(text, "\n")

	var sections []Section
	current := Section{Title: "Preamble", LineStart: 1}
	var body []string
	open := false

	flush := func(end int) {
		trimmed := strings.TrimSpace(strings.Join(body, "\n"))
		if trimmed == "" && !open {
			return
		}
		current.Body = trimmed
		current.LineEnd = end
		if current.Body != "" || current.Title != "Preamble" {
			sections = append(sections, current)
		}
	}

	for i, line := range lines {
		if isHeading(line) {
			flush(i)
			current = Section{Title: headingTitle(line), LineStart: i + 1}
			body = body[:0]
			open = true
			continue
		}
		body = append(body, line)
	}
	flush(len(lines))

	if len(sections) == 0 {
		return []Section{{
			Title:     "Document",
			Body:      strings.TrimSpace(text),
			LineStart: 1,
			LineEnd:   len(lines),
		}}
	}
	return sections
}

// isHeading reports whether line opens a new section.
func isHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > maxHeadingLen {
		return false
	}
	if strings.HasPrefix(trimmed, "#") {
		return true
	}
	if numberedHeadingRe.MatchString(trimmed) {
		return true
	}
	return isAllCaps(trimmed)
}

// isAllCaps reports whether s contains letters and no lowercase ones.
// Short legal headings ("LIMITATION OF LIABILITY") follow this convention.
func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// headingTitle extracts the display title from a heading line.
func headingTitle(line string) string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimLeft(trimmed, "# ")
	return strings.TrimSpace(trimmed)
}

// NormalizeWhitespace collapses runs of blank lines and trailing spaces so
// fingerprints are stable across copy-paste variants of the same document.
func NormalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// WordCount counts whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
