// Package findings pulls key finding sentences out of research text.
package findings

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxFindings is used when the caller passes a non-positive limit.
const DefaultMaxFindings = 5

const (
	minTextLength     = 50
	minFallbackLength = 30
)

// ErrInsufficientText is returned when the trimmed text is shorter than 50 characters.
var ErrInsufficientText = errors.New("Insufficient research text provided") //nolint:staticcheck // surfaced verbatim to the model

// indicators mark a sentence as reporting a result.
var indicators = []string{
	"found", "discovered", "showed", "demonstrated", "revealed",
	"concluded", "suggests", "indicates", "proves", "confirms",
	"important", "significant", "key", "main", "primary",
}

// sentenceBoundary matches sentence-ending punctuation followed by whitespace.
var sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)

// Report is the result of an extraction.
type Report struct {
	Findings []string `json:"findings"`
	Summary  string   `json:"summary"`
}

// Extract selects up to maxFindings sentences from text. Sentences containing an
// indicator word come first, in their original order; if that leaves room, other
// sentences longer than 30 characters fill it, also in original order.
func Extract(text string, maxFindings int) (*Report, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTextLength {
		return nil, ErrInsufficientText
	}
	if maxFindings <= 0 {
		maxFindings = DefaultMaxFindings
	}

	sentences := SplitSentences(text)
	findings := make([]string, 0, maxFindings)
	taken := make(map[int]bool)

	for i, s := range sentences {
		if len(findings) >= maxFindings {
			break
		}
		if hasIndicator(s) {
			findings = append(findings, terminate(s))
			taken[i] = true
		}
	}

	for i, s := range sentences {
		if len(findings) >= maxFindings {
			break
		}
		if taken[i] || utf8.RuneCountInString(s) <= minFallbackLength {
			continue
		}
		findings = append(findings, terminate(s))
		taken[i] = true
	}

	return &Report{
		Findings: findings,
		Summary:  fmt.Sprintf("Analysis of research text identified %d key findings and insights.", len(findings)),
	}, nil
}

// SplitSentences normalizes newlines to spaces and splits text into trimmed, non-empty sentences.
// Terminal punctuation stays attached to its sentence.
func SplitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	marked := sentenceBoundary.ReplaceAllString(text, "$1\x00")

	var out []string
	for _, part := range strings.Split(marked, "\x00") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func hasIndicator(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, word := range indicators {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func terminate(sentence string) string {
	if strings.HasSuffix(sentence, ".") || strings.HasSuffix(sentence, "!") || strings.HasSuffix(sentence, "?") {
		return sentence
	}
	return sentence + "."
}
