// Package citations renders source records as numbered academic citations.
package citations

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/content-agent/internal/types"
)

// Style is a citation style.
type Style string

// Supported styles.
const (
	StyleAPA     Style = "apa"
	StyleMLA     Style = "mla"
	StyleChicago Style = "chicago"
)

// ErrNoSources is returned when there is nothing to cite.
var ErrNoSources = errors.New("No sources provided for citation") //nolint:staticcheck // surfaced verbatim to the model

var inlineFormats = map[Style]string{
	StyleAPA:     "(Author, Year)",
	StyleMLA:     "(Author)",
	StyleChicago: "(Author Year)",
}

// Result holds the formatted citations.
type Result struct {
	Citations    []string `json:"citations"`
	Style        Style    `json:"style"`
	InlineFormat string   `json:"inline_format"`
}

// ParseStyle resolves a style name case-insensitively. Unknown names resolve to APA.
func ParseStyle(name string) Style {
	s := Style(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := inlineFormats[s]; ok {
		return s
	}
	return StyleAPA
}

// Format renders each source as "[i] <citation>" in the given style.
func Format(sources []types.Source, style string) (*Result, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	st := ParseStyle(style)
	out := make([]string, 0, len(sources))
	for i, src := range sources {
		out = append(out, fmt.Sprintf("[%d] %s", i+1, render(withDefaults(src), st)))
	}

	return &Result{
		Citations:    out,
		Style:        st,
		InlineFormat: inlineFormats[st],
	}, nil
}

func render(src types.Source, st Style) string {
	switch st {
	case StyleMLA:
		return fmt.Sprintf("%s. \"%s.\" Web. %s", src.Authors, src.Title, src.Link)
	case StyleChicago:
		return fmt.Sprintf("%s. \"%s.\" %s", src.Authors, src.Title, src.Link)
	default:
		return fmt.Sprintf("%s (%s). %s. %s", src.Authors, src.Year, src.Title, src.Link)
	}
}

func withDefaults(src types.Source) types.Source {
	if src.Title == "" {
		src.Title = "Untitled"
	}
	if src.Authors == "" {
		src.Authors = "Unknown"
	}
	if src.Year == "" {
		src.Year = "n.d."
	}
	return src
}
