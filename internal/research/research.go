// Package research looks up academic papers for a topic. Backends implement
// Searcher; SearchPapers turns any of them into the tool envelope the model sees.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/content-agent/internal/types"
)

// DefaultMaxResults is used when a caller asks for zero or fewer papers.
const DefaultMaxResults = 5

// MaxResultsLimit bounds a single search.
const MaxResultsLimit = 50

// ErrNoPapers is returned by backends that found nothing.
var ErrNoPapers = errors.New("no papers found")

// Searcher is a paper-search backend.
type Searcher interface {
	Search(ctx context.Context, topic string, max int) ([]types.Paper, error)
	Name() string
}

// SearchError wraps a backend failure with the backend's name.
type SearchError struct {
	Backend string
	Cause   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s search failed: %v", e.Backend, e.Cause)
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}

// SearchPapers runs s and wraps the outcome as a tool result:
// {status: success, papers, count} or {status: error, error_message}.
func SearchPapers(ctx context.Context, s Searcher, topic string, max int) types.ToolResult {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return types.ToolResult{Status: types.StatusError, Message: "Topic is required"}
	}
	max = clampMax(max)

	papers, err := s.Search(ctx, topic, max)
	if err != nil && !errors.Is(err, ErrNoPapers) {
		return types.ToolResult{Status: types.StatusError, Message: fmt.Sprintf("Failed to search papers: %v", err)}
	}
	if len(papers) == 0 {
		return types.ToolResult{Status: types.StatusError, Message: fmt.Sprintf("No papers found for topic: %s", topic)}
	}
	if len(papers) > max {
		papers = papers[:max]
	}

	out := make([]map[string]any, 0, len(papers))
	for _, p := range papers {
		out = append(out, p.ToMap())
	}
	return types.Success(map[string]any{
		"papers": out,
		"count":  len(out),
	})
}

// Sources converts papers into citation records.
func Sources(papers []types.Paper) []types.Source {
	out := make([]types.Source, 0, len(papers))
	for _, p := range papers {
		out = append(out, p.AsSource())
	}
	return out
}

func clampMax(max int) int {
	switch {
	case max <= 0:
		return DefaultMaxResults
	case max > MaxResultsLimit:
		return MaxResultsLimit
	default:
		return max
	}
}

// normalizeTitle is the identity used to merge results across backends.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
