package research

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/content-agent/internal/types"
	"golang.org/x/sync/errgroup"
)

// MultiSearcher queries several backends concurrently and merges their results.
// Earlier backends win when two return the same title.
type MultiSearcher struct {
	backends []Searcher
}

// NewMultiSearcher combines backends in priority order.
func NewMultiSearcher(backends ...Searcher) *MultiSearcher {
	return &MultiSearcher{backends: backends}
}

// Name implements Searcher.
func (m *MultiSearcher) Name() string { return "multi" }

// Search implements Searcher. It fails only when every backend fails.
func (m *MultiSearcher) Search(ctx context.Context, topic string, max int) ([]types.Paper, error) {
	if len(m.backends) == 0 {
		return nil, fmt.Errorf("no search backends configured")
	}
	max = clampMax(max)

	results := make([][]types.Paper, len(m.backends))
	errs := make([]error, len(m.backends))

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range m.backends {
		g.Go(func() error {
			papers, err := b.Search(gctx, topic, max)
			results[i] = papers
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	var merged []types.Paper
	seen := make(map[string]bool)
	for _, papers := range results {
		for _, p := range papers {
			key := normalizeTitle(p.Title)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, p)
		}
	}
	if len(merged) > max {
		merged = merged[:max]
	}
	if len(merged) > 0 {
		return merged, nil
	}

	var failures []error
	for _, err := range errs {
		if err != nil && !errors.Is(err, ErrNoPapers) {
			failures = append(failures, err)
		}
	}
	if len(failures) == len(m.backends) {
		return nil, errors.Join(failures...)
	}
	return nil, ErrNoPapers
}
