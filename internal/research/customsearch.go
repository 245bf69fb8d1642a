package research

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/content-agent/internal/types"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// customSearchPageSize is the Custom Search API's per-request ceiling.
const customSearchPageSize = 10

var (
	arxivIDPrefix = regexp.MustCompile(`^\[[^\]]+\]\s*`)
	arxivSuffix   = regexp.MustCompile(`\s*[-|]\s*arXiv(\.org)?\s*$`)
)

// WebSearcher finds arXiv pages through the Google Custom Search JSON API.
type WebSearcher struct {
	svc      *customsearch.Service
	cx       string
	site     string
	abstract *AbstractFetcher
}

// NewWebSearcher creates a searcher for the search engine cx. Extra client
// options are appended after the API key.
func NewWebSearcher(ctx context.Context, apiKey, cx string, abstract *AbstractFetcher, opts ...option.ClientOption) (*WebSearcher, error) {
	if cx == "" {
		return nil, fmt.Errorf("custom search engine id is required")
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &WebSearcher{svc: svc, cx: cx, site: "arxiv.org", abstract: abstract}, nil
}

// Name implements Searcher.
func (w *WebSearcher) Name() string { return "web" }

// Search implements Searcher. Results with an empty snippet are filled from
// the landing page when an AbstractFetcher is configured.
func (w *WebSearcher) Search(ctx context.Context, topic string, max int) ([]types.Paper, error) {
	max = clampMax(max)
	num := max
	if num > customSearchPageSize {
		num = customSearchPageSize
	}

	query := fmt.Sprintf("site:%s %s", w.site, topic)
	resp, err := w.svc.Cse.List().Cx(w.cx).Q(query).Num(int64(num)).Context(ctx).Do()
	if err != nil {
		return nil, &SearchError{Backend: w.Name(), Cause: err}
	}
	if len(resp.Items) == 0 {
		return nil, ErrNoPapers
	}

	papers := make([]types.Paper, 0, len(resp.Items))
	for _, item := range resp.Items {
		title := cleanResultTitle(item.Title)
		if title == "" || item.Link == "" {
			continue
		}
		summary := strings.TrimSpace(item.Snippet)
		if summary == "" && w.abstract != nil {
			if text, err := w.abstract.Fetch(ctx, item.Link); err == nil {
				summary = text
			}
		}
		papers = append(papers, types.Paper{
			Title:   title,
			Summary: types.TruncateSummary(summary),
			Link:    item.Link,
			Source:  w.Name(),
		})
		if len(papers) == max {
			break
		}
	}
	if len(papers) == 0 {
		return nil, ErrNoPapers
	}
	return papers, nil
}

// cleanResultTitle strips the "[2301.00001] " id prefix and " - arXiv" suffix
// search engines add to arXiv page titles.
func cleanResultTitle(title string) string {
	title = strings.TrimSpace(title)
	title = arxivIDPrefix.ReplaceAllString(title, "")
	title = arxivSuffix.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}
