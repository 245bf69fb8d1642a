package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/content-agent/internal/fetch"
)

// AbstractFetcher pulls the abstract text from a paper's landing page.
type AbstractFetcher struct {
	opts *fetch.Options
}

// NewAbstractFetcher returns a fetcher; nil opts uses fetch defaults.
func NewAbstractFetcher(opts *fetch.Options) *AbstractFetcher {
	if opts == nil {
		opts = fetch.DefaultOptions()
	}
	return &AbstractFetcher{opts: opts}
}

// Fetch returns the abstract at link. arXiv PDF links are rewritten to the abstract page.
func (f *AbstractFetcher) Fetch(ctx context.Context, link string) (string, error) {
	res, err := fetch.URL(ctx, AbstractURL(link), f.opts)
	if err != nil {
		return "", err
	}
	text, err := fetch.ExtractMainText(res.HTML, fetch.AbstractSelectors(), ".descriptor")
	if err != nil {
		return "", err
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "", fmt.Errorf("no abstract found at %s", link)
	}
	return text, nil
}

// AbstractURL maps an arXiv PDF URL to its abstract page and leaves others unchanged.
func AbstractURL(link string) string {
	if !strings.Contains(link, "arxiv.org/pdf/") {
		return link
	}
	link = strings.Replace(link, "arxiv.org/pdf/", "arxiv.org/abs/", 1)
	return strings.TrimSuffix(link, ".pdf")
}
