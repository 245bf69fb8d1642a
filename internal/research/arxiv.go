package research

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/content-agent/internal/fetch"
	"github.com/jonathan/content-agent/internal/types"
)

// arxivAPIBase is the export API endpoint. Tests point it at a local server.
var arxivAPIBase = "http://export.arxiv.org/api/query"

// arxivTimeout bounds one API call.
const arxivTimeout = 10 * time.Second

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// ArxivSearcher queries the arXiv export API, newest submissions first.
type ArxivSearcher struct {
	opts *fetch.Options
}

// NewArxivSearcher returns a searcher using opts for HTTP; nil uses a 10s timeout.
func NewArxivSearcher(opts *fetch.Options) *ArxivSearcher {
	if opts == nil {
		opts = fetch.DefaultOptions()
		opts.Timeout = arxivTimeout
	}
	return &ArxivSearcher{opts: opts}
}

// Name implements Searcher.
func (a *ArxivSearcher) Name() string { return "arxiv" }

// Search implements Searcher.
func (a *ArxivSearcher) Search(ctx context.Context, topic string, max int) ([]types.Paper, error) {
	max = clampMax(max)
	q := url.Values{}
	q.Set("search_query", "all:"+topic)
	q.Set("max_results", strconv.Itoa(max))
	q.Set("sortBy", "submittedDate")
	q.Set("sortOrder", "descending")

	res, err := fetch.URL(ctx, arxivAPIBase+"?"+q.Encode(), a.opts)
	if err != nil {
		return nil, &SearchError{Backend: a.Name(), Cause: err}
	}

	papers, err := parseAtom([]byte(res.HTML), max)
	if err != nil {
		return nil, &SearchError{Backend: a.Name(), Cause: err}
	}
	if len(papers) == 0 {
		return nil, ErrNoPapers
	}
	return papers, nil
}

func parseAtom(body []byte, max int) ([]types.Paper, error) {
	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to decode atom feed: %w", err)
	}

	papers := make([]types.Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		title := strings.Join(strings.Fields(e.Title), " ")
		if title == "" {
			continue
		}
		p := types.Paper{
			Title:   title,
			Summary: types.TruncateSummary(e.Summary),
			Link:    strings.TrimSpace(e.ID),
			Source:  "arxiv",
		}
		for _, au := range e.Authors {
			if name := strings.TrimSpace(au.Name); name != "" {
				p.Authors = append(p.Authors, name)
			}
		}
		if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
			p.Published = ts
		}
		papers = append(papers, p)
		if len(papers) == max {
			break
		}
	}
	return papers, nil
}
