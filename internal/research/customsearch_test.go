package research

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newWebSearcher(t *testing.T, items []map[string]string, abstract *AbstractFetcher) (*WebSearcher, *string) {
	t.Helper()
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	}))
	t.Cleanup(srv.Close)

	ws, err := NewWebSearcher(context.Background(), "test-key", "cx-1", abstract,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return ws, &gotQuery
}

func TestWebSearcher_Search(t *testing.T) {
	ws, q := newWebSearcher(t, []map[string]string{
		{"title": "[2301.00001] Federated Averaging Revisited - arXiv", "link": "https://arxiv.org/abs/2301.00001", "snippet": "We revisit FedAvg."},
		{"title": "", "link": "https://arxiv.org/abs/2301.00002"},
		{"title": "Private Aggregation | arXiv.org", "link": "https://arxiv.org/abs/2301.00003", "snippet": "Secure aggregation."},
	}, nil)

	papers, err := ws.Search(context.Background(), "federated learning", 5)
	require.NoError(t, err)
	assert.Equal(t, "site:arxiv.org federated learning", *q)
	require.Len(t, papers, 2)
	assert.Equal(t, "Federated Averaging Revisited", papers[0].Title)
	assert.Equal(t, "We revisit FedAvg....", papers[0].Summary)
	assert.Equal(t, "Private Aggregation", papers[1].Title)
	assert.Equal(t, "web", papers[1].Source)
}

func TestWebSearcher_EnrichesEmptySnippets(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><blockquote class="abstract"><span class="descriptor">Abstract:</span> Enriched text.</blockquote></body></html>`))
	}))
	defer page.Close()

	ws, _ := newWebSearcher(t, []map[string]string{
		{"title": "Paper", "link": page.URL + "/abs/1"},
	}, NewAbstractFetcher(nil))

	papers, err := ws.Search(context.Background(), "x", 3)
	require.NoError(t, err)
	assert.Equal(t, "Enriched text....", papers[0].Summary)
}

func TestWebSearcher_NoItems(t *testing.T) {
	ws, _ := newWebSearcher(t, nil, nil)
	_, err := ws.Search(context.Background(), "x", 3)
	assert.ErrorIs(t, err, ErrNoPapers)
}

func TestNewWebSearcher_RequiresCX(t *testing.T) {
	_, err := NewWebSearcher(context.Background(), "k", "", nil)
	assert.Error(t, err)
}

func TestCleanResultTitle(t *testing.T) {
	tests := []struct{ in, want string }{
		{"[2106.09685] LoRA: Low-Rank Adaptation - arXiv", "LoRA: Low-Rank Adaptation"},
		{"Plain Title", "Plain Title"},
		{"  Spaced | arXiv  ", "Spaced"},
		{"Title mentioning arXiv in the middle", "Title mentioning arXiv in the middle"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanResultTitle(tt.in), tt.in)
	}
}
