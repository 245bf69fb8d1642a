package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbstractFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<nav>arXiv</nav>
			<blockquote class="abstract mathjax">
				<span class="descriptor">Abstract:</span>
				Large language models
				can use tools.
			</blockquote>
		</body></html>`))
	}))
	defer srv.Close()

	text, err := NewAbstractFetcher(nil).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Large language models can use tools.", text)
}

func TestAbstractFetcher_EmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body></body></html>`))
	}))
	defer srv.Close()

	_, err := NewAbstractFetcher(nil).Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestAbstractURL(t *testing.T) {
	assert.Equal(t, "https://arxiv.org/abs/2301.00001v1", AbstractURL("https://arxiv.org/pdf/2301.00001v1.pdf"))
	assert.Equal(t, "https://arxiv.org/abs/2301.00001", AbstractURL("https://arxiv.org/abs/2301.00001"))
	assert.Equal(t, "https://example.org/paper.pdf", AbstractURL("https://example.org/paper.pdf"))
}
