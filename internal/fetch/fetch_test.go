package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte("<feed><entry><title>Paper</title></entry></feed>"))
	}))
	defer server.Close()

	tests := []struct {
		name       string
		url        string
		wantErr    string
		wantStatus int
	}{
		{name: "ok", url: server.URL + "/query", wantStatus: http.StatusOK},
		{name: "not found keeps result", url: server.URL + "/missing", wantErr: "404", wantStatus: http.StatusNotFound},
		{name: "invalid url", url: "arxiv.org/abs/1", wantErr: "invalid URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := URL(context.Background(), tt.url, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				var fetchErr *Error
				assert.ErrorAs(t, err, &fetchErr)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Contains(t, result.HTML, "<title>Paper</title>")
			}
			if tt.wantStatus != 0 {
				require.NotNil(t, result)
				assert.Equal(t, tt.wantStatus, result.StatusCode)
			}
		})
	}
}

func TestExtractMainText_DefaultSelectors(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    []string
		notWant []string
	}{
		{
			name:    "main element",
			html:    `<html><body><nav>Menu</nav><main><h1>Results</h1><p>Accuracy improved.</p></main><footer>Copyright</footer></body></html>`,
			want:    []string{"Results", "Accuracy improved."},
			notWant: []string{"Menu", "Copyright"},
		},
		{
			name: "article element",
			html: `<html><body><article><h1>Transformers at scale</h1><p>We train larger models.</p></article></body></html>`,
			want: []string{"Transformers at scale", "We train larger models."},
		},
		{
			name: "falls back to body",
			html: `<html><body><div>Preprint notes.</div></body></html>`,
			want: []string{"Preprint notes."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractMainText(tt.html, DefaultTextSelectors())
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, text, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, text, nw)
			}
		})
	}
}

func TestExtractMainText_AbstractSelectors(t *testing.T) {
	html := `
	<html>
		<body>
			<div class="sidebar">Related papers</div>
			<h1 class="title">Federated Averaging</h1>
			<blockquote class="abstract">
				<span class="descriptor">Abstract:</span>
				We show that federated averaging converges on non-IID data.
			</blockquote>
		</body>
	</html>`

	text, err := ExtractMainText(html, AbstractSelectors(), ".descriptor")
	require.NoError(t, err)
	assert.Equal(t, "We show that federated averaging converges on non-IID data.", text)
}

func TestText_FetchesAndExtracts(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><body><nav>Menu</nav><article>Paper body.</article></body></html>"))
	}))
	defer server.Close()

	result, err := Text(context.Background(), server.URL, DefaultTextSelectors(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Paper body.", result.Text)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestURL_CustomClientAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("Accept")))
	}))
	defer server.Close()

	opts := &Options{Client: server.Client(), Headers: map[string]string{"Accept": "application/atom+xml"}}
	result, err := URL(context.Background(), server.URL, opts)
	require.NoError(t, err)
	assert.Equal(t, "application/atom+xml", result.HTML)
}

func TestDefaultTextSelectors(t *testing.T) {
	selectors := DefaultTextSelectors()
	assert.Contains(t, selectors, "main")
	assert.Contains(t, selectors, "article")
}

func TestAbstractSelectors(t *testing.T) {
	assert.Equal(t, "blockquote.abstract", AbstractSelectors()[0])
}
