package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		key      string
		contains string
		errMsg   string
	}{
		{
			name:     "research instruction",
			file:     StagesFile,
			key:      "research",
			contains: "**Academic Papers**",
		},
		{
			name:     "review instruction references prior outputs",
			file:     StagesFile,
			key:      "review",
			contains: "{optimized_linkedin}",
		},
		{
			name:     "user message",
			file:     UserFile,
			key:      "user-message",
			contains: "{{.Topic}}",
		},
		{
			name:   "missing file",
			file:   "nonexistent.json",
			key:    "x",
			errMsg: "failed to read prompt file",
		},
		{
			name:   "missing key",
			file:   StagesFile,
			key:    "nonexistent-key",
			errMsg: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ClearCache()
			got, err := Get(tt.file, tt.key)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, got, tt.contains)
		})
	}
}

func TestMustGet(t *testing.T) {
	ClearCache()
	assert.Panics(t, func() { MustGet("nonexistent.json", "some-key") })
	assert.NotPanics(t, func() {
		assert.NotEmpty(t, MustGet(StagesFile, "strategy"))
	})
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		expected string
	}{
		{
			name:     "replaces every placeholder",
			template: "Create content about: {{.Topic}} for {{.Audience}}. {{.Topic}}!",
			data:     map[string]string{"Topic": "RAG", "Audience": "engineers"},
			expected: "Create content about: RAG for engineers. RAG!",
		},
		{
			name:     "no placeholders",
			template: "No placeholders here",
			data:     map[string]string{"Key": "Value"},
			expected: "No placeholders here",
		},
		{
			name:     "missing data leaves placeholder",
			template: "Hello {{.Name}}",
			data:     map[string]string{},
			expected: "Hello {{.Name}}",
		},
		{
			name:     "stage placeholders untouched",
			template: "{research_findings} {{.Topic}}",
			data:     map[string]string{"Topic": "x"},
			expected: "{research_findings} x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.template, tt.data))
		})
	}
}

func TestList(t *testing.T) {
	ClearCache()
	keys, err := List(StagesFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"content-generation", "linkedin-optimization", "research", "review", "strategy"}, keys)
}

func TestCaching(t *testing.T) {
	ClearCache()
	first, err := Get(StagesFile, "research")
	require.NoError(t, err)
	second, err := Get(StagesFile, "research")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
