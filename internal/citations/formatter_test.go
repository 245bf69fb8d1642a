package citations

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/content-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []types.Source{
	{Title: "Attention Is All You Need", Authors: "Vaswani, Shazeer, Parmar", Link: "https://arxiv.org/abs/1706.03762", Year: "2017"},
	{Title: "Communication-Efficient Learning", Authors: "McMahan, Moore", Link: "https://arxiv.org/abs/1602.05629"},
}

func TestFormat_NoSources(t *testing.T) {
	for _, style := range []string{"apa", "mla", "chicago", "bogus", ""} {
		_, err := Format(nil, style)
		assert.ErrorIs(t, err, ErrNoSources)

		_, err = Format([]types.Source{}, style)
		assert.ErrorIs(t, err, ErrNoSources)
	}
}

func TestFormat_Styles(t *testing.T) {
	tests := []struct {
		style  string
		first  string
		second string
		inline string
	}{
		{
			style:  "apa",
			first:  "[1] Vaswani, Shazeer, Parmar (2017). Attention Is All You Need. https://arxiv.org/abs/1706.03762",
			second: "[2] McMahan, Moore (n.d.). Communication-Efficient Learning. https://arxiv.org/abs/1602.05629",
			inline: "(Author, Year)",
		},
		{
			style:  "mla",
			first:  `[1] Vaswani, Shazeer, Parmar. "Attention Is All You Need." Web. https://arxiv.org/abs/1706.03762`,
			second: `[2] McMahan, Moore. "Communication-Efficient Learning." Web. https://arxiv.org/abs/1602.05629`,
			inline: "(Author)",
		},
		{
			style:  "CHICAGO",
			first:  `[1] Vaswani, Shazeer, Parmar. "Attention Is All You Need." https://arxiv.org/abs/1706.03762`,
			second: `[2] McMahan, Moore. "Communication-Efficient Learning." https://arxiv.org/abs/1602.05629`,
			inline: "(Author Year)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			res, err := Format(sample, tt.style)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.first, tt.second}, res.Citations)
			assert.Equal(t, tt.inline, res.InlineFormat)
		})
	}
}

func TestFormat_UnknownStyleMatchesAPA(t *testing.T) {
	apa, err := Format(sample, "apa")
	require.NoError(t, err)
	bogus, err := Format(sample, "bogus")
	require.NoError(t, err)
	assert.Equal(t, apa, bogus)
}

func TestFormat_NumberedInOrder(t *testing.T) {
	sources := make([]types.Source, 12)
	for i := range sources {
		sources[i] = types.Source{Title: fmt.Sprintf("Paper %d", i)}
	}

	res, err := Format(sources, "mla")
	require.NoError(t, err)
	require.Len(t, res.Citations, len(sources))
	for i, c := range res.Citations {
		assert.True(t, strings.HasPrefix(c, fmt.Sprintf("[%d] ", i+1)), c)
	}
}

func TestFormat_Defaults(t *testing.T) {
	res, err := Format([]types.Source{{}}, "apa")
	require.NoError(t, err)
	assert.Equal(t, "[1] Unknown (n.d.). Untitled. ", res.Citations[0])
}

func TestParseStyle(t *testing.T) {
	assert.Equal(t, StyleMLA, ParseStyle(" MLA "))
	assert.Equal(t, StyleAPA, ParseStyle("harvard"))
	assert.Equal(t, StyleChicago, ParseStyle("chicago"))
}
