package tools

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/content-agent/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestArgs_Int(t *testing.T) {
	a := Args{
		"f":    float64(3),
		"i":    7,
		"i64":  int64(9),
		"s":    " 4 ",
		"num":  json.Number("11"),
		"bad":  "x",
		"null": nil,
	}
	assert.Equal(t, 3, a.Int("f", 0))
	assert.Equal(t, 7, a.Int("i", 0))
	assert.Equal(t, 9, a.Int("i64", 0))
	assert.Equal(t, 4, a.Int("s", 0))
	assert.Equal(t, 11, a.Int("num", 0))
	assert.Equal(t, 5, a.Int("bad", 5))
	assert.Equal(t, 5, a.Int("null", 5))
	assert.Equal(t, 5, a.Int("missing", 5))
}

func TestArgs_String(t *testing.T) {
	a := Args{"s": "v", "blank": "  ", "n": float64(2024)}
	assert.Equal(t, "v", a.String("s", "d"))
	assert.Equal(t, "d", a.String("blank", "d"))
	assert.Equal(t, "d", a.String("missing", "d"))
	assert.Equal(t, "2024", a.String("n", "d"))
	assert.True(t, a.Has("s"))
	assert.False(t, Args{"x": nil}.Has("x"))
}

func TestArgs_Sources(t *testing.T) {
	typed := []types.Source{{Title: "t"}}
	assert.Equal(t, typed, Args{"s": typed}.Sources("s"))

	got := Args{"s": []any{
		map[string]any{"title": "A", "authors": "X, Y", "url": "https://u"},
		map[string]any{"authors": []any{"1", "2", "3", "4"}},
	}}.Sources("s")
	assert.Equal(t, []types.Source{
		{Title: "A", Authors: "X, Y", Link: "https://u"},
		{Authors: "1, 2, 3"},
	}, got)

	assert.Nil(t, Args{}.Sources("s"))
	assert.Nil(t, Args{"s": "not a list"}.Sources("s"))
}
