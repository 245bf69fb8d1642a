package tools

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/content-agent/internal/types"
)

// Args are decoded function-call arguments. Numbers may arrive as float64
// (JSON) or int, and lists as []any.
type Args map[string]any

// Has reports whether key is present with a non-nil value.
func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns the string under key, or def when absent or blank.
func (a Args) String(key, def string) string {
	switch v := a[key].(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	case nil:
		return def
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return def
		}
		return string(b)
	}
}

// Int returns the integer under key, or def when absent or not numeric.
func (a Args) Int(key string, def int) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float32:
		return int(math.Round(float64(v)))
	case float64:
		return int(math.Round(v))
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Sources decodes a list of citation records under key. Each element may be
// a map or already a types.Source.
func (a Args) Sources(key string) []types.Source {
	switch v := a[key].(type) {
	case []types.Source:
		return v
	case nil:
		return nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var raw []map[string]any
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil
		}
		out := make([]types.Source, 0, len(raw))
		for _, m := range raw {
			s := Args(m)
			out = append(out, types.Source{
				Title:   s.String("title", ""),
				Authors: s.authors("authors"),
				Link:    s.String("link", s.String("url", "")),
				Year:    s.String("year", ""),
			})
		}
		return out
	}
}

// authors accepts either a preformatted line or a list of names.
func (a Args) authors(key string) string {
	list, ok := a[key].([]any)
	if !ok {
		return a.String(key, "")
	}
	p := types.Paper{}
	for _, v := range list {
		if name, ok := v.(string); ok {
			p.Authors = append(p.Authors, name)
		}
	}
	if len(p.Authors) == 0 {
		return ""
	}
	return p.AuthorLine()
}
