package pipeline

import (
	"regexp"
	"strings"

	"github.com/jonathan/content-agent/internal/llm"
)

// Stage describes one step of a pipeline: which context keys it reads, the
// instruction template it renders from them, the tools it may call and the
// key it writes.
type Stage struct {
	Name        string
	Category    string
	Inputs      []string
	Instruction string
	Tools       []string
	OutputKey   string
	Tier        llm.ModelTier
}

var placeholderPattern = regexp.MustCompile(`\{([a-z][a-z0-9_]*)\}`)

// Placeholders returns the distinct {key} tokens in the instruction, in order of appearance.
func (s Stage) Placeholders() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(s.Instruction, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}

// Render substitutes every input placeholder with its context value.
func (s Stage) Render(c *Context) (string, error) {
	pairs := make([]string, 0, len(s.Inputs)*2)
	for _, key := range s.Inputs {
		v, ok := c.Get(key)
		if !ok {
			return "", &MissingContextKeyError{Stage: s.Name, Key: key}
		}
		pairs = append(pairs, "{"+key+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s.Instruction), nil
}
