// Package keywords generates the deterministic vocabulary injected into content prompts:
// recruiter SEO keywords, engagement hooks and industry trend talking points.
package keywords

import (
	"fmt"
	"strings"
)

// maxKeywords caps every keyword list.
const maxKeywords = 5

// DefaultRole is the role assumed when none is given.
const DefaultRole = "AI Consultant"

// entry is one row of a lookup table matched by substring.
type entry struct {
	match string
	terms []string
}

var roleTable = []entry{
	{"consultant", []string{"AI Consultant", "ML Consultant", "AI Strategy", "Technical Advisor"}},
	{"engineer", []string{"ML Engineer", "AI Engineer", "Machine Learning Engineer"}},
	{"specialist", []string{"AI Specialist", "ML Specialist", "Data Science Specialist"}},
	{"expert", []string{"AI Expert", "ML Expert", "Subject Matter Expert"}},
	{"architect", []string{"AI Architect", "ML Architect", "Solutions Architect"}},
}

var techTable = []entry{
	{"language", []string{"NLP", "LLM", "Transformers", "GPT", "BERT"}},
	{"vision", []string{"Computer Vision", "CNN", "Object Detection", "Image Recognition"}},
	{"learning", []string{"Deep Learning", "Neural Networks", "PyTorch", "TensorFlow"}},
	{"agent", []string{"AI Agents", "Multi-Agent Systems", "LangChain", "Autonomous Systems"}},
	{"data", []string{"Data Science", "Feature Engineering", "Model Training"}},
}

var defaultTech = []string{"Machine Learning", "Artificial Intelligence", "Python"}

var actionKeywords = []string{
	"AI Development",
	"Model Deployment",
	"MLOps",
	"Production ML",
	"Algorithm Design",
	"Technical Leadership",
	"AI Strategy",
}

// KeywordSet is the output of SEOKeywords.
type KeywordSet struct {
	Primary   []string `json:"primary_keywords"`
	Technical []string `json:"technical_keywords"`
	Action    []string `json:"action_keywords"`
	Combined  []string `json:"combined_phrases"`
	Total     int      `json:"total_keywords"`
}

// SEOKeywords builds the recruiter search keywords for a topic and a target role.
func SEOKeywords(topic, role string) *KeywordSet {
	role = strings.TrimSpace(role)
	if role == "" {
		role = DefaultRole
	}

	primary := append([]string{role}, lookup(roleTable, role, 2)...)
	technical := lookup(techTable, topic, 3)
	if len(technical) == 0 {
		technical = append([]string(nil), defaultTech...)
	}
	primary = dedupe(primary)
	technical = dedupe(technical)

	second := "ML"
	if len(technical) > 1 {
		second = technical[1]
	}
	combined := []string{
		fmt.Sprintf("%s | %s", primary[0], technical[0]),
		fmt.Sprintf("Expert in %s and %s", technical[0], second),
		fmt.Sprintf("%s | %s", actionKeywords[0], actionKeywords[1]),
	}

	all := make([]string, 0, len(primary)+len(technical)+len(actionKeywords))
	all = append(all, primary...)
	all = append(all, technical...)
	all = append(all, actionKeywords...)

	return &KeywordSet{
		Primary:   capList(primary, maxKeywords),
		Technical: capList(technical, maxKeywords),
		Action:    capList(actionKeywords, maxKeywords),
		Combined:  combined,
		Total:     len(dedupe(all)),
	}
}

// lookup scans table in order and collects the first n terms of every row
// whose match string occurs in subject (case-insensitive).
func lookup(table []entry, subject string, n int) []string {
	lower := strings.ToLower(subject)
	var out []string
	for _, e := range table {
		if strings.Contains(lower, e.match) {
			out = append(out, capList(e.terms, n)...)
		}
	}
	return out
}

// dedupe removes repeats, keeping the first occurrence.
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func capList(in []string, n int) []string {
	if len(in) > n {
		in = in[:n]
	}
	return append([]string(nil), in...)
}

// ToMap renders the set as a tool payload.
func (k *KeywordSet) ToMap() map[string]any {
	return map[string]any{
		"primary_keywords":   k.Primary,
		"technical_keywords": k.Technical,
		"action_keywords":    k.Action,
		"combined_phrases":   k.Combined,
		"total_keywords":     k.Total,
	}
}
