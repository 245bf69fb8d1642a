package scoring

import "strings"

// lexicon is a fixed trigger list scored by case-insensitive substring hits.
type lexicon struct {
	terms []string
	// reference is the hit count that maps to 100/scale of the score.
	reference float64
	scale     float64
}

var seoLexicon = lexicon{
	terms: []string{
		"ai", "machine learning", "ml", "deep learning", "neural network",
		"python", "tensorflow", "pytorch", "consulting", "engineer",
		"architect", "specialist", "expert",
	},
	reference: 13,
	scale:     200,
}

var engagementLexicon = lexicon{
	terms: []string{
		"?", "let's", "connect", "dm", "message", "discuss",
		"share", "comment", "what's your", "have you", "follow",
	},
	reference: 5,
	scale:     100,
}

var valueLexicon = lexicon{
	terms: []string{
		"production", "scale", "roi", "business", "solution", "impact",
		"results", "improve", "optimize", "problem", "challenge",
	},
	reference: 5,
	scale:     100,
}

var portfolioLexicon = lexicon{
	terms:     []string{"project", "github", "kaggle", "built", "developed", "implemented"},
	reference: 3,
	scale:     100,
}

// hits counts how many terms occur in lowered text. Each term counts once.
func (l lexicon) hits(lowered string) int {
	n := 0
	for _, term := range l.terms {
		if strings.Contains(lowered, term) {
			n++
		}
	}
	return n
}

func (l lexicon) normalize(hits int) float64 {
	s := float64(hits) / l.reference * l.scale
	if s > 100 {
		return 100
	}
	return s
}

func (l lexicon) score(lowered string) float64 {
	return l.normalize(l.hits(lowered))
}
