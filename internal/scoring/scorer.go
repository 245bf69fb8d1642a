// Package scoring rates content for how well it attracts professional opportunities.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/content-agent/internal/types"
)

// MinContentLength is the shortest text Score accepts.
const MinContentLength = 100

// expansionThreshold is the length under which an expansion suggestion is added.
const expansionThreshold = 300

// DefaultTargetRole is used when no role is given.
const DefaultTargetRole = "AI Consultant"

// ErrInputTooShort is returned when the content is below MinContentLength.
var ErrInputTooShort = errors.New("Content too short for meaningful analysis (minimum 100 characters)") //nolint:staticcheck // surfaced verbatim to the model

// weights of each dimension in the overall opportunity score.
const (
	weightSEO        = 0.30
	weightEngagement = 0.30
	weightValue      = 0.25
	weightPortfolio  = 0.15
)

// Score analyzes text and returns its opportunity breakdown.
func Score(text, targetRole string) (*types.ScoreBreakdown, error) {
	if utf8.RuneCountInString(text) < MinContentLength {
		return nil, ErrInputTooShort
	}
	if strings.TrimSpace(targetRole) == "" {
		targetRole = DefaultTargetRole
	}

	lower := strings.ToLower(text)

	seo := seoLexicon.score(lower)
	engagement := engagementLexicon.score(lower)
	value := valueLexicon.score(lower)
	portfolioHits := portfolioLexicon.hits(lower)
	portfolio := portfolioLexicon.normalize(portfolioHits)

	opportunity := Combine(seo, engagement, value, portfolio)

	var suggestions []string
	if seo < 50 {
		suggestions = append(suggestions, fmt.Sprintf("Add more %s keywords and technical terms for better visibility", targetRole))
	}
	if engagement < 50 {
		suggestions = append(suggestions, "Include stronger calls-to-action and questions to invite connections")
	}
	if value < 50 {
		suggestions = append(suggestions, "Emphasize business value and practical impact over pure theory")
	}
	if portfolioHits == 0 {
		suggestions = append(suggestions, "Mention your projects or portfolio to demonstrate hands-on expertise")
	}
	if utf8.RuneCountInString(text) < expansionThreshold {
		suggestions = append(suggestions, "Consider expanding content for better engagement (aim for 300+ words)")
	}
	if len(suggestions) == 0 {
		suggestions = []string{"Content looks great for opportunities!"}
	}

	return &types.ScoreBreakdown{
		Opportunity: opportunity,
		SEO:         int(seo),
		Engagement:  int(engagement),
		Value:       int(value),
		Portfolio:   int(portfolio),
		Suggestions: suggestions,
		Grade:       GradeFor(opportunity),
	}, nil
}

// Combine weights the four dimension scores into a rounded 0-100 opportunity score.
func Combine(seo, engagement, value, portfolio float64) int {
	total := seo*weightSEO + engagement*weightEngagement + value*weightValue + portfolio*weightPortfolio
	score := int(math.Round(total))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// GradeFor maps an opportunity score to a grade. Lower bounds are inclusive:
// 80 and above is Excellent, 60 through 79 is Good.
func GradeFor(score int) types.Grade {
	switch {
	case score >= 80:
		return types.GradeExcellent
	case score >= 60:
		return types.GradeGood
	default:
		return types.GradeNeedsImprovement
	}
}
