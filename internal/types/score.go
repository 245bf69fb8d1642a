package types

// Grade is the qualitative band of an opportunity score.
type Grade string

// Grade values.
const (
	GradeExcellent        Grade = "Excellent"
	GradeGood             Grade = "Good"
	GradeNeedsImprovement Grade = "Needs Improvement"
)

// ScoreBreakdown is the result of scoring a piece of content for professional opportunity appeal.
type ScoreBreakdown struct {
	Opportunity int      `json:"opportunity_score"`
	SEO         int      `json:"seo_score"`
	Engagement  int      `json:"engagement_score"`
	Value       int      `json:"value_score"`
	Portfolio   int      `json:"portfolio_score"`
	Suggestions []string `json:"suggestions"`
	Grade       Grade    `json:"grade"`
}

// ToMap renders the breakdown as a tool payload.
func (s *ScoreBreakdown) ToMap() map[string]any {
	return map[string]any{
		"opportunity_score": s.Opportunity,
		"seo_score":         s.SEO,
		"engagement_score":  s.Engagement,
		"value_score":       s.Value,
		"portfolio_score":   s.Portfolio,
		"suggestions":       s.Suggestions,
		"grade":             string(s.Grade),
	}
}
