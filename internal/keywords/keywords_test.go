package keywords

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSEOKeywords(t *testing.T) {
	tests := []struct {
		name      string
		topic     string
		role      string
		primary   []string
		technical []string
		combined  []string
		total     int
	}{
		{
			name:      "engineer with language and agent topic",
			topic:     "Multi-agent language models",
			role:      "ML Engineer",
			primary:   []string{"ML Engineer", "AI Engineer"},
			technical: []string{"NLP", "LLM", "Transformers", "AI Agents", "Multi-Agent Systems"},
			combined: []string{
				"ML Engineer | NLP",
				"Expert in NLP and LLM",
				"AI Development | Model Deployment",
			},
			total: 15,
		},
		{
			name:      "default role and unmatched topic",
			topic:     "Quantum chemistry",
			role:      "",
			primary:   []string{"AI Consultant", "ML Consultant"},
			technical: []string{"Machine Learning", "Artificial Intelligence", "Python"},
			combined: []string{
				"AI Consultant | Machine Learning",
				"Expert in Machine Learning and Artificial Intelligence",
				"AI Development | Model Deployment",
			},
			total: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SEOKeywords(tt.topic, tt.role)
			assert.Equal(t, tt.primary, got.Primary)
			assert.Equal(t, tt.technical, got.Technical)
			assert.Equal(t, tt.combined, got.Combined)
			assert.Equal(t, tt.total, got.Total)
			assert.Equal(t, []string{"AI Development", "Model Deployment", "MLOps", "Production ML", "Algorithm Design"}, got.Action)
		})
	}
}

func TestSEOKeywords_SingleTechnicalTerm(t *testing.T) {
	got := SEOKeywords("x", "Data Architect")
	require.NotEmpty(t, got.Technical)
	for _, list := range [][]string{got.Primary, got.Technical, got.Action} {
		assert.LessOrEqual(t, len(list), maxKeywords)
	}
	assert.Equal(t, "Data Architect", got.Primary[0])
}

func TestEngagementHooks(t *testing.T) {
	t.Run("known goal is case-insensitive", func(t *testing.T) {
		got := EngagementHooks("RAG", "Discussion")
		assert.Equal(t, GoalDiscussion, got.Goal)
		assert.Equal(t, "Hot take on RAG:", got.OpeningHooks[0])
		assert.Equal(t, "What's your take on this? Agree or disagree? Let's discuss in the comments!", got.ClosingCTAs[0])
	})

	t.Run("unknown goal falls back", func(t *testing.T) {
		got := EngagementHooks("RAG", "fame")
		assert.Equal(t, Goal("fame"), got.Goal)
		assert.Equal(t, "Deep dive into RAG based on hands-on experience:", got.OpeningHooks[0])
		assert.Equal(t, "Need help with your RAG project? DM me to explore collaboration.", got.ClosingCTAs[1])
	})

	t.Run("lists are capped and filled", func(t *testing.T) {
		got := EngagementHooks("Vector Search", "visibility")
		for _, list := range [][]string{got.OpeningHooks, got.ClosingCTAs, got.DiscussionQuestions, got.PortfolioPrompts} {
			assert.Len(t, list, 3)
			for _, s := range list {
				assert.NotContains(t, s, "{topic}")
			}
		}
		assert.Equal(t, "Which aspect of Vector Search should I cover next?", got.DiscussionQuestions[2])
		assert.Equal(t, "My open-source work on Vector Search taught me...", got.PortfolioPrompts[2])
	})
}

func TestIndustryTrends(t *testing.T) {
	got := IndustryTrends("NLP and LLM", "Europe", 2)
	assert.Equal(t, "Europe", got.Region)
	assert.Equal(t, []string{"Transformers", "LangChain", "OpenAI API", "LlamaIndex", "Vector Databases"}, got.HotSkills)
	require.Len(t, got.Trends, 2)
	assert.Equal(t, "Growing demand for NLP and LLM expertise in Europe", got.Trends[0])
	assert.Len(t, got.PainPoints, 2)
}

func TestIndustryTrends_Defaults(t *testing.T) {
	got := IndustryTrends("Robotics", "", 0)
	assert.Equal(t, DefaultRegion, got.Region)
	assert.Equal(t, []string{"Python", "PyTorch", "Cloud Platforms", "API Development"}, got.HotSkills)
	assert.Len(t, got.Trends, 5)
	assert.True(t, strings.HasSuffix(got.PainPoints[4], "Robotics systems in production"))
}

func TestToMap(t *testing.T) {
	assert.Equal(t, 12, SEOKeywords("Quantum chemistry", "").ToMap()["total_keywords"])
	assert.Equal(t, "credibility", EngagementHooks("x", "credibility").ToMap()["goal"])
	assert.Equal(t, "global", IndustryTrends("x", "", 1).ToMap()["region"])
}
