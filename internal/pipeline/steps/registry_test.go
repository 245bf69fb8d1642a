package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/content-agent/internal/llm"
	"github.com/jonathan/content-agent/internal/pipeline"
	"github.com/jonathan/content-agent/internal/research"
	"github.com/jonathan/content-agent/internal/tools"
)

func TestContentStages(t *testing.T) {
	stages := ContentStages()
	require.Len(t, stages, 5)

	assert.Equal(t, []string{Research, Strategy, ContentGenerator, LinkedInOptimization, Review}, Names())
	assert.Equal(t, []string{
		"research_findings", "content_strategy", "generated_content", "optimized_linkedin", "final_content",
	}, OutputKeys())

	for _, s := range stages {
		assert.NotEmpty(t, s.Instruction, s.Name)
		assert.NotEmpty(t, s.Category, s.Name)
		assert.ElementsMatch(t, s.Inputs, s.Placeholders(), "placeholders of %s", s.Name)
	}
}

func TestContentStages_Tools(t *testing.T) {
	want := map[string][]string{
		Research:             {tools.SearchPapers, tools.ExtractKeyFindings},
		Strategy:             nil,
		ContentGenerator:     {tools.FormatForPlatform},
		LinkedInOptimization: {tools.GenerateSEOKeywords, tools.CreateEngagementHooks, tools.SearchIndustryTrends},
		Review:               {tools.GenerateCitations, tools.AnalyzeContent},
	}
	for _, s := range ContentStages() {
		if want[s.Name] == nil {
			assert.Empty(t, s.Tools, s.Name)
			continue
		}
		assert.Equal(t, want[s.Name], s.Tools, s.Name)
	}
}

func TestContentStages_ValidPipeline(t *testing.T) {
	registry := tools.NewDefaultRegistry(research.NewArxivSearcher(nil), tools.DefaultDefaults())
	oracle := llm.OracleFunc(nil)

	_, err := pipeline.New(ContentStages(), oracle, pipeline.WithTools(registry))
	assert.NoError(t, err)
}

func TestDependencies(t *testing.T) {
	tests := []struct {
		stage string
		want  []string
	}{
		{Research, []string{}},
		{Strategy, []string{Research}},
		{Review, []string{Research, ContentGenerator, LinkedInOptimization}},
	}
	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			got, err := Dependencies(tt.stage)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Dependencies("unknown")
	assert.EqualError(t, err, "unknown stage: unknown")
}
