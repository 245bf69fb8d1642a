// Package steps defines the five-stage content pipeline: research, strategy,
// drafting, LinkedIn optimization and final review.
package steps

import (
	"fmt"

	"github.com/jonathan/content-agent/internal/llm"
	"github.com/jonathan/content-agent/internal/pipeline"
	"github.com/jonathan/content-agent/internal/prompts"
	"github.com/jonathan/content-agent/internal/tools"
)

// Stage names.
const (
	Research             = "ResearchAgent"
	Strategy             = "StrategyAgent"
	ContentGenerator     = "ContentGeneratorAgent"
	LinkedInOptimization = "LinkedInOptimizationAgent"
	Review               = "ReviewAgent"
)

// Context keys written by the stages.
const (
	KeyResearchFindings  = "research_findings"
	KeyContentStrategy   = "content_strategy"
	KeyGeneratedContent  = "generated_content"
	KeyOptimizedLinkedIn = "optimized_linkedin"
	KeyFinalContent      = "final_content"
)

// Stage categories.
const (
	CategoryResearch     = "research"
	CategoryStrategy     = "strategy"
	CategoryGeneration   = "generation"
	CategoryOptimization = "optimization"
	CategoryReview       = "review"
)

// PipelineName identifies the pipeline in sessions and stage-run records.
const PipelineName = "ScientificContentAgent"

type definition struct {
	name      string
	category  string
	prompt    string
	inputs    []string
	tools     []string
	outputKey string
	tier      llm.ModelTier
}

var definitions = []definition{
	{
		name:      Research,
		category:  CategoryResearch,
		prompt:    "research",
		tools:     []string{tools.SearchPapers, tools.ExtractKeyFindings},
		outputKey: KeyResearchFindings,
		tier:      llm.TierStandard,
	},
	{
		name:      Strategy,
		category:  CategoryStrategy,
		prompt:    "strategy",
		inputs:    []string{KeyResearchFindings},
		outputKey: KeyContentStrategy,
		tier:      llm.TierStandard,
	},
	{
		name:      ContentGenerator,
		category:  CategoryGeneration,
		prompt:    "content-generation",
		inputs:    []string{KeyResearchFindings, KeyContentStrategy},
		tools:     []string{tools.FormatForPlatform},
		outputKey: KeyGeneratedContent,
		tier:      llm.TierAdvanced,
	},
	{
		name:      LinkedInOptimization,
		category:  CategoryOptimization,
		prompt:    "linkedin-optimization",
		inputs:    []string{KeyResearchFindings, KeyContentStrategy, KeyGeneratedContent},
		tools:     []string{tools.GenerateSEOKeywords, tools.CreateEngagementHooks, tools.SearchIndustryTrends},
		outputKey: KeyOptimizedLinkedIn,
		tier:      llm.TierStandard,
	},
	{
		name:      Review,
		category:  CategoryReview,
		prompt:    "review",
		inputs:    []string{KeyResearchFindings, KeyGeneratedContent, KeyOptimizedLinkedIn},
		tools:     []string{tools.GenerateCitations, tools.AnalyzeContent},
		outputKey: KeyFinalContent,
		tier:      llm.TierAdvanced,
	},
}

// ContentStages returns the content pipeline with instructions loaded from
// the embedded prompts.
func ContentStages() []pipeline.Stage {
	stages := make([]pipeline.Stage, 0, len(definitions))
	for _, d := range definitions {
		stages = append(stages, pipeline.Stage{
			Name:        d.name,
			Category:    d.category,
			Inputs:      append([]string(nil), d.inputs...),
			Instruction: prompts.MustGet(prompts.StagesFile, d.prompt),
			Tools:       append([]string(nil), d.tools...),
			OutputKey:   d.outputKey,
			Tier:        d.tier,
		})
	}
	return stages
}

// Names returns the stage names in execution order.
func Names() []string {
	names := make([]string, 0, len(definitions))
	for _, d := range definitions {
		names = append(names, d.name)
	}
	return names
}

// OutputKeys returns the context keys in the order they are written.
func OutputKeys() []string {
	keys := make([]string, 0, len(definitions))
	for _, d := range definitions {
		keys = append(keys, d.outputKey)
	}
	return keys
}

// Dependencies returns the names of the stages whose outputs the named stage reads.
func Dependencies(name string) ([]string, error) {
	producers := make(map[string]string, len(definitions))
	for _, d := range definitions {
		if d.name == name {
			deps := make([]string, 0, len(d.inputs))
			for _, in := range d.inputs {
				deps = append(deps, producers[in])
			}
			return deps, nil
		}
		producers[d.outputKey] = d.name
	}
	return nil, fmt.Errorf("unknown stage: %s", name)
}
