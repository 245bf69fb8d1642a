package tools

import (
	"context"

	"github.com/jonathan/content-agent/internal/citations"
	"github.com/jonathan/content-agent/internal/findings"
	"github.com/jonathan/content-agent/internal/keywords"
	"github.com/jonathan/content-agent/internal/platform"
	"github.com/jonathan/content-agent/internal/research"
	"github.com/jonathan/content-agent/internal/scoring"
	"github.com/jonathan/content-agent/internal/types"
)

// Built-in tool names.
const (
	SearchPapers          = "search_papers"
	ExtractKeyFindings    = "extract_key_findings"
	FormatForPlatform     = "format_for_platform"
	GenerateCitations     = "generate_citations"
	SearchIndustryTrends  = "search_industry_trends"
	GenerateSEOKeywords   = "generate_seo_keywords"
	CreateEngagementHooks = "create_engagement_hooks"
	AnalyzeContent        = "analyze_content_for_opportunities"
)

// Defaults are the argument values used when the model omits optional ones.
type Defaults struct {
	MaxPapers     int
	CitationStyle string
	TargetRole    string
	Region        string
	Goal          string
}

// DefaultDefaults mirrors the helpers' own defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		MaxPapers:     research.DefaultMaxResults,
		CitationStyle: string(citations.StyleAPA),
		TargetRole:    scoring.DefaultTargetRole,
		Region:        keywords.DefaultRegion,
		Goal:          string(keywords.GoalOpportunities),
	}
}

// NewDefaultRegistry registers every built-in tool. searcher backs search_papers.
func NewDefaultRegistry(searcher research.Searcher, d Defaults) *Registry {
	r := NewRegistry()
	for _, t := range Builtins(searcher, d) {
		r.MustRegister(t)
	}
	return r
}

// Builtins returns the built-in tools.
func Builtins(searcher research.Searcher, d Defaults) []Tool {
	return []Tool{
		{
			Name:        SearchPapers,
			Description: "Search for recent academic papers on a topic. Returns titles, authors, summaries and links.",
			Params: []Param{
				{Name: "topic", Type: TypeString, Description: "Research topic to search for", Required: true},
				{Name: "max_results", Type: TypeInteger, Description: "Maximum number of papers to return"},
			},
			Handler: func(ctx context.Context, a Args) types.ToolResult {
				return research.SearchPapers(ctx, searcher, a.String("topic", ""), a.Int("max_results", d.MaxPapers))
			},
		},
		{
			Name:        ExtractKeyFindings,
			Description: "Extract the most important findings from research text.",
			Params: []Param{
				{Name: "research_text", Type: TypeString, Description: "Raw research text or abstracts", Required: true},
				{Name: "max_findings", Type: TypeInteger, Description: "Maximum number of findings"},
			},
			Handler: func(_ context.Context, a Args) types.ToolResult {
				rep, err := findings.Extract(a.String("research_text", ""), a.Int("max_findings", findings.DefaultMaxFindings))
				if err != nil {
					return types.Failure(err)
				}
				return types.Success(map[string]any{
					"findings": rep.Findings,
					"summary":  rep.Summary,
					"count":    len(rep.Findings),
				})
			},
		},
		{
			Name:        FormatForPlatform,
			Description: "Wrap content in the template for blog, linkedin or twitter and return platform guidelines.",
			Params: []Param{
				{Name: "content", Type: TypeString, Description: "Content to format", Required: true},
				{Name: "platform", Type: TypeString, Description: "One of blog, linkedin, twitter", Required: true},
				{Name: "topic", Type: TypeString, Description: "Topic used in the heading"},
			},
			Handler: func(_ context.Context, a Args) types.ToolResult {
				f, err := platform.Format(a.String("content", ""), a.String("platform", ""), a.String("topic", ""))
				if err != nil {
					return types.Failure(err)
				}
				return types.Success(f.ToMap())
			},
		},
		{
			Name:        GenerateCitations,
			Description: "Format source records as numbered citations in apa, mla or chicago style.",
			Params: []Param{
				{
					Name: "sources", Type: TypeArray, Items: TypeObject, Required: true,
					Description: "Sources with title, authors, link and optional year",
					Properties: []Param{
						{Name: "title", Type: TypeString},
						{Name: "authors", Type: TypeString},
						{Name: "link", Type: TypeString},
						{Name: "year", Type: TypeString},
					},
				},
				{Name: "style", Type: TypeString, Description: "Citation style: apa, mla or chicago"},
			},
			Handler: func(_ context.Context, a Args) types.ToolResult {
				res, err := citations.Format(a.Sources("sources"), a.String("style", d.CitationStyle))
				if err != nil {
					return types.Failure(err)
				}
				return types.Success(map[string]any{
					"citations":     res.Citations,
					"style":         string(res.Style),
					"inline_format": res.InlineFormat,
					"count":         len(res.Citations),
				})
			},
		},
		{
			Name:        SearchIndustryTrends,
			Description: "Return hiring trends, in-demand skills and business pain points for a field.",
			Params: []Param{
				{Name: "field", Type: TypeString, Description: "Field such as machine learning or NLP", Required: true},
				{Name: "region", Type: TypeString, Description: "Geographic region"},
				{Name: "max_results", Type: TypeInteger, Description: "Maximum trends and pain points"},
			},
			Handler: func(_ context.Context, a Args) types.ToolResult {
				rep := keywords.IndustryTrends(a.String("field", ""), a.String("region", d.Region), a.Int("max_results", 5))
				return types.Success(rep.ToMap())
			},
		},
		{
			Name:        GenerateSEOKeywords,
			Description: "Generate recruiter search keywords for a topic and target role.",
			Params: []Param{
				{Name: "topic", Type: TypeString, Description: "Content topic", Required: true},
				{Name: "role", Type: TypeString, Description: "Target role, e.g. AI Consultant"},
			},
			Handler: func(_ context.Context, a Args) types.ToolResult {
				return types.Success(keywords.SEOKeywords(a.String("topic", ""), a.String("role", d.TargetRole)).ToMap())
			},
		},
		{
			Name:        CreateEngagementHooks,
			Description: "Create opening hooks, calls-to-action, questions and portfolio prompts.",
			Params: []Param{
				{Name: "topic", Type: TypeString, Description: "Content topic", Required: true},
				{Name: "goal", Type: TypeString, Description: "opportunities, discussion, credibility or visibility"},
			},
			Handler: func(_ context.Context, a Args) types.ToolResult {
				return types.Success(keywords.EngagementHooks(a.String("topic", ""), a.String("goal", d.Goal)).ToMap())
			},
		},
		{
			Name:        AnalyzeContent,
			Description: "Score content for recruiter appeal and suggest improvements.",
			Params: []Param{
				{Name: "content", Type: TypeString, Description: "Content to analyze", Required: true},
				{Name: "target_role", Type: TypeString, Description: "Role the author is positioning for"},
			},
			Handler: func(_ context.Context, a Args) types.ToolResult {
				score, err := scoring.Score(a.String("content", ""), a.String("target_role", d.TargetRole))
				if err != nil {
					return types.Failure(err)
				}
				return types.Success(score.ToMap())
			},
		},
	}
}
