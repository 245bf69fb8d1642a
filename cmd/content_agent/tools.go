package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/content-agent/internal/observability"
	"github.com/jonathan/content-agent/internal/research"
	"github.com/jonathan/content-agent/internal/tools"
	"github.com/jonathan/content-agent/internal/types"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Run the content helpers directly and print their JSON result",
}

var (
	toolContent   string
	toolFile      string
	toolTopic     string
	toolPlatform  string
	toolRole      string
	toolGoal      string
	toolField     string
	toolRegion    string
	toolStyle     string
	toolSources   string
	toolMax       int
	toolShowTable bool
)

// readContent returns --content, or the file named by --file ("-" for stdin).
func readContent(cmd *cobra.Command) (string, error) {
	if toolFile == "" {
		return toolContent, nil
	}
	var (
		data []byte
		err  error
	)
	if toolFile == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(toolFile)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", toolFile, err)
	}
	return string(data), nil
}

func contentFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&toolContent, "content", "", "Text to process")
	cmd.Flags().StringVarP(&toolFile, "file", "f", "", "Read the text from a file, or - for stdin")
}

var toolScoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score content for career opportunity potential",
	RunE: func(cmd *cobra.Command, _ []string) error {
		content, err := readContent(cmd)
		if err != nil {
			return err
		}
		args := map[string]any{"content": content}
		if toolRole != "" {
			args["target_role"] = toolRole
		}
		return runTool(cmd, tools.AnalyzeContent, args)
	},
}

var toolFindingsCmd = &cobra.Command{
	Use:   "findings",
	Short: "Extract key findings from research text",
	RunE: func(cmd *cobra.Command, _ []string) error {
		content, err := readContent(cmd)
		if err != nil {
			return err
		}
		args := map[string]any{"research_text": content}
		if cmd.Flags().Changed("max") {
			args["max_findings"] = toolMax
		}
		return runTool(cmd, tools.ExtractKeyFindings, args)
	},
}

var toolFormatCmd = &cobra.Command{
	Use:   "format",
	Short: "Format content for blog, linkedin or twitter",
	RunE: func(cmd *cobra.Command, _ []string) error {
		content, err := readContent(cmd)
		if err != nil {
			return err
		}
		return runTool(cmd, tools.FormatForPlatform, map[string]any{
			"content":  content,
			"platform": toolPlatform,
			"topic":    toolTopic,
		})
	},
}

var toolCitationsCmd = &cobra.Command{
	Use:   "citations",
	Short: "Format sources from a JSON array as citations",
	Long:  `Reads a JSON array of {"title","authors","link","year"} objects from --sources or --file.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		raw := toolSources
		if toolFile != "" {
			content, err := readContent(cmd)
			if err != nil {
				return err
			}
			raw = content
		}
		var sources []any
		if err := json.Unmarshal([]byte(raw), &sources); err != nil {
			return fmt.Errorf("sources must be a JSON array: %w", err)
		}
		return runTool(cmd, tools.GenerateCitations, map[string]any{"sources": sources, "style": toolStyle})
	},
}

var toolKeywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Suggest SEO keywords for a topic",
	RunE: func(cmd *cobra.Command, _ []string) error {
		args := map[string]any{"topic": toolTopic}
		if toolRole != "" {
			args["role"] = toolRole
		}
		return runTool(cmd, tools.GenerateSEOKeywords, args)
	},
}

var toolHooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Suggest engagement hooks and calls to action",
	RunE: func(cmd *cobra.Command, _ []string) error {
		args := map[string]any{"topic": toolTopic}
		if toolGoal != "" {
			args["goal"] = toolGoal
		}
		return runTool(cmd, tools.CreateEngagementHooks, args)
	},
}

var toolTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "List industry trends and pain points for a field",
	RunE: func(cmd *cobra.Command, _ []string) error {
		args := map[string]any{"field": toolField}
		if toolRegion != "" {
			args["region"] = toolRegion
		}
		if cmd.Flags().Changed("max") {
			args["max_results"] = toolMax
		}
		return runTool(cmd, tools.SearchIndustryTrends, args)
	},
}

var toolPapersCmd = &cobra.Command{
	Use:   "papers",
	Short: "Search arXiv (and web search when configured) for papers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		searcher, closeSearcher, err := newSearcher(cmd.Context(), appConfig, appLog)
		if err != nil {
			return err
		}
		defer closeSearcher()

		limit := appConfig.MaxPapers
		if cmd.Flags().Changed("max") {
			limit = toolMax
		}
		if !toolShowTable {
			return runToolWith(cmd.Context(), cmd.OutOrStdout(), tools.NewDefaultRegistry(searcher, tools.DefaultDefaults()),
				tools.SearchPapers, map[string]any{"topic": toolTopic, "max_results": limit})
		}
		papers, err := searcher.Search(cmd.Context(), toolTopic, limit)
		if err != nil {
			return err
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintPapers(papers)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{toolScoreCmd, toolFindingsCmd, toolFormatCmd} {
		contentFlags(c)
	}
	toolCitationsCmd.Flags().StringVarP(&toolFile, "file", "f", "", "Read the sources from a file, or - for stdin")

	toolScoreCmd.Flags().StringVar(&toolRole, "role", "", "Role the author is positioning for")
	toolKeywordsCmd.Flags().StringVar(&toolRole, "role", "", "Target role")
	toolHooksCmd.Flags().StringVar(&toolGoal, "goal", "", "opportunities, discussion, credibility or visibility")
	toolCitationsCmd.Flags().StringVar(&toolStyle, "style", "apa", "Citation style: apa, mla or chicago")
	toolCitationsCmd.Flags().StringVar(&toolSources, "sources", "", "JSON array of sources")
	toolFormatCmd.Flags().StringVar(&toolPlatform, "platform", "", "blog, linkedin or twitter")
	toolTrendsCmd.Flags().StringVar(&toolField, "field", "", "Field such as machine learning")
	toolTrendsCmd.Flags().StringVar(&toolRegion, "region", "", "Geographic region")
	toolPapersCmd.Flags().BoolVar(&toolShowTable, "pretty", false, "Print papers in a box instead of JSON")

	for _, c := range []*cobra.Command{toolFormatCmd, toolKeywordsCmd, toolHooksCmd, toolPapersCmd} {
		c.Flags().StringVar(&toolTopic, "topic", "", "Topic")
	}
	for _, c := range []*cobra.Command{toolFindingsCmd, toolTrendsCmd, toolPapersCmd} {
		c.Flags().IntVar(&toolMax, "max", 0, "Maximum results")
	}

	toolsCmd.AddCommand(toolScoreCmd, toolFindingsCmd, toolFormatCmd, toolCitationsCmd,
		toolKeywordsCmd, toolHooksCmd, toolTrendsCmd, toolPapersCmd)
	rootCmd.AddCommand(toolsCmd)
}

// runTool invokes an offline tool; search_papers goes through toolPapersCmd.
func runTool(cmd *cobra.Command, name string, args map[string]any) error {
	registry := tools.NewDefaultRegistry(research.NewArxivSearcher(nil), tools.DefaultDefaults())
	return runToolWith(cmd.Context(), cmd.OutOrStdout(), registry, name, args)
}

// runToolWith prints the tool's result as indented JSON. A tool-level
// failure is printed too and also returned as an error.
func runToolWith(ctx context.Context, out io.Writer, registry *tools.Registry, name string, args map[string]any) error {
	for k, v := range args {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			delete(args, k)
		}
	}
	result, err := registry.Invoke(ctx, name, args)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(result.Map(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, _ = fmt.Fprintln(out, string(data))
	if result.Status != types.StatusSuccess {
		return fmt.Errorf("%s: %s", name, result.Message)
	}
	return nil
}
