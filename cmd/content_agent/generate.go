package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/content-agent/internal/generation"
	"github.com/jonathan/content-agent/internal/observability"
	"github.com/jonathan/content-agent/internal/pipeline"
	"github.com/jonathan/content-agent/internal/scoring"
)

// Defaults used when the corresponding flags are not given.
const (
	DefaultTopic    = "Large Language Models and AI Agents"
	DefaultAudience = "AI researchers and industry professionals"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Research a topic and generate content for each platform",
	Long: `Runs the five-stage pipeline: research, strategy, generation, SEO and review.
The final content is printed and written to <output-dir>/content_<topic>.txt.

Use --session-id to continue an earlier session with its conversation history.`,
	RunE: runGenerate,
}

var (
	genTopic     string
	genPlatforms []string
	genTone      string
	genAudience  string
	genSessionID string
	genMaxPapers int
	genOutputDir string
	genVerbose   bool
)

func init() {
	generateCmd.Flags().StringVarP(&genTopic, "topic", "t", DefaultTopic, "Research topic")
	generateCmd.Flags().StringSliceVarP(&genPlatforms, "platforms", "p", nil, "Target platforms (blog, linkedin, twitter); defaults to config")
	generateCmd.Flags().StringVar(&genTone, "tone", "", "Writing tone (defaults to the profile's content_tone)")
	generateCmd.Flags().StringVar(&genAudience, "audience", DefaultAudience, "Target audience")
	generateCmd.Flags().StringVar(&genSessionID, "session-id", "", "Continue an existing session")
	generateCmd.Flags().IntVar(&genMaxPapers, "max-papers", 0, "Maximum papers to search (overrides config)")
	generateCmd.Flags().StringVarP(&genOutputDir, "output-dir", "o", "", "Directory for the generated file (overrides config)")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print the opportunity score of the result")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg := *appConfig
	if cmd.Flags().Changed("max-papers") {
		cfg.MaxPapers = genMaxPapers
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = genOutputDir
	}
	platforms := cfg.Platforms
	if cmd.Flags().Changed("platforms") {
		platforms = genPlatforms
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	topic := strings.TrimSpace(genTopic)
	if topic == "" {
		return pipeline.ErrEmptyTopic
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prof, err := loadProfile(&cfg)
	if err != nil {
		return err
	}
	store, err := openSessionStore(&cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	svc, cleanup, err := newGenerationService(ctx, &cfg, appLog, store, prof)
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)
	printRunHeader(out, topic, platforms, genSessionID)

	opts := generateOptions(topic, platforms, cfg.OutputDir)
	opts.Observers = []pipeline.Observer{printer}
	resp, err := svc.Run(ctx, opts)
	if err != nil {
		if generation.IsNotFound(err) {
			return fmt.Errorf("%w (list sessions with 'content_agent sessions list')", err)
		}
		return err
	}

	_, _ = fmt.Fprintf(out, "\n%s\n\n", resp.FinalContent)
	printer.PrintSummary(resp)
	if genVerbose {
		if score, err := scoring.Score(resp.FinalContent, prof.TargetRole); err == nil {
			printer.PrintScore(score)
		}
	}
	return nil
}

// generateOptions maps the generate flags onto a run. An empty tone lets the
// run fall back to the profile's tone.
func generateOptions(topic string, platforms []string, outputDir string) generation.Options {
	return generation.Options{
		Topic:     topic,
		Platforms: platforms,
		Tone:      strings.TrimSpace(genTone),
		Audience:  genAudience,
		SessionID: genSessionID,
		OutputDir: outputDir,
	}
}

func printRunHeader(out io.Writer, topic string, platforms []string, sessionID string) {
	_, _ = fmt.Fprintf(out, "Topic:     %s\n", topic)
	_, _ = fmt.Fprintf(out, "Platforms: %s\n", strings.Join(platforms, ", "))
	if sessionID != "" {
		_, _ = fmt.Fprintf(out, "Session:   %s (resumed)\n", sessionID)
	}
	_, _ = fmt.Fprintln(out)
}
