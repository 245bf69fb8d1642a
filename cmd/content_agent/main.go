// Package main provides the content_agent CLI: content generation, profile
// and session management, offline tool access and the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/content-agent/internal/config"
	"github.com/jonathan/content-agent/internal/logger"
)

var (
	configPath string
	logMode    string

	// appConfig and appLog are set before any subcommand runs.
	appConfig *config.Config
	appLog    *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "content_agent",
	Short: "Scientific content generation agent",
	Long: `content_agent researches a topic, drafts content for blog, LinkedIn and Twitter,
tailors it to your professional profile and reviews it for credibility.

Configuration is read from --config, CONTENT_AGENT_* environment variables and a .env file.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if appLog != nil {
			appLog.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML, JSON or TOML config file")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "Log format: development or production")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-mode") {
		cfg.LogMode = logMode
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	appConfig = cfg
	appLog = log
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
