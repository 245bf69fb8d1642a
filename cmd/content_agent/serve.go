package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/content-agent/internal/config"
	"github.com/jonathan/content-agent/internal/db"
	"github.com/jonathan/content-agent/internal/server"
	"github.com/jonathan/content-agent/internal/server/ratelimit"
	"github.com/jonathan/content-agent/internal/tools"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes content generation over REST and SSE.
Sessions, users and stage records are stored in PostgreSQL (DATABASE_URL).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := *appConfig
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = database.Close() }()
	if err := database.Migrate(ctx); err != nil {
		return err
	}

	prof, err := loadProfile(&cfg)
	if err != nil {
		return err
	}
	generator, cleanup, err := newGenerationService(ctx, &cfg, appLog, database, prof)
	if err != nil {
		return err
	}
	defer cleanup()

	searcher, closeSearcher, err := newSearcher(ctx, &cfg, appLog)
	if err != nil {
		return err
	}
	defer closeSearcher()

	srv, err := server.New(server.Config{
		Port:            cfg.Server.Port,
		AllowedOrigin:   cfg.Server.AllowedOrigin,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		OutputDir:       cfg.OutputDir,
		RateLimit:       ratelimit.LoadConfig(cfg.Server.RateLimit, cfg.Server.RateBurst),
	}, server.Deps{
		Generator: generator,
		Sessions:  database,
		Users:     database,
		StageRuns: database,
		Tools:     tools.NewDefaultRegistry(searcher, toolDefaults(&cfg, prof)),
		JWT:       jwtConfig,
		Passwords: passwordConfig,
		Logger:    appLog,
		Health:    database.Ping,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}
