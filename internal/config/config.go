// Package config loads application configuration from an optional file,
// the environment and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/content-agent/internal/llm"
	"github.com/jonathan/content-agent/internal/platform"
	"github.com/jonathan/content-agent/internal/research"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CONTENT_AGENT_MAX_PAPERS.
const EnvPrefix = "CONTENT_AGENT"

// Config is the full application configuration.
type Config struct {
	APIKey        string   `mapstructure:"api_key"`
	LogMode       string   `mapstructure:"log_mode" validate:"oneof=production development"`
	Platforms     []string `mapstructure:"platforms" validate:"min=1"`
	MaxPapers     int      `mapstructure:"max_papers" validate:"min=1,max=50"`
	CitationStyle string   `mapstructure:"citation_style" validate:"oneof=apa mla chicago"`
	ProfilePath   string   `mapstructure:"profile_path"`
	SessionsPath  string   `mapstructure:"sessions_path"`
	OutputDir     string   `mapstructure:"output_dir"`
	DatabaseURL   string   `mapstructure:"database_url"`
	RedisURL      string   `mapstructure:"redis_url"`

	Model  ModelConfig  `mapstructure:"model"`
	Retry  RetryConfig  `mapstructure:"retry"`
	Search SearchConfig `mapstructure:"search"`
	Server ServerConfig `mapstructure:"server"`
}

// ModelConfig selects the provider and a model per tier.
type ModelConfig struct {
	Provider      string  `mapstructure:"provider" validate:"oneof=gemini"`
	Lite          string  `mapstructure:"lite"`
	Standard      string  `mapstructure:"standard" validate:"required"`
	Advanced      string  `mapstructure:"advanced"`
	Temperature   float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxToolRounds int     `mapstructure:"max_tool_rounds" validate:"gte=0"`
}

// RetryConfig controls retries of transient model errors.
type RetryConfig struct {
	Attempts     int           `mapstructure:"attempts" validate:"min=1"`
	ExpBase      float64       `mapstructure:"exp_base" validate:"gte=1"`
	InitialDelay time.Duration `mapstructure:"initial_delay" validate:"gte=0"`
	MaxDelay     time.Duration `mapstructure:"max_delay" validate:"gte=0"`
	StatusCodes  []int         `mapstructure:"status_codes" validate:"dive,min=100,max=599"`
}

// SearchConfig configures the paper search backends.
type SearchConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	CX       string        `mapstructure:"cx"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	RateLimit       float64       `mapstructure:"rate_limit" validate:"gt=0"`
	RateBurst       int           `mapstructure:"rate_burst" validate:"min=1"`
	AllowedOrigin   string        `mapstructure:"allowed_origin"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	retry := llm.DefaultRetryConfig()
	models := llm.DefaultConfig()
	return Config{
		LogMode:       "development",
		Platforms:     []string{string(platform.Blog), string(platform.LinkedIn), string(platform.Twitter)},
		MaxPapers:     research.DefaultMaxResults,
		CitationStyle: "apa",
		OutputDir:     "output",
		Model: ModelConfig{
			Provider:      string(llm.ProviderGemini),
			Lite:          models.GetModel(llm.TierLite),
			Standard:      models.GetModel(llm.TierStandard),
			Advanced:      models.GetModel(llm.TierAdvanced),
			Temperature:   llm.DefaultTemperature,
			MaxToolRounds: llm.DefaultMaxToolRounds,
		},
		Retry: RetryConfig{
			Attempts:     retry.Attempts,
			ExpBase:      retry.ExpBase,
			InitialDelay: retry.InitialDelay,
			MaxDelay:     retry.MaxDelay,
			StatusCodes:  retry.StatusCodes,
		},
		Search: SearchConfig{CacheTTL: research.DefaultCacheTTL},
		Server: ServerConfig{
			Port:            8080,
			RateLimit:       2,
			RateBurst:       10,
			AllowedOrigin:   "*",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// bareEnv lists keys that also read conventional unprefixed variables.
var bareEnv = map[string][]string{
	"api_key":        {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
	"database_url":   {"DATABASE_URL"},
	"redis_url":      {"REDIS_URL"},
	"search.api_key": {"GOOGLE_SEARCH_API_KEY"},
	"search.cx":      {"GOOGLE_SEARCH_CX"},
}

// Load reads configFile (when set), then the environment, over Default().
// The file type follows its extension.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range bareEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("api_key", d.APIKey)
	v.SetDefault("log_mode", d.LogMode)
	v.SetDefault("platforms", d.Platforms)
	v.SetDefault("max_papers", d.MaxPapers)
	v.SetDefault("citation_style", d.CitationStyle)
	v.SetDefault("profile_path", d.ProfilePath)
	v.SetDefault("sessions_path", d.SessionsPath)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("redis_url", d.RedisURL)

	v.SetDefault("model.provider", d.Model.Provider)
	v.SetDefault("model.lite", d.Model.Lite)
	v.SetDefault("model.standard", d.Model.Standard)
	v.SetDefault("model.advanced", d.Model.Advanced)
	v.SetDefault("model.temperature", d.Model.Temperature)
	v.SetDefault("model.max_tool_rounds", d.Model.MaxToolRounds)

	v.SetDefault("retry.attempts", d.Retry.Attempts)
	v.SetDefault("retry.exp_base", d.Retry.ExpBase)
	v.SetDefault("retry.initial_delay", d.Retry.InitialDelay)
	v.SetDefault("retry.max_delay", d.Retry.MaxDelay)
	v.SetDefault("retry.status_codes", d.Retry.StatusCodes)

	v.SetDefault("search.api_key", d.Search.APIKey)
	v.SetDefault("search.cx", d.Search.CX)
	v.SetDefault("search.cache_ttl", d.Search.CacheTTL)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.rate_burst", d.Server.RateBurst)
	v.SetDefault("server.allowed_origin", d.Server.AllowedOrigin)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
}

// Validate checks field ranges and that every platform is supported.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' validation", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	for _, p := range c.Platforms {
		if !platform.IsSupported(p) {
			return fmt.Errorf("config error: unsupported platform %q", p)
		}
	}
	return nil
}

// MergeWithDefaults returns a copy with zero-valued fields filled from defaults.
// Bools cannot be told apart from unset, so none are merged.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.LogMode == "" {
		result.LogMode = defaults.LogMode
	}
	if len(result.Platforms) == 0 {
		result.Platforms = defaults.Platforms
	}
	if result.MaxPapers == 0 {
		result.MaxPapers = defaults.MaxPapers
	}
	if result.CitationStyle == "" {
		result.CitationStyle = defaults.CitationStyle
	}
	if result.ProfilePath == "" {
		result.ProfilePath = defaults.ProfilePath
	}
	if result.SessionsPath == "" {
		result.SessionsPath = defaults.SessionsPath
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}

	if result.Model.Standard == "" {
		result.Model = defaults.Model
	}
	if result.Retry.Attempts == 0 {
		result.Retry = defaults.Retry
	}
	if result.Search.CacheTTL == 0 {
		result.Search.CacheTTL = defaults.Search.CacheTTL
	}
	if result.Server.Port == 0 {
		result.Server = defaults.Server
	}

	return result
}

// LLMConfig converts the model and retry sections for the llm package.
func (c *Config) LLMConfig() *llm.Config {
	return &llm.Config{
		Provider: llm.Provider(c.Model.Provider),
		Models: map[llm.ModelTier]string{
			llm.TierLite:     c.Model.Lite,
			llm.TierStandard: c.Model.Standard,
			llm.TierAdvanced: c.Model.Advanced,
		},
		Temperature:   c.Model.Temperature,
		MaxToolRounds: c.Model.MaxToolRounds,
		Retry: llm.RetryConfig{
			Attempts:     c.Retry.Attempts,
			ExpBase:      c.Retry.ExpBase,
			InitialDelay: c.Retry.InitialDelay,
			MaxDelay:     c.Retry.MaxDelay,
			StatusCodes:  append([]int(nil), c.Retry.StatusCodes...),
		},
	}
}
