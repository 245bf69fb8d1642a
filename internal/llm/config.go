// Package llm defines the text-completion oracle the content pipeline talks to,
// its Gemini implementation and the model configuration it runs with.
package llm

import "fmt"

// ModelTier represents the capability level of a model.
type ModelTier string

const (
	// TierLite is for cheap single-shot work such as summarising tool output.
	TierLite ModelTier = "lite"
	// TierStandard is the default for pipeline stages.
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form writing and review.
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider.
type Provider string

// Supported providers.
const (
	ProviderGemini Provider = "gemini"
)

// DefaultModel is the model used for every tier unless configured otherwise.
const DefaultModel = "gemini-2.0-flash"

// DefaultTemperature keeps stage output stable between runs.
const DefaultTemperature float32 = 0.4

// DefaultMaxToolRounds bounds function-calling round trips within one stage.
const DefaultMaxToolRounds = 8

// Config holds the model configuration. It is passed explicitly to clients;
// nothing reads it from package state.
type Config struct {
	Provider      Provider
	Models        map[ModelTier]string
	Temperature   float32
	MaxToolRounds int
	Retry         RetryConfig
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.0-flash-lite",
			TierStandard: DefaultModel,
			TierAdvanced: DefaultModel,
		},
		Temperature:   DefaultTemperature,
		MaxToolRounds: DefaultMaxToolRounds,
		Retry:         DefaultRetryConfig(),
	}
}

// GetModel returns the model name for a tier, falling back to standard then lite.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok && model != "" {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok && model != "" {
		return model
	}
	if model, ok := c.Models[TierLite]; ok && model != "" {
		return model
	}
	return ""
}

// WithModel returns a copy with model set for tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	cp := *c
	cp.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		cp.Models[k] = v
	}
	cp.Models[tier] = model
	cp.Retry.StatusCodes = append([]int(nil), c.Retry.StatusCodes...)
	return &cp
}

// WithAllModels returns a copy using model for every tier.
func (c *Config) WithAllModels(model string) *Config {
	out := c
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		out = out.WithModel(tier, model)
	}
	return out
}

// Validate reports configuration that cannot produce a working client.
func (c *Config) Validate() error {
	if c.Provider != ProviderGemini {
		return fmt.Errorf("unsupported provider: %q", c.Provider)
	}
	if c.GetModel(TierStandard) == "" {
		return fmt.Errorf("no model configured")
	}
	if c.MaxToolRounds < 0 {
		return fmt.Errorf("max tool rounds must not be negative")
	}
	return c.Retry.Validate()
}
