// Package llm provides centralized LLM configuration and the client used to reach the generation service.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short rewrites such as resume tip refinement
	TierLite ModelTier = "lite"
	// TierStandard is for lead discovery and conversation
	TierStandard ModelTier = "standard"
	// TierAdvanced is for the deep job analysis
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

const (
	defaultStructuredTemperature float32 = 0.1
	defaultChatTemperature       float32 = 0.7
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string

	// StructuredTemperature applies to schema-constrained JSON generation
	StructuredTemperature float32
	// ChatTemperature applies to conversational turns
	ChatTemperature float32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		StructuredTemperature: defaultStructuredTemperature,
		ChatTemperature:       defaultChatTemperature,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok && model != "" {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok && model != "" {
		return model
	}
	if model, ok := c.Models[TierLite]; ok && model != "" {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:              c.Provider,
		Models:                make(map[ModelTier]string, len(c.Models)+1),
		StructuredTemperature: c.StructuredTemperature,
		ChatTemperature:       c.ChatTemperature,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}

// WithModels returns a copy with every non-empty override applied
func (c *Config) WithModels(overrides map[ModelTier]string) *Config {
	out := c.WithModel(TierStandard, c.Models[TierStandard])
	for tier, model := range overrides {
		if model != "" {
			out.Models[tier] = model
		}
	}
	return out
}
