// Package llm wraps the generative model that writes the portfolio site.
package llm

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash-lite"

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Model    string
	// Temperature is left to the provider default when nil.
	Temperature *float32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Model:    DefaultModel,
	}
}

// WithModel returns a copy of the Config using model. An empty model keeps the current one.
func (c *Config) WithModel(model string) *Config {
	out := *c
	if model != "" {
		out.Model = model
	}
	return &out
}

// WithTemperature returns a copy of the Config with a fixed sampling temperature.
func (c *Config) WithTemperature(t float32) *Config {
	out := *c
	out.Temperature = &t
	return &out
}
