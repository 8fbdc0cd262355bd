package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Request is one prompt: a fixed system instruction and the user's content.
type Request struct {
	System string
	User   string
	// Timeout bounds the call when positive. Zero leaves the deadline to the caller's context.
	Timeout time.Duration
}

// Client is an abstraction over LLM providers
type Client interface {
	// Generate issues a single blocking call and returns the response text verbatim.
	// Every failure is returned as a *GenerationError.
	Generate(ctx context.Context, req Request) (string, error)
	// Model returns the provider model name used for calls.
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Generate sends the system instruction and user text as two units and returns the reply.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	model := c.client.GenerativeModel(c.config.Model)
	configureModel(model, c.config, req.System)

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return "", classifyError(err)
	}

	return extractTextFromResponse(resp)
}

// Model returns the configured model name
func (c *GeminiClient) Model() string {
	return c.config.Model
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// configureModel applies the system instruction and sampling settings to a model handle.
func configureModel(model *genai.GenerativeModel, config *Config, system string) {
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}
	if config.Temperature != nil {
		model.SetTemperature(*config.Temperature)
	}
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &GenerationError{Kind: KindEmptyResponse, Message: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &GenerationError{Kind: KindEmptyResponse, Message: "no content in response"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	text := strings.Join(parts, "")
	if strings.TrimSpace(text) == "" {
		return "", &GenerationError{Kind: KindEmptyResponse, Message: "no text parts in response"}
	}
	return text, nil
}

var _ Client = (*GeminiClient)(nil)
