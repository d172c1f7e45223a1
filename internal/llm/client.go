package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the provider answers without any text
var ErrEmptyResponse = errors.New("empty response from model")

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateStructured generates JSON constrained by the request's schema
	GenerateStructured(ctx context.Context, req StructuredRequest, tier ModelTier) (*Response, error)
	// Chat sends one conversational turn on top of a caller-supplied history
	Chat(ctx context.Context, req ChatRequest, tier ModelTier) (*Response, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// StructuredRequest is a prompt plus the JSON Schema the answer must follow.
// A nil Schema still requests JSON output, just without a declared shape.
// Search grounds the answer in Google Search results; the provider then
// reports the pages it used as citations.
type StructuredRequest struct {
	Prompt string
	Schema []byte
	Search bool
}

// Role identifies the author of a chat turn
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is a single turn of conversation history
type Message struct {
	Role Role
	Text string
}

// ChatRequest carries the full conversation state; the provider keeps none between calls
type ChatRequest struct {
	SystemInstruction string
	History           []Message
	Message           string
}

// Response is the generated text plus any citations reported by the provider
type Response struct {
	Text      string
	Citations []Citation
}

// Citation is a source the provider attributed part of the answer to:
// a search result it grounded on or a page it recited from
type Citation struct {
	URI     string `json:"uri"`
	Title   string `json:"title,omitempty"`
	License string `json:"license,omitempty"`
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
	models *genai.Models
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		models: client.Models,
		config: config,
	}, nil
}

// GenerateStructured generates JSON content using the specified model tier
func (c *GeminiClient) GenerateStructured(ctx context.Context, req StructuredRequest, tier ModelTier) (*Response, error) {
	model, err := c.model(tier)
	if err != nil {
		return nil, err
	}

	genConfig, err := structuredConfig(req, c.config.StructuredTemperature)
	if err != nil {
		return nil, err
	}

	resp, err := c.models.GenerateContent(ctx, model, genai.Text(req.Prompt), genConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	out, err := extractResponse(resp)
	if err != nil {
		return nil, err
	}

	// Clean any markdown code block wrappers
	out.Text = CleanJSONBlock(out.Text)
	return out, nil
}

// structuredConfig builds the generation config for a structured request.
// Gemini rejects a JSON response type alongside tools, so grounded requests
// carry the shape in the prompt only and rely on the caller's validation.
func structuredConfig(req StructuredRequest, temperature float32) (*genai.GenerateContentConfig, error) {
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}
	if req.Search {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
		return cfg, nil
	}

	cfg.ResponseMIMEType = "application/json"
	if len(req.Schema) > 0 {
		schema, err := SchemaFromJSON(req.Schema)
		if err != nil {
			return nil, fmt.Errorf("failed to convert response schema: %w", err)
		}
		cfg.ResponseSchema = schema
	}
	return cfg, nil
}

// Chat sends the next user message with the supplied history and system instruction
func (c *GeminiClient) Chat(ctx context.Context, req ChatRequest, tier ModelTier) (*Response, error) {
	model, err := c.model(tier)
	if err != nil {
		return nil, err
	}

	temperature := c.config.ChatTemperature
	genConfig := &genai.GenerateContentConfig{Temperature: &temperature}
	if req.SystemInstruction != "" {
		genConfig.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}}
	}

	resp, err := c.models.GenerateContent(ctx, model, chatContents(req), genConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to send chat message: %w", err)
	}

	return extractResponse(resp)
}

// chatContents flattens the history and the new message into one request
func chatContents(req ChatRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, msg := range req.History {
		contents = append(contents, &genai.Content{
			Role:  string(msg.Role),
			Parts: []*genai.Part{{Text: msg.Text}},
		})
	}
	return append(contents, &genai.Content{
		Role:  string(RoleUser),
		Parts: []*genai.Part{{Text: req.Message}},
	})
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the underlying HTTP client holds no per-client resources
func (c *GeminiClient) Close() error {
	return nil
}

func (c *GeminiClient) model(tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}
	return modelName, nil
}

// extractResponse extracts text and sources from a Gemini API response.
// Search grounding chunks come first, then recitation citations; duplicates are dropped.
func extractResponse(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, fmt.Errorf("no candidates in response: %w", ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no content in response: %w", ErrEmptyResponse)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		parts = append(parts, part.Text)
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("no text parts in response: %w", ErrEmptyResponse)
	}

	out := &Response{Text: strings.Join(parts, "")}
	seen := make(map[string]bool)
	add := func(c Citation) {
		if c.URI == "" || seen[c.URI] {
			return
		}
		seen[c.URI] = true
		out.Citations = append(out.Citations, c)
	}

	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			add(Citation{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}
	if candidate.CitationMetadata != nil {
		for _, src := range candidate.CitationMetadata.Citations {
			if src == nil {
				continue
			}
			add(Citation{URI: src.URI, Title: src.Title, License: src.License})
		}
	}

	return out, nil
}
