package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-2.5-flash"
	// DefaultTimeout bounds a single generateContent call.
	DefaultTimeout = 90 * time.Second

	jsonMIMEType = "application/json"
)

// ErrEmptyResponse is returned when the response envelope carries no text.
var ErrEmptyResponse = errors.New("gemini api returned empty response")

// Config describes how to reach the Gemini API.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the public endpoint, mostly for proxies and tests.
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	models  modelsAPI
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg Config, logger *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		models:  client.Models,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// GenerateJSON sends the prompt asking for a JSON answer and returns the generated text.
// The call is bounded by the configured timeout and is never retried.
func (g *Generator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: jsonMIMEType,
		Temperature:      genai.Ptr[float32](0),
	}

	started := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	g.logger.Debug("gemini generate content finished", zap.Duration("elapsed", time.Since(started)))

	return responseText(resp)
}

// Model returns the model name requests are sent to.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// responseText returns the text of the first candidate that has any.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}

		var builder strings.Builder
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			builder.WriteString(part.Text)
		}

		if output := strings.TrimSpace(builder.String()); output != "" {
			return output, nil
		}
	}

	return "", ErrEmptyResponse
}
