package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Config configures the Gemini text generator.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string // overrides the API endpoint, used by tests
	Temperature float32
}

// Generator implements usecase.TextGenerator on the Gemini API.
type Generator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
	logger zerolog.Logger
}

// New creates a Generator. It fails without an API key.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1", BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	var genCfg *genai.GenerateContentConfig
	if cfg.Temperature > 0 {
		genCfg = &genai.GenerateContentConfig{Temperature: genai.Ptr(cfg.Temperature)}
	}

	return &Generator{
		client: client,
		model:  cfg.Model,
		config: genCfg,
		logger: logger,
	}, nil
}

// Generate sends prompt to the model and returns its text with Markdown fences removed.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return "", errors.New("gemini: empty response from model")
	}

	g.logger.Debug().
		Str("model", g.model).
		Int("prompt_bytes", len(prompt)).
		Int("reply_bytes", len(raw)).
		Msg("insight text generated")

	return cleanModelText(raw), nil
}

// cleanModelText drops ```json fences the model adds despite instructions.
func cleanModelText(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
