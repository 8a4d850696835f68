// Package llm sends prompts to Google Gemini.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kiassist/kiassist/internal/logging"
)

// DefaultAlias is used when the caller does not pick a model.
const DefaultAlias = "2.5-flash"

const defaultModel = "gemini-2.5-flash"

// models maps the aliases offered in the UI to Gemini model ids.
var models = map[string]string{
	"2.5-flash": "gemini-2.5-flash",
	"2.5-pro":   "gemini-2.5-pro",
	"3-flash":   "gemini-3-flash-preview",
	"3-pro":     "gemini-3-pro-preview",
}

var (
	ErrNoAPIKey      = errors.New("gemini API key is required")
	ErrEmptyResponse = errors.New("no response from Gemini API")
)

// ModelID resolves alias to a Gemini model id. Unknown aliases get the
// default flash model.
func ModelID(alias string) string {
	if id, ok := models[alias]; ok {
		return id
	}
	return defaultModel
}

// Aliases lists the known model aliases.
func Aliases() []string {
	return []string{"2.5-flash", "2.5-pro", "3-flash", "3-pro"}
}

// Sender sends a single prompt and returns the model's text.
type Sender interface {
	Send(ctx context.Context, prompt, alias string) (string, error)
}

// Options configures a Client. BaseURL and HTTPClient are for tests and
// proxies.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the Gemini API.
type Client struct {
	genai  *genai.Client
	logger *zap.Logger
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{genai: client, logger: logging.OrNop(opts.Logger)}, nil
}

// Send generates a single-turn response to prompt.
func (c *Client) Send(ctx context.Context, prompt, alias string) (string, error) {
	model := ModelID(alias)
	c.logger.Debug("sending prompt",
		zap.String("alias", alias),
		zap.String("model", model),
		zap.Int("prompt_len", len(prompt)))

	resp, err := c.genai.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini API error: %w", ErrEmptyResponse)
	}
	return resp.Text(), nil
}

// SenderFunc builds a Sender for apiKey. The facade resolves the key per
// request, so clients are created on demand.
type SenderFunc func(ctx context.Context, apiKey string) (Sender, error)

// NewSenderFunc returns a SenderFunc producing Gemini clients.
func NewSenderFunc(logger *zap.Logger) SenderFunc {
	return func(ctx context.Context, apiKey string) (Sender, error) {
		c, err := NewClient(ctx, Options{APIKey: apiKey, Logger: logger})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
