package reason

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/charmbracelet/log"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "claude-sonnet-4-5-20250929"

// ErrEmptyResponse is returned when a completion carries no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// ClientOptions configures the Anthropic-backed Service.
type ClientOptions struct {
	APIKey    string
	Model     string
	MaxTokens int64
	Timeout   time.Duration
}

// Client implements Service against the Anthropic Messages API.
type Client struct {
	api       *anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	logger    *log.Logger
}

// NewClient builds a Client. Zero-valued options fall back to defaults.
func NewClient(opts ClientOptions, logger *log.Logger) *Client {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 8192
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}

	api := anthropic.NewClient(option.WithAPIKey(opts.APIKey))
	return &Client{
		api:       &api,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		timeout:   opts.Timeout,
		logger:    logger,
	}
}

// Complete sends one user message and returns the concatenated text
// blocks of the reply. The request is bounded by the client timeout;
// retrying is the caller's concern.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("completion",
		"model", c.model,
		"attempt", Attempt(ctx),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"duration", time.Since(start))

	return text.String(), nil
}

// ModelID returns the configured model identifier. The cache keys
// responses by model so switching models never replays stale output.
func (c *Client) ModelID() string {
	return c.model
}
