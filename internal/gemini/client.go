// Package gemini talks to the hosted Gemini model that plays the Python
// interpreter and the tutor.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey is returned by Generate when no API key was configured
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is empty")

// Generator sends a single text prompt and returns the model's text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is a Generator backed by the Gemini API. One client is shared by
// every request.
type Client struct {
	cl      *genai.Client
	model   string
	timeout time.Duration
}

// NewClient connects to Gemini. An empty apiKey still returns a usable
// client whose calls fail with ErrMissingAPIKey, so the app can start and
// show its connection error messages. timeout <= 0 means no deadline
// beyond the caller's context.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	c := &Client{model: model, timeout: timeout}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return c, nil
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	c.cl = cl
	return c, nil
}

// Model returns the configured model name
func (c *Client) Model() string { return c.model }

// Close releases the underlying connection
func (c *Client) Close() error {
	if c.cl == nil {
		return nil
	}
	return c.cl.Close()
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cl == nil {
		return "", ErrMissingAPIKey
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	m := c.cl.GenerativeModel(c.model)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return firstText(resp), nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
