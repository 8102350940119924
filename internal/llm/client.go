package llm

// #region imports
import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// #endregion

// #region config
// Config holds the settings for the chat-completion service.
type Config struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// DefaultConfig returns the standard settings minus the API key.
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4o-mini",
		BaseURL:     "https://api.openai.com/v1",
		Temperature: 0.7,
		MaxTokens:   300,
	}
}

// #endregion config

// #region wire-types

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// #endregion wire-types

// #region client
// Client calls an OpenAI-compatible chat-completion endpoint. A client
// without an API key is disabled, which is a normal operating mode.
type Client struct {
	config Config
	c      *http.Client
}

// NewClient creates a client from config.
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		c:      &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithHTTP creates a client with an injected http.Client.
// Used for testing against httptest servers.
func NewClientWithHTTP(config Config, c *http.Client) *Client {
	return &Client{config: config, c: c}
}

// Enabled reports whether the capability is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.config.APIKey != ""
}

// #endregion client

// #region complete

// Complete sends one user prompt and returns the completion text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("llm client not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.config.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.c.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat completion %s: %s", resp.Status, string(msg))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("chat completion decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}

// #endregion complete
