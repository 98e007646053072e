package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rising-ai-tgbot-go/internal/config"
	"github.com/rising-ai-tgbot-go/internal/models"
	"github.com/rising-ai-tgbot-go/pkg/logger"
)

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
// Models form an ordered fallback chain: a model that is rate limited
// gets retried with backoff, a model the endpoint rejects outright is
// skipped for the next one in the chain.
type OpenAIClient struct {
	name       string
	baseURL    string
	apiKey     string
	models     []string
	topP       float64
	httpClient *http.Client

	maxRetries int
}

func NewOpenAIClient(ep config.ProviderEndpoint, topP float64) *OpenAIClient {
	return &OpenAIClient{
		name:    ep.Name,
		baseURL: strings.TrimRight(ep.BaseURL, "/"),
		apiKey:  ep.APIKey,
		models:  ep.Models,
		topP:    topP,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		maxRetries: 2,
	}
}

func (c *OpenAIClient) Name() string { return c.name }

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature float64          `json:"temperature"`
	TopP        float64          `json:"top_p,omitempty"`
	Stream      bool             `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete walks the model chain until one model answers.
func (c *OpenAIClient) Complete(ctx context.Context, messages []models.Message, maxTokens int, temperature float64) (string, error) {
	var lastErr error
	for _, model := range c.models {
		reply, err := c.completeModel(ctx, model, messages, maxTokens, temperature)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.WithFields(map[string]interface{}{
			"provider": c.name,
			"model":    model,
		}).Warnf("model failed, trying next in chain: %v", err)
	}
	return "", fmt.Errorf("%s: all models failed: %w", c.name, lastErr)
}

func (c *OpenAIClient) completeModel(ctx context.Context, model string, messages []models.Message, maxTokens int, temperature float64) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff, only for rate limits.
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		reply, status, err := c.doRequest(ctx, model, messages, maxTokens, temperature)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		switch status {
		case http.StatusTooManyRequests:
			continue // retry same model with backoff
		case http.StatusBadRequest, http.StatusNotFound, http.StatusServiceUnavailable:
			return "", err // model rejected, caller moves to the next one
		default:
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", err
		}
	}
	return "", lastErr
}

func (c *OpenAIClient) doRequest(ctx context.Context, model string, messages []models.Message, maxTokens int, temperature float64) (string, int, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        c.topP,
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("%s returned status %d: %s",
			c.name, resp.StatusCode, truncate(string(data), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", resp.StatusCode, fmt.Errorf("%s API error: %s", c.name, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", resp.StatusCode, fmt.Errorf("%s returned no choices", c.name)
	}

	reply := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if reply == "" {
		return "", resp.StatusCode, fmt.Errorf("%s returned an empty reply", c.name)
	}
	return reply, resp.StatusCode, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
