package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/commentflow-api/internal/config"
	"github.com/commentflow-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const systemPrompt = `You write brief, genuinely helpful replies to social posts.
You casually mention the brand only when it solves the poster's problem.
Never sound like an advertisement. Match the platform's register.`

// Client implements service.Generator against the OpenAI chat completions API
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	log        zerolog.Logger
}

// New creates a text-generation client
func New(cfg config.AIConfig, log zerolog.Logger) *Client {
	return &Client{
		apiKey:     cfg.OpenAIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "openai",
			Interval: 60 * time.Second,
			Timeout:  60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
		log: log.With().Str("component", "ai").Logger(),
	}
}

// GenerateComment produces a reply draft for one post. An empty completion is
// returned as an empty string, not an error; the caller decides what that means.
func (c *Client) GenerateComment(ctx context.Context, gc service.GenerationContext) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai: api key not configured")
	}

	messages := []map[string]string{
		{"role": "system", "content": systemPrompt},
		{"role": "user", "content": buildPrompt(gc)},
	}
	reqBody := map[string]interface{}{
		"model":       c.model,
		"messages":    messages,
		"temperature": 0.8,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			"https://api.openai.com/v1/chat/completions", bytes.NewBuffer(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("openai api error: status %d", resp.StatusCode)
		}
		return body, nil
	})
	if err != nil {
		return "", err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(result.([]byte), &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func buildPrompt(gc service.GenerationContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Platform: %s\n", gc.Platform)
	if gc.Subreddit != "" {
		fmt.Fprintf(&b, "Subreddit: r/%s\n", gc.Subreddit)
	}
	fmt.Fprintf(&b, "Post title: %s\n", gc.PostTitle)
	if gc.PostBody != "" {
		fmt.Fprintf(&b, "Post body: %s\n", gc.PostBody)
	}
	fmt.Fprintf(&b, "\nBrand: %s\nProduct: %s\nTone: %s\n", gc.BrandName, gc.ProductDescription, gc.Tone)
	b.WriteString("\nWrite the reply only, no preamble.")
	return b.String()
}
