package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"token-finder/internal/api"
	"token-finder/internal/logger"
	"token-finder/internal/store"
)

// Claude calls the Anthropic messages API.
type Claude struct {
	cfg      *store.Config
	client   *api.Client
	endpoint string
}

func NewClaude(cfg *store.Config) *Claude {
	// default messages endpoint (public Anthropic); override for proxies
	endpoint := "https://api.anthropic.com/v1/messages"
	if ep := os.Getenv("CLAUDE_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &Claude{
		cfg:      cfg,
		client:   api.NewClient(api.WithTimeout(time.Duration(cfg.LLM.TimeoutSeconds) * time.Second)),
		endpoint: endpoint,
	}
}

func (c *Claude) Chat(ctx context.Context, system, user string) (string, error) {
	ctx, span := logger.StartSpan(ctx, "claude-chat")
	defer span.End()

	apiKey := os.Getenv("CLAUDE_API_KEY")
	if apiKey == "" {
		return "", errors.New("CLAUDE_API_KEY missing")
	}

	body := map[string]any{
		"model":      c.cfg.LLM.Model,
		"max_tokens": c.cfg.LLM.MaxTokens,
		"system":     system,
		"messages": []map[string]string{
			{"role": "user", "content": user},
		},
	}

	req := api.NewRequest("POST", c.endpoint).
		WithContext(ctx).
		WithBody(body).
		WithHeader("x-api-key", apiKey).
		WithHeader("anthropic-version", "2023-06-01")

	start := time.Now()
	resp, err := c.client.DoWithRetry(req, retryConfig(c.cfg))
	if err != nil {
		logger.ErrorWithErr(ctx, "Claude request failed", err, "latency_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("claude: %w", err)
	}

	var r struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return "", fmt.Errorf("claude: %w", err)
	}
	if len(r.Content) == 0 {
		return "", errors.New("claude: no content")
	}

	out := strings.TrimSpace(r.Content[0].Text)
	logger.Debug(ctx, "Claude response received", "latency_ms", time.Since(start).Milliseconds(), "length", len(out))
	return out, nil
}
