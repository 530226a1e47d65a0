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

// OpenAI calls the OpenAI chat completions API.
type OpenAI struct {
	cfg      *store.Config
	client   *api.Client
	endpoint string
}

func NewOpenAI(cfg *store.Config) *OpenAI {
	// If you use a proxy or compatible gateway, set OPENAI_API_ENDPOINT.
	endpoint := "https://api.openai.com/v1/chat/completions"
	if ep := os.Getenv("OPENAI_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &OpenAI{
		cfg:      cfg,
		client:   api.NewClient(api.WithTimeout(time.Duration(cfg.LLM.TimeoutSeconds) * time.Second)),
		endpoint: endpoint,
	}
}

func (o *OpenAI) Chat(ctx context.Context, system, user string) (string, error) {
	ctx, span := logger.StartSpan(ctx, "openai-chat")
	defer span.End()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", errors.New("OPENAI_API_KEY missing")
	}

	body := map[string]any{
		"model": o.cfg.LLM.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": o.cfg.LLM.Temperature,
		"max_tokens":  o.cfg.LLM.MaxTokens,
	}

	req := api.NewRequest("POST", o.endpoint).
		WithContext(ctx).
		WithBody(body).
		WithHeader("Authorization", "Bearer "+apiKey)

	start := time.Now()
	resp, err := o.client.DoWithRetry(req, retryConfig(o.cfg))
	if err != nil {
		logger.ErrorWithErr(ctx, "OpenAI request failed", err, "latency_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("openai: %w", err)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(r.Choices) == 0 {
		return "", errors.New("openai: no choices")
	}

	out := strings.TrimSpace(r.Choices[0].Message.Content)
	logger.Debug(ctx, "OpenAI response received", "latency_ms", time.Since(start).Milliseconds(), "length", len(out))
	return out, nil
}
