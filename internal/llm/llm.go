package llm

import (
	"context"
	"time"

	"token-finder/internal/api"
	"token-finder/internal/store"
)

// Client is the narrow request/response contract the pipeline has with a
// language model: a fixed instruction plus context in, text out. Both the
// parameter extractor and the suggestion generator run against it, which
// keeps their logic testable with a deterministic stub.
type Client interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// FromConfig returns the provider named by cfg.LLM.Provider.
func FromConfig(cfg *store.Config) Client {
	switch cfg.LLM.Provider {
	case "OPENAI":
		return NewOpenAI(cfg)
	case "CLAUDE":
		return NewClaude(cfg)
	default:
		return NewNoop()
	}
}

func retryConfig(cfg *store.Config) *api.RetryConfig {
	return &api.RetryConfig{
		MaxAttempts: cfg.Retry.MaxAttempts,
		InitialWait: time.Duration(cfg.Retry.InitialWaitMS) * time.Millisecond,
		MaxWait:     time.Duration(cfg.Retry.MaxWaitMS) * time.Millisecond,
	}
}
