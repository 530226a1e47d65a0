package params

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-finder/internal/store"
	"token-finder/internal/types"
)

type stubLLM struct {
	reply string
	err   error
	calls int
}

func (s *stubLLM) Chat(ctx context.Context, system, user string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestExtractStructuredResponse(t *testing.T) {
	model := &stubLLM{reply: `{"keywords":["memecoin"],"count":5,"engagement":"reactions"}`}
	e := NewExtractor(model, store.DefaultConfig())

	p, err := e.Extract(context.Background(), "find me memecoins with lots of reactions", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"memecoin"}, p.Keywords)
	assert.Equal(t, 5, p.MaxResults)
	assert.Equal(t, types.EngagementReactions, p.Engagement)
	assert.Equal(t, 1, model.calls)
}

func TestExtractInvalidEngagementDegrades(t *testing.T) {
	model := &stubLLM{reply: `{"keywords":["ai coin"],"engagement":"likes"}`}
	e := NewExtractor(model, store.DefaultConfig())

	p, err := e.Extract(context.Background(), "trending ai coins", 0)
	require.NoError(t, err)

	assert.Equal(t, types.EngagementNone, p.Engagement)
}

func TestExtractJSONWrappedInProse(t *testing.T) {
	model := &stubLLM{reply: "Sure! Here you go:\n{\"keywords\":[\"social coin\"]}\nLet me know if you need more."}
	e := NewExtractor(model, store.DefaultConfig())

	p, err := e.Extract(context.Background(), "social coins", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"social coin"}, p.Keywords)
}

func TestExtractLegacyTextKey(t *testing.T) {
	model := &stubLLM{reply: `{"text":"dog themed memecoin"}`}
	e := NewExtractor(model, store.DefaultConfig())

	p, err := e.Extract(context.Background(), "dog coins", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"dog", "themed", "memecoin"}, p.Keywords)
}

func TestExtractEmptyObjectFallsBackToRawQuery(t *testing.T) {
	model := &stubLLM{reply: `{}`}
	cfg := store.DefaultConfig()
	e := NewExtractor(model, cfg)

	p, err := e.Extract(context.Background(), "obscure cat coin", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"obscure cat coin"}, p.Keywords)
	assert.Equal(t, cfg.Search.DefaultResults, p.MaxResults)
}

func TestExtractModelFailure(t *testing.T) {
	model := &stubLLM{err: errors.New("timeout")}
	e := NewExtractor(model, store.DefaultConfig())

	_, err := e.Extract(context.Background(), "memecoins", 0)
	require.Error(t, err)
}

func TestExtractNoJSONInResponse(t *testing.T) {
	model := &stubLLM{reply: "I cannot help with that."}
	e := NewExtractor(model, store.DefaultConfig())

	_, err := e.Extract(context.Background(), "memecoins", 0)
	require.Error(t, err)
}

func TestExtractHintOverridesInferredCount(t *testing.T) {
	model := &stubLLM{reply: `{"keywords":["memecoin"],"count":5}`}
	e := NewExtractor(model, store.DefaultConfig())

	p, err := e.Extract(context.Background(), "memecoins", 10)
	require.NoError(t, err)

	assert.Equal(t, 10, p.MaxResults)
}

func TestExtractCountClampedToCap(t *testing.T) {
	cfg := store.DefaultConfig()
	model := &stubLLM{reply: `{"keywords":["memecoin"],"count":5000}`}
	e := NewExtractor(model, cfg)

	p, err := e.Extract(context.Background(), "memecoins", 0)
	require.NoError(t, err)

	assert.Equal(t, cfg.Search.MaxResultsCap, p.MaxResults)
}
