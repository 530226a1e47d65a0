package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-finder/internal/analyze"
	"token-finder/internal/params"
	"token-finder/internal/rank"
	"token-finder/internal/store"
	"token-finder/internal/suggest"
	"token-finder/internal/types"
)

type stubLLM struct{ reply string }

func (s *stubLLM) Chat(ctx context.Context, system, user string) (string, error) {
	return s.reply, nil
}

type stubSearch struct{ casts []types.Cast }

func (s *stubSearch) Search(ctx context.Context, p types.SearchParams) ([]types.Cast, error) {
	return s.casts, nil
}

func newTestServer(t *testing.T, casts []types.Cast) (*Server, *store.RequestStore) {
	t.Helper()
	cfg := store.DefaultConfig()

	requests, err := store.OpenRequestStore(filepath.Join(t.TempDir(), "requests.db"))
	require.NoError(t, err)
	t.Cleanup(func() { requests.Close() })

	model := &stubLLM{reply: `{"keywords":["memecoin"],"count":2}`}
	orchestrator := analyze.NewOrchestrator(
		params.NewExtractor(model, cfg),
		requests,
		&stubSearch{casts: casts},
		rank.NewRanker(cfg),
		suggest.NewSuggester(&stubLLM{reply: "try memecoins"}),
		cfg,
	)
	return New(orchestrator), requests
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpoint(t *testing.T) {
	s, _ := newTestServer(t, []types.Cast{
		{ID: "c1", Text: "the $SOCIAL memecoin", Engagement: types.EngagementCounts{Reactions: 10}},
	})

	rec := doJSON(t, s, http.MethodPost, "/api/analyze",
		`{"query":"find me memecoins","wallet_address":"0xabc"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var outcome types.AnalysisOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.Equal(t, "Query processed successfully.", outcome.Message)
	assert.Equal(t, "SOCIAL", outcome.FirstTicker)
	require.Len(t, outcome.Results, 1)
}

func TestAnalyzeMissingFields(t *testing.T) {
	s, requests := newTestServer(t, nil)

	for _, body := range []string{
		`{"query":"memecoins"}`,
		`{"wallet_address":"0xabc"}`,
		`{}`,
		`not json`,
	} {
		rec := doJSON(t, s, http.MethodPost, "/api/analyze", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
		assert.Contains(t, rec.Body.String(), "error")
	}

	// Rejected requests never touch the store.
	all, err := requests.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRescanEndpoint(t *testing.T) {
	s, requests := newTestServer(t, []types.Cast{
		{ID: "c1", Text: "memecoin talk", Engagement: types.EngagementCounts{Reactions: 5}},
	})

	seed := types.AnalyzeRequest{WalletAddress: "0xabc", Count: 2, Text: "memecoin", Prompt: "memecoins"}
	require.NoError(t, requests.Upsert(context.Background(), seed))

	rec := doJSON(t, s, http.MethodGet, "/api/wallet/0xabc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var outcome types.AnalysisOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	require.Len(t, outcome.Results, 1)
}

func TestRescanUnknownWallet(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/wallet/0xdead", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserEndpoint(t *testing.T) {
	s, requests := newTestServer(t, nil)

	seed := types.AnalyzeRequest{
		WalletAddress: "0xabc",
		Count:         3,
		Text:          "social coin",
		Engagement:    types.EngagementRecasts,
		Prompt:        "social coins",
	}
	require.NoError(t, requests.Upsert(context.Background(), seed))

	rec := doJSON(t, s, http.MethodGet, "/api/user/0xabc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got types.AnalyzeRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, seed, got)
}

func TestUserMalformedAddress(t *testing.T) {
	s, _ := newTestServer(t, nil)

	for _, addr := range []string{"abc", "0x", "0xzz", "1xabc"} {
		rec := doJSON(t, s, http.MethodGet, "/api/user/"+addr, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "addr: %s", addr)
	}
}

func TestUserUnknownWallet(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/user/0xdead", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
