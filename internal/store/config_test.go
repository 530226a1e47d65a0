package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: "NOOP"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "https://searchcaster.xyz", cfg.Search.BaseURL)
	assert.Equal(t, 8, cfg.Search.TimeoutSeconds)
	assert.Equal(t, 3, cfg.Search.DefaultResults)
	assert.InDelta(t, 0.6, cfg.Scoring.WeightText, 1e-9)
	assert.InDelta(t, 0.4, cfg.Scoring.WeightEngagement, 1e-9)
	require.NotNil(t, cfg.Scoring.ConfidenceThreshold)
	assert.InDelta(t, 0.35, *cfg.Scoring.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 30, cfg.LLM.TimeoutSeconds)
	assert.Equal(t, 2, cfg.Retry.MaxAttempts)
}

func TestLoadConfigExplicitZeroThreshold(t *testing.T) {
	path := writeConfig(t, `
scoring:
  confidence_threshold: 0
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// An explicit 0 means "suggest only on empty results" and must survive
	// default application.
	require.NotNil(t, cfg.Scoring.ConfidenceThreshold)
	assert.Zero(t, *cfg.Scoring.ConfidenceThreshold)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
search:
  timeout_seconds: 3
  max_results_cap: 10
scoring:
  weight_text: 0.7
  weight_engagement: 0.3
llm:
  provider: "OPENAI"
  model: "gpt-4o"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Search.TimeoutSeconds)
	assert.Equal(t, 10, cfg.Search.MaxResultsCap)
	assert.InDelta(t, 0.7, cfg.Scoring.WeightText, 1e-9)
	assert.Equal(t, "OPENAI", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: "GEMINI"
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")
}

func TestLoadConfigRejectsBadThreshold(t *testing.T) {
	path := writeConfig(t, `
scoring:
  weight_text: 0.6
  weight_engagement: 0.4
  confidence_threshold: 1.5
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}
