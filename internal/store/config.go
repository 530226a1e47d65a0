package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Search struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		MaxResultsCap  int    `yaml:"max_results_cap"`
		DefaultResults int    `yaml:"default_results"`
	} `yaml:"search"`
	Scoring struct {
		WeightText       float64 `yaml:"weight_text"`
		WeightEngagement float64 `yaml:"weight_engagement"`
		// Pointer so an explicit 0 (suggest only on empty results) is
		// distinguishable from the key being absent.
		ConfidenceThreshold *float64 `yaml:"confidence_threshold"`
		TickerTopN          int      `yaml:"ticker_top_n"`
	} `yaml:"scoring"`
	LLM struct {
		Provider       string  `yaml:"provider"`
		Model          string  `yaml:"model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float32 `yaml:"temperature"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"llm"`
	Retry struct {
		MaxAttempts   int `yaml:"max_attempts"`
		InitialWaitMS int `yaml:"initial_wait_ms"`
		MaxWaitMS     int `yaml:"max_wait_ms"`
	} `yaml:"retry"`
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "OPENAI", "CLAUDE", "NOOP":
	default:
		return fmt.Errorf("invalid llm.provider '%s': must be 'OPENAI', 'CLAUDE', or 'NOOP'", c.LLM.Provider)
	}
	if c.Search.TimeoutSeconds <= 0 {
		return fmt.Errorf("search.timeout_seconds must be positive, got %d", c.Search.TimeoutSeconds)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm.timeout_seconds must be positive, got %d", c.LLM.TimeoutSeconds)
	}
	if c.Search.MaxResultsCap <= 0 {
		return fmt.Errorf("search.max_results_cap must be positive, got %d", c.Search.MaxResultsCap)
	}
	if c.Scoring.WeightText < 0 || c.Scoring.WeightEngagement < 0 ||
		c.Scoring.WeightText+c.Scoring.WeightEngagement <= 0 {
		return fmt.Errorf("scoring weights must be non-negative and sum above zero, got %.2f/%.2f",
			c.Scoring.WeightText, c.Scoring.WeightEngagement)
	}
	if t := c.Scoring.ConfidenceThreshold; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("scoring.confidence_threshold must be in [0,1], got %.2f", *t)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// DefaultConfig returns a config with every default applied, used by tests
// and as the fallback when no config file is present.
func DefaultConfig() *Config {
	var c Config
	applyDefaults(&c)
	return &c
}

func applyDefaults(c *Config) {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/requests.db"
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = "https://searchcaster.xyz"
	}
	if c.Search.TimeoutSeconds == 0 {
		c.Search.TimeoutSeconds = 8
	}
	if c.Search.MaxResultsCap == 0 {
		c.Search.MaxResultsCap = 50
	}
	if c.Search.DefaultResults == 0 {
		c.Search.DefaultResults = 3
	}
	if c.Scoring.WeightText == 0 && c.Scoring.WeightEngagement == 0 {
		c.Scoring.WeightText = 0.6
		c.Scoring.WeightEngagement = 0.4
	}
	if c.Scoring.ConfidenceThreshold == nil {
		threshold := 0.35
		c.Scoring.ConfidenceThreshold = &threshold
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NOOP"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 500
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 30
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 2
	}
	if c.Retry.InitialWaitMS == 0 {
		c.Retry.InitialWaitMS = 500
	}
	if c.Retry.MaxWaitMS == 0 {
		c.Retry.MaxWaitMS = 2000
	}
}
