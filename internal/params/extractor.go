package params

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"token-finder/internal/llm"
	"token-finder/internal/logger"
	"token-finder/internal/store"
	"token-finder/internal/types"
)

const systemPrompt = "You are an assistant that translates natural language prompts about tokens and coins " +
	"into search parameters for a social post search. " +
	"Respond ONLY with a JSON object with keys: keywords, count, engagement, username, age_limit_days. " +
	"The keywords key must be an array of short strings describing the coin type (e.g. memecoin, social coin, ai coin). " +
	"The engagement key must be one of: reactions, recasts, replies, watches. Use your best judgement to pick one based on the prompt. " +
	"The count key must be a number. Only set count if the user mentions how many results they want. " +
	"The username key should only be set if the prompt names a specific poster. " +
	"The age_limit_days key should only be set if the prompt specifies a time frame (e.g. less than 10 days old). " +
	"Omit any key you cannot infer from the prompt."

// Extractor turns a natural-language query into validated search parameters
// via one language-model call.
type Extractor struct {
	llm llm.Client
	cfg *store.Config
}

func NewExtractor(client llm.Client, cfg *store.Config) *Extractor {
	return &Extractor{llm: client, cfg: cfg}
}

// extractionResult is the shape the model is asked for. The legacy "text"
// key is accepted as an alternative to "keywords".
type extractionResult struct {
	Keywords     []string `json:"keywords"`
	Text         string   `json:"text"`
	Count        int      `json:"count"`
	Engagement   string   `json:"engagement"`
	Username     string   `json:"username"`
	AgeLimitDays int      `json:"age_limit_days"`
}

// Extract derives SearchParams from query. maxResultsHint, when positive,
// takes precedence over whatever the model inferred; the result is always
// clamped to the configured cap.
//
// Extraction degrades rather than rejects: an engagement value outside the
// closed enum becomes "no filter", and a response with no usable keywords
// falls back to the raw query. It fails only when the model call itself
// fails or returns nothing parseable.
func (e *Extractor) Extract(ctx context.Context, query string, maxResultsHint int) (types.SearchParams, error) {
	ctx, span := logger.StartSpan(ctx, "extract-parameters")
	defer span.End()

	raw, err := e.llm.Chat(ctx, systemPrompt, query)
	if err != nil {
		return types.SearchParams{}, fmt.Errorf("params: model call failed: %w", err)
	}

	result, err := parseExtraction(raw)
	if err != nil {
		return types.SearchParams{}, fmt.Errorf("params: %w", err)
	}

	p := types.SearchParams{
		Keywords:     cleanKeywords(result.Keywords),
		Engagement:   types.ParseEngagementFilter(result.Engagement),
		Username:     strings.TrimSpace(result.Username),
		AgeLimitDays: result.AgeLimitDays,
	}

	if len(p.Keywords) == 0 && result.Text != "" {
		p.Keywords = cleanKeywords(strings.Fields(result.Text))
	}
	if len(p.Keywords) == 0 {
		// Nothing discernible from the model; search for the prompt verbatim.
		logger.Warn(ctx, "No keywords extracted, falling back to raw query", "query", query)
		p.Keywords = []string{query}
	}

	p.MaxResults = e.resolveMaxResults(maxResultsHint, result.Count)
	if p.AgeLimitDays < 0 {
		p.AgeLimitDays = 0
	}

	logger.Info(ctx, "Parameters extracted",
		"keywords", p.Keywords,
		"max_results", p.MaxResults,
		"engagement", string(p.Engagement))

	return p, nil
}

func (e *Extractor) resolveMaxResults(hint, inferred int) int {
	n := e.cfg.Search.DefaultResults
	if inferred > 0 {
		n = inferred
	}
	if hint > 0 {
		n = hint
	}
	if n > e.cfg.Search.MaxResultsCap {
		n = e.cfg.Search.MaxResultsCap
	}
	return n
}

// parseExtraction locates the first JSON object in the model output and
// unmarshals it. Models wrap JSON in prose often enough that a plain
// json.Unmarshal of the whole response is not workable.
func parseExtraction(raw string) (extractionResult, error) {
	t := strings.TrimSpace(raw)

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start < 0 || end <= start {
		return extractionResult{}, fmt.Errorf("no JSON object in model response: %q", truncate(t, 120))
	}

	var result extractionResult
	if err := json.Unmarshal([]byte(t[start:end+1]), &result); err != nil {
		return extractionResult{}, fmt.Errorf("invalid JSON in model response: %w", err)
	}
	return result, nil
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
