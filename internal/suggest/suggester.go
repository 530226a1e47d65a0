package suggest

import (
	"context"
	"fmt"
	"strings"

	"token-finder/internal/llm"
	"token-finder/internal/logger"
	"token-finder/internal/types"
)

const systemPrompt = `You help users search Farcaster casts for token and coin mentions.
The user's last search returned weak or empty results. Propose ONE improved
search query they could try instead. Reply with the query text only, no
quotes, no explanation, at most 12 words.`

// Suggester asks the language model for an improved query when a search came
// back empty or with low confidence.
type Suggester struct {
	llm llm.Client
}

func NewSuggester(client llm.Client) *Suggester {
	return &Suggester{llm: client}
}

// How many low-confidence result texts are shown to the model.
const maxContextResults = 3

// Suggest returns a rewritten query for the given search, or "" when the
// model is unavailable or answers with nothing usable. A failure here never
// fails the run. The low-confidence results, when any exist, are included
// in the model context so the rewrite can steer away from what they cover.
func (s *Suggester) Suggest(ctx context.Context, query string, p types.SearchParams, results []types.RankedCast) string {
	ctx, span := logger.StartSpan(ctx, "suggest-query")
	defer span.End()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Original query: %s\nKeywords used: %s\nResults found: %d",
		query, p.Text(), len(results))
	for i, rc := range results {
		if i >= maxContextResults {
			break
		}
		fmt.Fprintf(&sb, "\nLow-confidence result %d: %s", i+1, rc.Text)
	}
	user := sb.String()

	reply, err := s.llm.Chat(ctx, systemPrompt, user)
	if err != nil {
		logger.Warn(ctx, "Suggestion generation failed, continuing without one", "error", err)
		return ""
	}

	suggestion := strings.TrimSpace(strings.Trim(strings.TrimSpace(reply), `"'`))
	if suggestion == "" || suggestion == "{}" {
		return ""
	}
	logger.Debug(ctx, "Built query suggestion", "suggestion", suggestion)
	return suggestion
}
