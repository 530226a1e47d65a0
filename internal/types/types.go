package types

import "strings"

// EngagementFilter selects which engagement dimension a search is sorted and
// filtered by. The empty value means "no filter".
type EngagementFilter string

const (
	EngagementNone      EngagementFilter = ""
	EngagementReactions EngagementFilter = "reactions"
	EngagementRecasts   EngagementFilter = "recasts"
	EngagementReplies   EngagementFilter = "replies"
	EngagementWatches   EngagementFilter = "watches"
)

// ParseEngagementFilter normalizes s and maps it onto the closed enum.
// Anything outside the enum degrades to EngagementNone.
func ParseEngagementFilter(s string) EngagementFilter {
	switch EngagementFilter(strings.ToLower(strings.TrimSpace(s))) {
	case EngagementReactions:
		return EngagementReactions
	case EngagementRecasts:
		return EngagementRecasts
	case EngagementReplies:
		return EngagementReplies
	case EngagementWatches:
		return EngagementWatches
	default:
		return EngagementNone
	}
}

// Valid reports whether f is one of the four named dimensions.
func (f EngagementFilter) Valid() bool {
	switch f {
	case EngagementReactions, EngagementRecasts, EngagementReplies, EngagementWatches:
		return true
	}
	return false
}

// SearchParams is the structured form of a natural-language query.
type SearchParams struct {
	Keywords     []string         `json:"keywords"`
	MaxResults   int              `json:"max_results"`
	Engagement   EngagementFilter `json:"engagement,omitempty"`
	Username     string           `json:"username,omitempty"`
	AgeLimitDays int              `json:"age_limit_days,omitempty"`
}

// Text joins the keywords into the single text filter the search service takes.
func (p SearchParams) Text() string {
	return strings.Join(p.Keywords, " ")
}

// EngagementCounts holds the per-dimension engagement numbers of a cast.
type EngagementCounts struct {
	Reactions int `json:"reactions"`
	Recasts   int `json:"recasts"`
	Watches   int `json:"watches"`
	Replies   int `json:"replies"`
}

// Count returns the number for the named dimension, or the sum of all four
// when no filter is set.
func (e EngagementCounts) Count(f EngagementFilter) int {
	switch f {
	case EngagementReactions:
		return e.Reactions
	case EngagementRecasts:
		return e.Recasts
	case EngagementWatches:
		return e.Watches
	case EngagementReplies:
		return e.Replies
	default:
		return e.Total()
	}
}

// Total sums all four dimensions.
func (e EngagementCounts) Total() int {
	return e.Reactions + e.Recasts + e.Watches + e.Replies
}

// Cast is one social post returned by the search service.
type Cast struct {
	ID          string           `json:"id"`
	Text        string           `json:"text"`
	Username    string           `json:"username"`
	DisplayName string           `json:"display_name"`
	Engagement  EngagementCounts `json:"engagement"`
	Tags        []string         `json:"tags,omitempty"`
	Mentions    []string         `json:"mentions,omitempty"`
	PublishedAt int64            `json:"published_at,omitempty"`
}

// ScoreFactors records the components that produced a cast's score, kept for
// explainability and tests, never persisted.
type ScoreFactors struct {
	TextRelevance   float64 `json:"text_relevance"`
	Engagement      float64 `json:"engagement"`
	MatchedKeywords int     `json:"matched_keywords"`
}

// RankedCast is a Cast with its computed relevance score.
type RankedCast struct {
	Cast
	Score   float64      `json:"score"`
	Factors ScoreFactors `json:"factors"`
}

// AnalyzeRequest is the persisted record: one live record per wallet address,
// replaced wholesale on a later analyze for the same address.
type AnalyzeRequest struct {
	WalletAddress string           `json:"wallet_address"`
	Count         int              `json:"count"`
	Text          string           `json:"text"`
	Engagement    EngagementFilter `json:"engagement"`
	Prompt        string           `json:"prompt"`
}

// Params rebuilds the search parameters stored with the request, used by the
// rescan path so the query is never re-extracted.
func (r AnalyzeRequest) Params() SearchParams {
	return SearchParams{
		Keywords:   strings.Fields(r.Text),
		MaxResults: r.Count,
		Engagement: r.Engagement,
	}
}

// AnalysisOutcome is the response envelope built once per run.
type AnalysisOutcome struct {
	Message     string       `json:"message"`
	Parameters  SearchParams `json:"parameters"`
	Suggestion  string       `json:"suggestion,omitempty"`
	FirstTicker string       `json:"first_ticker,omitempty"`
	Results     []RankedCast `json:"results"`
}
