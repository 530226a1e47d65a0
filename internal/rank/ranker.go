package rank

import (
	"context"
	"sort"
	"strings"

	"token-finder/internal/logger"
	"token-finder/internal/store"
	"token-finder/internal/types"
)

// Ranker scores casts against the extracted search parameters and orders
// them deterministically. The composite weights come from configuration and
// sum to one.
type Ranker struct {
	weightText       float64
	weightEngagement float64
}

func NewRanker(cfg *store.Config) *Ranker {
	return &Ranker{
		weightText:       cfg.Scoring.WeightText,
		weightEngagement: cfg.Scoring.WeightEngagement,
	}
}

// Rank scores every cast and returns them ordered by score descending.
// Ties break on the engagement count for the active filter (total when no
// filter is set), then on post ID ascending so repeated runs over the same
// input produce the same order.
func (r *Ranker) Rank(ctx context.Context, casts []types.Cast, p types.SearchParams) []types.RankedCast {
	ranked := make([]types.RankedCast, 0, len(casts))
	if len(casts) == 0 {
		return ranked
	}

	maxEngagement := 0
	for _, c := range casts {
		if n := c.Engagement.Count(p.Engagement); n > maxEngagement {
			maxEngagement = n
		}
	}

	keywords := normalizeKeywords(p.Keywords)
	for _, c := range casts {
		factors := types.ScoreFactors{}
		factors.TextRelevance, factors.MatchedKeywords = textRelevance(c, keywords)
		if maxEngagement > 0 {
			factors.Engagement = float64(c.Engagement.Count(p.Engagement)) / float64(maxEngagement)
		}
		ranked = append(ranked, types.RankedCast{
			Cast:    c,
			Score:   r.weightText*factors.TextRelevance + r.weightEngagement*factors.Engagement,
			Factors: factors,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		ei := ranked[i].Engagement.Count(p.Engagement)
		ej := ranked[j].Engagement.Count(p.Engagement)
		if ei != ej {
			return ei > ej
		}
		return ranked[i].ID < ranked[j].ID
	})

	logger.Debug(ctx, "Ranked casts", "casts", len(ranked), "max_engagement", maxEngagement)
	return ranked
}

// Confidence is the score of the best ranked cast, zero for an empty set.
func Confidence(ranked []types.RankedCast) float64 {
	if len(ranked) == 0 {
		return 0
	}
	return ranked[0].Score
}

// textRelevance is the fraction of query keywords found in the cast's text,
// tags or mentions.
func textRelevance(c types.Cast, keywords []string) (float64, int) {
	if len(keywords) == 0 {
		return 0, 0
	}
	haystack := strings.ToLower(c.Text)
	extras := make([]string, 0, len(c.Tags)+len(c.Mentions))
	for _, t := range c.Tags {
		extras = append(extras, strings.ToLower(t))
	}
	for _, m := range c.Mentions {
		extras = append(extras, strings.ToLower(m))
	}

	matched := 0
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			matched++
			continue
		}
		for _, e := range extras {
			if strings.Contains(e, kw) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(keywords)), matched
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
