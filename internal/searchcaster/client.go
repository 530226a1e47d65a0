package searchcaster

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"token-finder/internal/api"
	"token-finder/internal/logger"
	"token-finder/internal/store"
	"token-finder/internal/types"
)

// ErrUnavailable is returned when the search service answered with a fault
// other than a timeout. Timeouts are not errors at this boundary: the caller
// gets an empty result set and the pipeline keeps going.
var ErrUnavailable = errors.New("searchcaster: service unavailable")

// Client queries the Searchcaster cast search API.
type Client struct {
	api   *api.Client
	retry *api.RetryConfig
}

func NewClient(cfg *store.Config) *Client {
	return &Client{
		api: api.NewClient(
			api.WithBaseURL(cfg.Search.BaseURL),
			api.WithTimeout(time.Duration(cfg.Search.TimeoutSeconds)*time.Second),
		),
		retry: &api.RetryConfig{
			MaxAttempts: cfg.Retry.MaxAttempts,
			InitialWait: time.Duration(cfg.Retry.InitialWaitMS) * time.Millisecond,
			MaxWait:     time.Duration(cfg.Retry.MaxWaitMS) * time.Millisecond,
		},
	}
}

// searchResponse mirrors the wire shape of GET /api/search.
type searchResponse struct {
	Casts []struct {
		Body struct {
			PublishedAt int64  `json:"publishedAt"`
			Username    string `json:"username"`
			Data        struct {
				Text string `json:"text"`
			} `json:"data"`
		} `json:"body"`
		Meta struct {
			DisplayName     string `json:"displayName"`
			NumReplyChildren int   `json:"numReplyChildren"`
			Reactions       struct {
				Count int `json:"count"`
			} `json:"reactions"`
			Recasts struct {
				Count int `json:"count"`
			} `json:"recasts"`
			Watches struct {
				Count int `json:"count"`
			} `json:"watches"`
			Tags     []string `json:"tags"`
			Mentions []struct {
				Username string `json:"username"`
			} `json:"mentions"`
		} `json:"meta"`
		MerkleRoot string `json:"merkleRoot"`
	} `json:"casts"`
}

// Search runs the structured parameters against the service and returns at
// most p.MaxResults casts. A timeout yields an empty slice and a nil error;
// any other transport fault surfaces as ErrUnavailable.
func (c *Client) Search(ctx context.Context, p types.SearchParams) ([]types.Cast, error) {
	ctx, span := logger.StartSpan(ctx, "search-casts")
	defer span.End()

	q := url.Values{}
	q.Set("text", p.Text())
	if p.MaxResults > 0 {
		q.Set("count", strconv.Itoa(p.MaxResults))
	}
	if p.Engagement.Valid() {
		q.Set("engagement", string(p.Engagement))
	}
	if p.Username != "" {
		q.Set("username", p.Username)
	}
	if p.AgeLimitDays > 0 {
		q.Set("age_limit_days", strconv.Itoa(p.AgeLimitDays))
	}

	req := api.NewRequest(http.MethodGet, "/api/search?"+q.Encode()).WithContext(ctx)

	start := time.Now()
	resp, err := c.api.DoWithRetry(req, c.retry)
	if err != nil {
		if isTimeout(err) {
			logger.Warn(ctx, "Search timed out, returning empty result set",
				"text", p.Text(), "latency_ms", time.Since(start).Milliseconds())
			return []types.Cast{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var payload searchResponse
	if err := resp.ParseJSON(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	casts := make([]types.Cast, 0, len(payload.Casts))
	for _, raw := range payload.Casts {
		if raw.Body.Data.Text == "" {
			continue
		}
		cast := types.Cast{
			ID:          raw.MerkleRoot,
			Text:        raw.Body.Data.Text,
			Username:    raw.Body.Username,
			DisplayName: raw.Meta.DisplayName,
			Engagement: types.EngagementCounts{
				Reactions: raw.Meta.Reactions.Count,
				Recasts:   raw.Meta.Recasts.Count,
				Watches:   raw.Meta.Watches.Count,
				Replies:   raw.Meta.NumReplyChildren,
			},
			Tags:        raw.Meta.Tags,
			PublishedAt: raw.Body.PublishedAt,
		}
		for _, m := range raw.Meta.Mentions {
			if m.Username != "" {
				cast.Mentions = append(cast.Mentions, m.Username)
			}
		}
		casts = append(casts, cast)
		if p.MaxResults > 0 && len(casts) >= p.MaxResults {
			break
		}
	}

	logger.Info(ctx, "Search completed", "text", p.Text(), "casts", len(casts),
		"latency_ms", time.Since(start).Milliseconds())
	return casts, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
