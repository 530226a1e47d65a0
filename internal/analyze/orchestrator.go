package analyze

import (
	"context"
	"errors"
	"strings"

	"token-finder/internal/logger"
	"token-finder/internal/params"
	"token-finder/internal/rank"
	"token-finder/internal/store"
	"token-finder/internal/suggest"
	"token-finder/internal/ticker"
	"token-finder/internal/types"
)

// successMessage is the fixed message attached to every completed run.
const successMessage = "Query processed successfully."

// Searcher is the cast search dependency.
type Searcher interface {
	Search(ctx context.Context, p types.SearchParams) ([]types.Cast, error)
}

// Orchestrator runs the full analysis pipeline: extract parameters, persist
// them, search, rank, pull a ticker, and fall back to a query suggestion
// when the results are weak.
type Orchestrator struct {
	extractor *params.Extractor
	store     *store.RequestStore
	search    Searcher
	ranker    *rank.Ranker
	suggester *suggest.Suggester
	threshold float64
	tickerTop int
}

func NewOrchestrator(extractor *params.Extractor, requests *store.RequestStore, search Searcher, ranker *rank.Ranker, suggester *suggest.Suggester, cfg *store.Config) *Orchestrator {
	return &Orchestrator{
		extractor: extractor,
		store:     requests,
		search:    search,
		ranker:    ranker,
		suggester: suggester,
		threshold: *cfg.Scoring.ConfidenceThreshold,
		tickerTop: cfg.Scoring.TickerTopN,
	}
}

// Run processes a fresh natural-language query for a wallet. Parameter
// extraction is the only pipeline stage whose failure aborts the run; the
// search and suggestion stages degrade.
func (o *Orchestrator) Run(ctx context.Context, walletAddress, query string, maxResultsHint int) (*types.AnalysisOutcome, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	query = strings.TrimSpace(query)
	if walletAddress == "" {
		return nil, invalidInput("wallet_address is required")
	}
	if query == "" {
		return nil, invalidInput("query is required")
	}

	timer := logger.StartOperation(ctx, "analyze", "wallet_address", walletAddress)
	ctx = timer.GetContext()

	p, err := o.extractor.Extract(ctx, query, maxResultsHint)
	if err != nil {
		timer.EndWithError(err)
		return nil, extractionFailed("could not extract search parameters", err)
	}

	// Persist before searching so a later rescan replays the same parameters
	// even when this run's search fails. A store failure is logged and the
	// run continues.
	record := types.AnalyzeRequest{
		WalletAddress: walletAddress,
		Count:         p.MaxResults,
		Text:          p.Text(),
		Engagement:    p.Engagement,
		Prompt:        query,
	}
	if err := o.store.Upsert(ctx, record); err != nil {
		logger.ErrorWithErr(ctx, "Failed to persist analyze request, continuing", err,
			"wallet_address", walletAddress)
	}

	outcome := o.execute(ctx, query, p)
	timer.End()
	logger.Outcome(ctx, walletAddress, outcome.FirstTicker, len(outcome.Results), rank.Confidence(outcome.Results))
	return outcome, nil
}

// Rescan replays the stored parameters for a wallet without re-extracting.
// An unknown wallet is the only terminal failure.
func (o *Orchestrator) Rescan(ctx context.Context, walletAddress string) (*types.AnalysisOutcome, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return nil, invalidInput("wallet_address is required")
	}

	timer := logger.StartOperation(ctx, "rescan", "wallet_address", walletAddress)
	ctx = timer.GetContext()

	record, err := o.store.Get(ctx, walletAddress)
	if err != nil {
		timer.EndWithError(err)
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("no stored request for wallet")
		}
		return nil, internal("could not load stored request", err)
	}

	outcome := o.execute(ctx, record.Prompt, record.Params())
	timer.End()
	logger.Outcome(ctx, walletAddress, outcome.FirstTicker, len(outcome.Results), rank.Confidence(outcome.Results))
	return outcome, nil
}

// Stored returns the persisted request for a wallet.
func (o *Orchestrator) Stored(ctx context.Context, walletAddress string) (types.AnalyzeRequest, error) {
	record, err := o.store.Get(ctx, strings.TrimSpace(walletAddress))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.AnalyzeRequest{}, notFound("no stored request for wallet")
		}
		return types.AnalyzeRequest{}, internal("could not load stored request", err)
	}
	return record, nil
}

// execute runs the shared search, rank, ticker and suggestion stages.
func (o *Orchestrator) execute(ctx context.Context, query string, p types.SearchParams) *types.AnalysisOutcome {
	casts, err := o.search.Search(ctx, p)
	if err != nil {
		logger.ErrorWithErr(ctx, "Search failed, treating as empty", err, "text", p.Text())
		casts = nil
	}

	ranked := o.ranker.Rank(ctx, casts, p)
	confidence := rank.Confidence(ranked)

	outcome := &types.AnalysisOutcome{
		Message:    successMessage,
		Parameters: p,
		Results:    ranked,
	}

	outcome.FirstTicker = ticker.FirstTicker(topTexts(ranked, o.tickerTop))

	if len(ranked) == 0 || confidence < o.threshold {
		outcome.Suggestion = o.suggester.Suggest(ctx, query, p, ranked)
	}
	return outcome
}

// topTexts flattens the top n ranked casts into scannable strings, folding
// tags and mentions in after the post text so a ticker carried only in a tag
// is still found.
func topTexts(ranked []types.RankedCast, n int) []string {
	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}
	texts := make([]string, 0, n)
	for _, rc := range ranked[:n] {
		parts := append([]string{rc.Text}, rc.Tags...)
		parts = append(parts, rc.Mentions...)
		texts = append(texts, strings.Join(parts, " "))
	}
	return texts
}
