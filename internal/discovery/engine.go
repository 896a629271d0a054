package discovery

import (
	"context"
	"fmt"
	"log/slog"

	"trailgrab/internal/catalog"
	"trailgrab/internal/config"
	"trailgrab/internal/fetch"
	"trailgrab/internal/logging"
	"trailgrab/internal/match"
	"trailgrab/internal/services"
)

// Query describes what the caller is looking for.
type Query struct {
	Title      string
	Year       int
	IsMovie    bool
	ExternalID string // optional cross-reference id, bypasses title search
}

// Kind returns the content kind for the query.
func (q Query) Kind() string {
	if q.IsMovie {
		return "movie"
	}
	return "show"
}

// ExclusionSet holds source ids from previously failed attempts.
type ExclusionSet map[string]struct{}

// NewExclusionSet builds a set from the given ids, skipping empties.
func NewExclusionSet(ids ...string) ExclusionSet {
	set := make(ExclusionSet, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// Add records a failed source id.
func (s ExclusionSet) Add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}

// Has reports whether id is excluded.
func (s ExclusionSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Strategy produces candidate content URLs for a query. Returning no
// candidates, or an error, both mean "try the next strategy".
type Strategy interface {
	Name() string
	Candidates(ctx context.Context, query Query) ([]string, error)
}

// Resolver turns a content URL into the trailers its page lists. It is the
// narrow seam tests use to stand in for the catalog client.
type Resolver interface {
	Trailers(ctx context.Context, contentURL string) ([]*catalog.TrailerInfo, error)
}

// Engine runs the strategy chain.
type Engine struct {
	strategies []Strategy
	resolver   Resolver
	threshold  int
	logger     *slog.Logger
}

// NewEngine wires the production strategy chain: cross-reference lookup,
// slug guess, catalog search, web search, then the marketplace catalog.
func NewEngine(client *catalog.Client, httpClient *fetch.Client, cfg config.Search, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		strategies: []Strategy{
			&externalIDStrategy{client: client},
			&slugGuessStrategy{client: client, http: httpClient},
			&catalogAPIStrategy{client: client, threshold: cfg.AcceptThreshold},
			&webSearchStrategy{client: client, http: httpClient, searchURL: cfg.WebSearchURL},
			&marketplaceStrategy{client: client, http: httpClient, searchURL: cfg.MarketplaceURL, threshold: cfg.AcceptThreshold},
		},
		resolver:  client,
		threshold: cfg.AcceptThreshold,
		logger:    logging.NewComponentLogger(logger, "discovery"),
	}
}

// NewEngineWithStrategies wires an explicit chain, used by tests and by the
// manual-url bypass.
func NewEngineWithStrategies(resolver Resolver, threshold int, logger *slog.Logger, strategies ...Strategy) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		strategies: strategies,
		resolver:   resolver,
		threshold:  threshold,
		logger:     logging.NewComponentLogger(logger, "discovery"),
	}
}

// Find walks the strategy chain and returns the first validated,
// non-excluded trailer. Every strategy exhausting without acceptance is the
// terminal no-match condition.
func (e *Engine) Find(ctx context.Context, query Query, exclude ExclusionSet) (*catalog.TrailerInfo, error) {
	if exclude == nil {
		exclude = NewExclusionSet()
	}

	for _, strategy := range e.strategies {
		candidates, err := strategy.Candidates(ctx, query)
		if err != nil {
			// Strategy-local failures only mean this strategy produced
			// nothing; the chain carries on.
			e.logger.Debug("strategy failed",
				logging.String(logging.FieldStrategy, strategy.Name()),
				logging.Error(err))
			continue
		}
		for _, contentURL := range candidates {
			info := e.fetchAndValidate(ctx, contentURL, query, exclude)
			if info != nil {
				e.logger.Info("trailer found",
					logging.String(logging.FieldStrategy, strategy.Name()),
					logging.String(logging.FieldMediaTitle, query.Title),
					logging.String("video_title", info.VideoTitle))
				return info, nil
			}
		}
	}

	return nil, services.Wrap(services.ErrNoMatch, "discovery", "find", query.Title,
		fmt.Errorf("all strategies exhausted"))
}

// Resolve validates a caller-supplied content URL directly, bypassing the
// strategy chain but not the exclusion check.
func (e *Engine) Resolve(ctx context.Context, contentURL string, query Query, exclude ExclusionSet) (*catalog.TrailerInfo, error) {
	if exclude == nil {
		exclude = NewExclusionSet()
	}
	trailers, err := e.resolver.Trailers(ctx, contentURL)
	if err != nil {
		return nil, err
	}
	for _, info := range trailers {
		if !exclude.Has(info.SourceID) {
			return info, nil
		}
	}
	return nil, services.Wrap(services.ErrNoMatch, "discovery", "resolve", contentURL,
		fmt.Errorf("every trailer at this url is excluded"))
}

// fetchAndValidate is the funnel every strategy's candidates pass through:
// resolve the page, re-score the resolved content title against the query
// (year ignored; the strategies already scoped by year), and honor the
// exclusion set. The first listed trailer is preferred; alternates are
// considered only when it is excluded.
func (e *Engine) fetchAndValidate(ctx context.Context, contentURL string, query Query, exclude ExclusionSet) *catalog.TrailerInfo {
	trailers, err := e.resolver.Trailers(ctx, contentURL)
	if err != nil || len(trailers) == 0 {
		e.logger.Debug("candidate did not resolve",
			logging.String("url", contentURL),
			logging.Error(err))
		return nil
	}

	primary := trailers[0]
	score := match.Score(primary.ContentTitle, query.Title, 0, 0, false)
	if !match.Accept(score, e.threshold) {
		e.logger.Debug("candidate rejected by title score",
			logging.String("content_title", primary.ContentTitle),
			logging.String(logging.FieldMediaTitle, query.Title),
			logging.Int("score", score))
		return nil
	}

	if !exclude.Has(primary.SourceID) {
		return primary
	}

	for _, alternate := range trailers[1:] {
		if exclude.Has(alternate.SourceID) {
			continue
		}
		altScore := match.Score(alternate.ContentTitle, query.Title, 0, 0, false)
		if match.Accept(altScore, e.threshold) {
			return alternate
		}
	}
	e.logger.Debug("candidate excluded",
		logging.String(logging.FieldSourceID, primary.SourceID))
	return nil
}
