package discovery

import (
	"context"

	"trailgrab/internal/catalog"
)

// catalogAPIStrategy runs the catalog's structured search and validates
// results in rank order.
type catalogAPIStrategy struct {
	client    *catalog.Client
	threshold int
}

func (s *catalogAPIStrategy) Name() string { return "catalog-api" }

func (s *catalogAPIStrategy) Candidates(ctx context.Context, query Query) ([]string, error) {
	results, err := s.client.Search(ctx, query.Title, query.Year, query.IsMovie, s.threshold)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(results))
	for _, result := range results {
		urls = append(urls, s.client.ResultURL(result, query.IsMovie))
	}
	return urls, nil
}
