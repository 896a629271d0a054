package discovery

import (
	"context"

	"trailgrab/internal/catalog"
)

// externalIDStrategy looks a cross-reference id (an IMDb id, typically)
// up directly against the catalog search endpoint. It only runs when the
// query carries one.
type externalIDStrategy struct {
	client *catalog.Client
}

func (s *externalIDStrategy) Name() string { return "external-id" }

func (s *externalIDStrategy) Candidates(ctx context.Context, query Query) ([]string, error) {
	if query.ExternalID == "" {
		return nil, nil
	}
	return s.client.SearchURLs(ctx, query.ExternalID, query.Kind())
}
