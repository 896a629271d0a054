package catalog

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"trailgrab/internal/match"
)

// SearchResult is one scored item from the catalog search endpoint.
type SearchResult struct {
	ID    string
	Title string
	URL   string
	Type  string
	Year  int
	Score int
}

// Search queries the catalog's structured search endpoint and returns
// results scoring at or above threshold, best first, deduplicated by id.
func (c *Client) Search(ctx context.Context, title string, year int, isMovie bool, threshold int) ([]SearchResult, error) {
	term := title
	if year > 0 {
		term = fmt.Sprintf("%s %d", title, year)
	}
	params := c.apiParams()
	params.Set("term", term)
	searchURL := fmt.Sprintf("%s/api/uts/v3/canvases/search?%s", c.cfg.BaseURL, params.Encode())

	var doc any
	if err := c.http.GetJSON(ctx, searchURL, c.headers(), &doc); err != nil {
		return nil, err
	}
	return extractSearchResults(doc, title, year, isMovie, threshold), nil
}

// extractSearchResults walks an arbitrarily shaped search response for
// objects that look like content items, scoring each against the query.
func extractSearchResults(doc any, title string, year int, isMovie bool, threshold int) []SearchResult {
	targetType := "movie"
	if !isMovie {
		targetType = "show"
	}

	var results []SearchResult
	walkObjects(doc, func(obj map[string]any) bool {
		id := stringField(obj, "id")
		itemTitle := stringField(obj, "title")
		if id == "" || itemTitle == "" {
			return true
		}
		itemType := strings.ToLower(stringField(obj, "type"))
		if itemType != "" && !strings.Contains(itemType, targetType) {
			return true
		}

		resultYear := parseYear(obj["releaseDate"])
		score := match.Score(itemTitle, title, resultYear, year, false)
		if !match.Accept(score, threshold) {
			return true
		}
		results = append(results, SearchResult{
			ID:    id,
			Title: itemTitle,
			URL:   stringField(obj, "url", "canonicalUrl"),
			Type:  itemType,
			Year:  resultYear,
			Score: score,
		})
		return true
	})

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	seen := make(map[string]bool, len(results))
	unique := results[:0]
	for _, r := range results {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		unique = append(unique, r)
	}
	return unique
}

// ResultURL returns the result's own URL when it has one, else a canonical
// content URL constructed from its id.
func (c *Client) ResultURL(result SearchResult, isMovie bool) string {
	if result.URL != "" {
		return result.URL
	}
	kind := "movie"
	if !isMovie {
		kind = "show"
	}
	return c.ContentURL(kind, result.ID)
}

// SearchPageURL builds the human search page URL used by the slug-based
// lookup of the web frontend.
func (c *Client) SearchPageURL(term string) string {
	return fmt.Sprintf("%s/%s/search?term=%s", c.cfg.BaseURL, c.cfg.Region, url.QueryEscape(term))
}

// SearchURLs queries the search endpoint with a raw term and collects every
// content URL of the wanted kind from the response, in encounter order.
// Used for cross-reference id lookups where title scoring does not apply.
func (c *Client) SearchURLs(ctx context.Context, term, kind string) ([]string, error) {
	params := c.apiParams()
	params.Set("term", term)
	searchURL := fmt.Sprintf("%s/api/uts/v3/canvases/search?%s", c.cfg.BaseURL, params.Encode())

	var doc any
	if err := c.http.GetJSON(ctx, searchURL, c.headers(), &doc); err != nil {
		return nil, err
	}

	marker := "/" + kind + "/"
	var urls []string
	seen := make(map[string]bool)
	walkObjects(doc, func(obj map[string]any) bool {
		candidate := stringField(obj, "url", "canonicalUrl")
		if candidate == "" || !strings.Contains(candidate, marker) {
			return true
		}
		if !seen[candidate] {
			seen[candidate] = true
			urls = append(urls, candidate)
		}
		return true
	})
	return urls, nil
}
