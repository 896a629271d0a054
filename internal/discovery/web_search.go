package discovery

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"trailgrab/internal/catalog"
	"trailgrab/internal/fetch"
	"trailgrab/internal/titles"
)

// webSearchStrategy falls back to a general web search scoped to the
// catalog host and pulls content URLs out of the result links. The result
// page wraps destinations in a redirect URL whose uddg parameter carries
// the real target. Results are filtered by slug-in-path matching so a
// plausible-looking page for the wrong title never gets through.
type webSearchStrategy struct {
	client    *catalog.Client
	http      *fetch.Client
	searchURL string
}

func (s *webSearchStrategy) Name() string { return "web-search" }

func (s *webSearchStrategy) Candidates(ctx context.Context, query Query) ([]string, error) {
	if strings.TrimSpace(query.Title) == "" {
		return nil, nil
	}

	catalogHost := ""
	if base, err := url.Parse(s.client.BaseURL()); err == nil {
		catalogHost = base.Host
	}

	term := query.Title
	if query.Year > 0 {
		term = fmt.Sprintf("%s %d", query.Title, query.Year)
	}
	term = fmt.Sprintf("%s site:%s", term, catalogHost)

	searchURL := fmt.Sprintf("%s?q=%s", strings.TrimRight(s.searchURL, "?"), url.QueryEscape(term))
	body, err := s.http.Get(ctx, searchURL, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	slug := titles.Slugify(query.Title)
	kindMarker := "/" + query.Kind() + "/"

	var candidates []string
	seen := make(map[string]bool)
	doc.Find("a.result__a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		target := resolveSearchLink(href)
		if target == "" || seen[target] {
			return
		}
		parsed, err := url.Parse(target)
		if err != nil {
			return
		}
		if parsed.Host != catalogHost {
			return
		}
		if !strings.Contains(parsed.Path, kindMarker) {
			return
		}
		if !titles.SlugInPath(slug, parsed.Path) {
			return
		}
		seen[target] = true
		candidates = append(candidates, target)
	})

	return candidates, nil
}

// resolveSearchLink unwraps the search engine's redirect links. Direct
// links pass through.
func resolveSearchLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if parsed.IsAbs() {
		return href
	}
	return ""
}
