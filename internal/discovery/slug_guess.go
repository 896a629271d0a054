package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"trailgrab/internal/catalog"
	"trailgrab/internal/fetch"
	"trailgrab/internal/titles"
)

// slugGuessStrategy predicts the content page URL straight from the title
// slug and fetches it. The guessed page either redirects to (or embeds a
// link to) the canonical content URL carrying the content id.
type slugGuessStrategy struct {
	client *catalog.Client
	http   *fetch.Client
}

func (s *slugGuessStrategy) Name() string { return "slug-guess" }

func (s *slugGuessStrategy) Candidates(ctx context.Context, query Query) ([]string, error) {
	slug := titles.Slugify(query.Title)
	if slug == "" {
		return nil, nil
	}

	pageURL := s.client.PageURL(query.Kind(), slug)
	body, err := s.http.Get(ctx, pageURL, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var candidates []string
	seen := make(map[string]bool)
	add := func(raw string) {
		resolved := s.absolute(raw)
		if resolved == "" || seen[resolved] {
			return
		}
		parsed, err := url.Parse(resolved)
		if err != nil {
			return
		}
		// Only accept canonical content URLs for our slug: the id segment
		// keeps a near-miss page from matching.
		if !titles.SlugInPath(slug, parsed.Path) || !strings.Contains(parsed.Path, "umc.") {
			return
		}
		if !strings.Contains(parsed.Path, "/"+query.Kind()+"/") {
			return
		}
		seen[resolved] = true
		candidates = append(candidates, resolved)
	}

	if canonical, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
		add(canonical)
	}

	if raw := doc.Find(`script#serialized-server-data[type="application/json"]`).Text(); raw != "" {
		var data any
		if err := json.Unmarshal([]byte(raw), &data); err == nil {
			for _, link := range contentLinks(data) {
				add(link)
			}
		}
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			add(href)
		}
	})

	return candidates, nil
}

func (s *slugGuessStrategy) absolute(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "/") {
		return s.client.BaseURL() + raw
	}
	return raw
}

// contentLinks walks embedded page data for url-shaped values.
func contentLinks(data any) []string {
	var links []string
	stack := []any{data}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch value := node.(type) {
		case map[string]any:
			for key, child := range value {
				if key == "url" || key == "canonicalUrl" {
					if link, ok := child.(string); ok && link != "" {
						links = append(links, link)
					}
					continue
				}
				stack = append(stack, child)
			}
		case []any:
			for i := len(value) - 1; i >= 0; i-- {
				stack = append(stack, value[i])
			}
		}
	}
	return links
}
