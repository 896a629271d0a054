package discovery

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"trailgrab/internal/catalog"
	"trailgrab/internal/fetch"
	"trailgrab/internal/match"
)

// marketplaceStrategy queries the independent marketplace catalog by title
// and maps its numeric identifiers back to content URLs. Applied last: the
// id mapping is a guess the fetch-and-validate funnel has to confirm.
type marketplaceStrategy struct {
	client    *catalog.Client
	http      *fetch.Client
	searchURL string
	threshold int
}

func (s *marketplaceStrategy) Name() string { return "marketplace" }

type marketplaceResponse struct {
	Results []marketplaceItem `json:"results"`
}

type marketplaceItem struct {
	TrackID        int64  `json:"trackId"`
	CollectionID   int64  `json:"collectionId"`
	TrackName      string `json:"trackName"`
	CollectionName string `json:"collectionName"`
	ReleaseDate    string `json:"releaseDate"`
	PreviewURL     string `json:"previewUrl"`
	TrackViewURL   string `json:"trackViewUrl"`
}

func (s *marketplaceStrategy) Candidates(ctx context.Context, query Query) ([]string, error) {
	mediaType := "movie"
	if !query.IsMovie {
		mediaType = "tvShow"
	}
	params := url.Values{
		"term":   {query.Title},
		"media":  {mediaType},
		"entity": {mediaType},
		"limit":  {"25"},
	}
	searchURL := fmt.Sprintf("%s?%s", strings.TrimRight(s.searchURL, "?"), params.Encode())

	var response marketplaceResponse
	if err := s.http.GetJSON(ctx, searchURL, nil, &response); err != nil {
		return nil, err
	}

	type scored struct {
		score int
		item  marketplaceItem
	}
	var accepted []scored
	for _, item := range response.Results {
		title := item.TrackName
		if title == "" {
			title = item.CollectionName
		}
		year := 0
		if len(item.ReleaseDate) >= 4 {
			fmt.Sscanf(item.ReleaseDate[:4], "%d", &year)
		}
		score := match.Score(title, query.Title, year, query.Year, item.PreviewURL != "")
		if match.Accept(score, s.threshold) {
			accepted = append(accepted, scored{score: score, item: item})
		}
	}
	sort.SliceStable(accepted, func(i, j int) bool { return accepted[i].score > accepted[j].score })

	var candidates []string
	for _, entry := range accepted {
		if candidate := s.candidateURL(entry.item, query); candidate != "" {
			candidates = append(candidates, candidate)
		}
	}
	return candidates, nil
}

func (s *marketplaceStrategy) candidateURL(item marketplaceItem, query Query) string {
	if item.TrackViewURL != "" {
		if parsed, err := url.Parse(item.TrackViewURL); err == nil {
			host := parsed.Host
			if host == "apple.com" || strings.HasSuffix(host, ".apple.com") {
				if strings.Contains(parsed.Path, "/movie/") || strings.Contains(parsed.Path, "/tv-season/") {
					if base, err := url.Parse(s.client.BaseURL()); err == nil {
						parsed.Host = base.Host
						parsed.Scheme = base.Scheme
						return parsed.String()
					}
				}
			}
		}
	}

	id := item.TrackID
	if id == 0 {
		id = item.CollectionID
	}
	if id == 0 {
		return ""
	}
	return s.client.ContentURL(query.Kind(), fmt.Sprintf("%d", id))
}
