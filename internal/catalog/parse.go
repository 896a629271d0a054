package catalog

import (
	"fmt"
	"strings"
	"time"
)

// parseDefaultTrailer extracts the primary playable video from a content
// document: the background video when present, else the first playable.
func parseDefaultTrailer(doc map[string]any, sourceID string) *TrailerInfo {
	content := objectAt(doc, "data", "content")
	if content == nil {
		return nil
	}

	playable, _ := content["backgroundVideo"].(map[string]any)
	if playable == nil {
		if playables, ok := content["playables"].([]any); ok && len(playables) > 0 {
			playable, _ = playables[0].(map[string]any)
		}
	}
	if playable == nil {
		return nil
	}
	return buildTrailerInfo(playable, content, sourceID)
}

// parseShelfTrailers extracts every trailer from the page's trailer shelf.
func parseShelfTrailers(doc map[string]any, sourceID string) []*TrailerInfo {
	content := objectAt(doc, "data", "content")
	canvas := objectAt(doc, "data", "canvas")
	if content == nil || canvas == nil {
		return nil
	}

	shelves, _ := canvas["shelves"].([]any)
	var items []any
	for _, raw := range shelves {
		shelf, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		title := strings.ToLower(stringField(shelf, "title"))
		if strings.Contains(title, "trailer") || strings.Contains(title, "clip") || strings.Contains(title, "video") {
			items, _ = shelf["items"].([]any)
			break
		}
	}

	var trailers []*TrailerInfo
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		playable := item
		if nested, ok := item["playables"].([]any); ok {
			if len(nested) == 0 {
				continue
			}
			playable, _ = nested[0].(map[string]any)
			if playable == nil {
				continue
			}
		}
		if info := buildTrailerInfo(playable, content, sourceID); info != nil {
			trailers = append(trailers, info)
		}
	}
	return trailers
}

func buildTrailerInfo(playable, content map[string]any, sourceID string) *TrailerInfo {
	assets, _ := playable["assets"].(map[string]any)
	if assets == nil {
		return nil
	}
	hlsURL := stringField(assets, "hlsUrl", "hls", "url")
	if hlsURL == "" {
		return nil
	}

	videoTitle := stringField(playable, "title")
	if videoTitle == "" {
		videoTitle = "Trailer"
	}
	contentTitle := stringField(content, "title")
	if contentTitle == "" {
		contentTitle = "Unknown"
	}

	return &TrailerInfo{
		HLSURL:       hlsURL,
		VideoTitle:   videoTitle,
		ContentTitle: contentTitle,
		ReleaseDate:  parseDate(content["releaseDate"]),
		Description:  stringField(content, "description"),
		Genres:       parseGenres(content["genres"]),
		CoverURL:     coverURL(playable),
		SourceID:     sourceID,
	}
}

// coverURL expands the content image template into a concrete jpg URL.
func coverURL(playable map[string]any) string {
	meta := playable
	if canonical, ok := playable["canonicalMetadata"].(map[string]any); ok {
		meta = canonical
	}
	image := objectAt(meta, "images", "contentImage")
	if image == nil {
		return ""
	}
	template := stringField(image, "url")
	if template == "" {
		return ""
	}
	width := intField(image, "width", 1920)
	height := intField(image, "height", 1080)

	replacer := strings.NewReplacer(
		"{w}", fmt.Sprintf("%d", width),
		"{h}", fmt.Sprintf("%d", height),
		"{f}", "jpg",
	)
	return replacer.Replace(template)
}

// parseDate accepts either a millisecond epoch or an ISO date string and
// returns YYYY-MM-DD. Anything else defaults to today.
func parseDate(value any) string {
	switch v := value.(type) {
	case float64:
		return time.UnixMilli(int64(v)).UTC().Format("2006-01-02")
	case string:
		if len(v) >= 10 {
			return v[:10]
		}
		if v != "" {
			return v
		}
	}
	return time.Now().Format("2006-01-02")
}

// parseYear extracts a year from the same shapes parseDate accepts, or 0.
func parseYear(value any) int {
	switch v := value.(type) {
	case float64:
		return time.UnixMilli(int64(v)).UTC().Year()
	case string:
		if len(v) >= 4 {
			var year int
			if _, err := fmt.Sscanf(v[:4], "%d", &year); err == nil {
				return year
			}
		}
	}
	return 0
}

func parseGenres(value any) []string {
	var raw []any
	switch v := value.(type) {
	case []any:
		raw = v
	case nil:
		return nil
	default:
		raw = []any{v}
	}

	var genres []string
	for _, item := range raw {
		switch g := item.(type) {
		case map[string]any:
			if name := stringField(g, "name"); name != "" {
				genres = append(genres, name)
			}
		case string:
			genres = append(genres, g)
		}
	}
	return genres
}

func objectAt(doc map[string]any, keys ...string) map[string]any {
	current := doc
	for _, key := range keys {
		next, ok := current[key].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

func intField(obj map[string]any, key string, fallback int) int {
	if value, ok := obj[key].(float64); ok && value > 0 {
		return int(value)
	}
	return fallback
}
