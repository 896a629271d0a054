package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

var developerTokenPattern = regexp.MustCompile(`"developerToken"\s*:\s*"([^"]+)"`)

// fetchToken loads the storefront landing page and digs the developer token
// out of it. The token lives either in the serialized server data blob or
// inline in one of the page scripts.
func (c *Client) fetchToken(ctx context.Context) (string, error) {
	pageURL := fmt.Sprintf("%s/%s", c.cfg.BaseURL, c.cfg.Region)
	body, err := c.http.Get(ctx, pageURL, c.headers())
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse landing page: %w", err)
	}

	if raw := doc.Find(`script#serialized-server-data[type="application/json"]`).Text(); raw != "" {
		var data any
		if err := json.Unmarshal([]byte(raw), &data); err == nil {
			if token := findString(data, "developerToken"); token != "" {
				return token, nil
			}
		}
	}

	token := ""
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := developerTokenPattern.FindStringSubmatch(s.Text()); m != nil {
			token = m[1]
			return false
		}
		return true
	})
	if token == "" {
		return "", fmt.Errorf("no developer token in landing page")
	}
	return token, nil
}
