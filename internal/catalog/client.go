package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"trailgrab/internal/config"
	"trailgrab/internal/fetch"
	"trailgrab/internal/logging"
	"trailgrab/internal/services"
)

// TrailerInfo is the resolved metadata for one trailer.
type TrailerInfo struct {
	HLSURL       string
	VideoTitle   string
	ContentTitle string
	ReleaseDate  string
	Description  string
	Genres       []string
	CoverURL     string
	SourceID     string
}

// ContentRef identifies one piece of catalog content. It is built once from
// a URL and passed by value; nothing mutates it between calls.
type ContentRef struct {
	Kind string // "movie" or "show"
	ID   string
}

// Client talks to the catalog API.
type Client struct {
	cfg    config.Catalog
	http   *fetch.Client
	token  string
	logger *slog.Logger
}

// NewClient builds a catalog client. Call Authenticate before issuing
// requests that benefit from a token.
func NewClient(cfg config.Catalog, httpClient *fetch.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logging.NewComponentLogger(logger, "catalog"),
	}
}

// Authenticate obtains an access token from the storefront page. Failure is
// not fatal; requests proceed unauthenticated and the API answers a reduced
// but sufficient subset.
func (c *Client) Authenticate(ctx context.Context) {
	token, err := c.fetchToken(ctx)
	if err != nil {
		c.logger.Warn("no access token, continuing unauthenticated", logging.Error(err))
		return
	}
	c.token = token
}

func (c *Client) headers() map[string]string {
	h := map[string]string{
		"Content-Type":    "application/json",
		"Accept-Language": "en-US,en;q=0.9",
		"Origin":          c.cfg.BaseURL,
		"Referer":         c.cfg.BaseURL + "/",
	}
	if c.token != "" {
		h["Authorization"] = "Bearer " + c.token
	}
	return h
}

// apiParams are the fixed query parameters the catalog web player sends.
func (c *Client) apiParams() url.Values {
	return url.Values{
		"caller": {"web"},
		"locale": {c.cfg.Locale},
		"pfm":    {"appletv"},
		"sf":     {c.cfg.Storefront},
		"utscf":  {"OjAAAAAAAAA~"},
		"utsk":   {"6e3013c6d6fae3c2::::::235656c069bb0efb"},
		"v":      {"72"},
	}
}

// BaseURL returns the configured catalog base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *Client) RequestTimeout() time.Duration {
	return time.Duration(c.cfg.RequestTimeout) * time.Second
}

// ContentURL builds a canonical content URL for a bare content id.
func (c *Client) ContentURL(kind, id string) string {
	return ContentURLFor(c.cfg, kind, id)
}

// ContentURLFor builds a canonical content URL for a bare content id
// without needing a client.
func ContentURLFor(cfg config.Catalog, kind, id string) string {
	return fmt.Sprintf("%s/%s/%s/-/%s", cfg.BaseURL, cfg.Region, kind, id)
}

// IsContentID reports whether s is a bare catalog content identifier
// rather than a URL.
func IsContentID(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "umc.")
}

// PageURL builds a guessable content page URL from a slug.
func (c *Client) PageURL(kind, slug string) string {
	return fmt.Sprintf("%s/%s/%s/%s", c.cfg.BaseURL, c.cfg.Region, kind, slug)
}

// ParseContentURL extracts the content kind and id from a catalog URL.
// Episode and season URLs collapse to their show; clip URLs resolve through
// their target id.
func (c *Client) ParseContentURL(rawURL string) (ContentRef, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ContentRef{}, services.Wrap(services.ErrValidation, "catalog", "parse url", rawURL, err)
	}

	baseHost := ""
	if base, err := url.Parse(c.cfg.BaseURL); err == nil {
		baseHost = base.Host
	}
	if parsed.Host != baseHost {
		return ContentRef{}, services.Wrap(services.ErrValidation, "catalog", "parse url", rawURL,
			fmt.Errorf("host %q is not the catalog host %q", parsed.Host, baseHost))
	}

	parts := splitPath(parsed.Path)
	if len(parts) < 3 {
		return ContentRef{}, services.Wrap(services.ErrValidation, "catalog", "parse url", rawURL,
			fmt.Errorf("path %q has no content id", parsed.Path))
	}

	ref := ContentRef{
		Kind: parts[1],
		ID:   parts[len(parts)-1],
	}

	query := parsed.Query()
	switch ref.Kind {
	case "episode", "season":
		ref.Kind = "show"
		if showID := query.Get("showId"); showID != "" {
			ref.ID = showID
		}
	case "clip":
		if targetID := query.Get("targetId"); targetID != "" {
			ref.ID = targetID
			ref.Kind = "movie"
			if targetType := query.Get("targetType"); targetType != "" {
				ref.Kind = strings.ToLower(targetType)
			}
		}
	}
	return ref, nil
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// contentData fetches the raw API document for a content ref.
func (c *Client) contentData(ctx context.Context, ref ContentRef) (map[string]any, error) {
	apiURL := fmt.Sprintf("%s/api/uts/v3/%ss/%s?%s", c.cfg.BaseURL, ref.Kind, ref.ID, c.apiParams().Encode())

	var doc map[string]any
	if err := c.http.GetJSON(ctx, apiURL, c.headers(), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DefaultTrailer resolves a content URL to its primary trailer.
func (c *Client) DefaultTrailer(ctx context.Context, contentURL string) (*TrailerInfo, error) {
	ref, err := c.ParseContentURL(contentURL)
	if err != nil {
		return nil, err
	}
	doc, err := c.contentData(ctx, ref)
	if err != nil {
		return nil, err
	}
	info := parseDefaultTrailer(doc, ref.ID)
	if info == nil {
		return nil, services.Wrap(services.ErrParse, "catalog", "default trailer", contentURL,
			fmt.Errorf("no playable video in response"))
	}
	return info, nil
}

// Trailers resolves a content URL to every trailer its page lists, falling
// back to the default trailer when the trailer shelf is absent.
func (c *Client) Trailers(ctx context.Context, contentURL string) ([]*TrailerInfo, error) {
	ref, err := c.ParseContentURL(contentURL)
	if err != nil {
		return nil, err
	}
	doc, err := c.contentData(ctx, ref)
	if err != nil {
		return nil, err
	}

	trailers := parseShelfTrailers(doc, ref.ID)
	if len(trailers) == 0 {
		if info := parseDefaultTrailer(doc, ref.ID); info != nil {
			trailers = append(trailers, info)
		}
	}
	if len(trailers) == 0 {
		return nil, services.Wrap(services.ErrParse, "catalog", "trailers", contentURL,
			fmt.Errorf("no playable video in response"))
	}
	return trailers, nil
}
