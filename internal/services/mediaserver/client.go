package mediaserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"trailgrab/internal/config"
)

// HTTPDoer describes the HTTP client used by media server clients.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs operations against one media server.
type Client interface {
	Name() string
	Type() string
	URL() string
	TestConnection(ctx context.Context) error
	RefreshLibrary(ctx context.Context) error
}

// NewClient builds a client for one configured media server.
func NewClient(cfg config.MediaServer, doer HTTPDoer) (Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	apiKey := strings.TrimSpace(cfg.APIKey)
	if baseURL == "" {
		return nil, fmt.Errorf("media server %q has no URL", cfg.Name)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("media server %q has no API key", cfg.Name)
	}
	if doer == nil {
		doer = &http.Client{Timeout: 10 * time.Second}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "emby", "jellyfin":
		return &embyClient{
			name:       cfg.Name,
			serverType: strings.ToLower(strings.TrimSpace(cfg.Type)),
			baseURL:    baseURL,
			apiKey:     apiKey,
			client:     doer,
		}, nil
	case "plex":
		return &plexClient{
			name:    cfg.Name,
			baseURL: baseURL,
			token:   apiKey,
			client:  doer,
		}, nil
	default:
		return nil, fmt.Errorf("unknown media server type %q", cfg.Type)
	}
}

// embyClient speaks the shared Emby/Jellyfin API.
type embyClient struct {
	name       string
	serverType string
	baseURL    string
	apiKey     string
	client     HTTPDoer
}

func (c *embyClient) Name() string { return c.name }

func (c *embyClient) Type() string { return c.serverType }

func (c *embyClient) URL() string { return c.baseURL }

func (c *embyClient) TestConnection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/System/Info", nil)
	if err != nil {
		return fmt.Errorf("build %s info request: %w", c.serverType, err)
	}
	req.Header.Set("X-Emby-Token", c.apiKey)
	return checkResponse(c.client, req, c.serverType+" info")
}

func (c *embyClient) RefreshLibrary(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/Library/Refresh", nil)
	if err != nil {
		return fmt.Errorf("build %s refresh request: %w", c.serverType, err)
	}
	req.Header.Set("X-Emby-Token", c.apiKey)
	return checkResponse(c.client, req, c.serverType+" refresh")
}

type plexClient struct {
	name    string
	baseURL string
	token   string
	client  HTTPDoer
}

func (c *plexClient) Name() string { return c.name }

func (c *plexClient) Type() string { return "plex" }

func (c *plexClient) URL() string { return c.baseURL }

func (c *plexClient) TestConnection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/identity", nil)
	if err != nil {
		return fmt.Errorf("build plex identity request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/json")
	return checkResponse(c.client, req, "plex identity")
}

func (c *plexClient) RefreshLibrary(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/library/sections/all/refresh", nil)
	if err != nil {
		return fmt.Errorf("build plex refresh request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	return checkResponse(c.client, req, "plex refresh")
}

func checkResponse(client HTTPDoer, req *http.Request, operation string) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return fmt.Errorf("%s returned %d: %s", operation, resp.StatusCode, msg)
		}
		return fmt.Errorf("%s returned %d", operation, resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
