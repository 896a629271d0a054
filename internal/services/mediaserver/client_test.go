package mediaserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"trailgrab/internal/config"
	"trailgrab/internal/services/mediaserver"
)

func TestJellyfinRefreshSendsTokenHeader(t *testing.T) {
	var gotPath, gotToken, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Emby-Token")
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := mediaserver.NewClient(config.MediaServer{
		Name:    "main",
		Type:    "jellyfin",
		URL:     server.URL,
		APIKey:  "secret",
		Enabled: true,
	}, server.Client())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if err := client.RefreshLibrary(context.Background()); err != nil {
		t.Fatalf("RefreshLibrary failed: %v", err)
	}
	if gotPath != "/Library/Refresh" {
		t.Fatalf("path = %q, want /Library/Refresh", gotPath)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("method = %q, want POST", gotMethod)
	}
	if gotToken != "secret" {
		t.Fatalf("token header = %q, want secret", gotToken)
	}
}

func TestEmbySharesJellyfinProtocol(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Emby-Token")
	}))
	defer server.Close()

	client, err := mediaserver.NewClient(config.MediaServer{
		Name:   "emby box",
		Type:   "emby",
		URL:    server.URL,
		APIKey: "emby-key",
	}, server.Client())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if err := client.TestConnection(context.Background()); err != nil {
		t.Fatalf("TestConnection failed: %v", err)
	}
	if gotToken != "emby-key" {
		t.Fatalf("token header = %q, want emby-key", gotToken)
	}
	if client.Type() != "emby" {
		t.Fatalf("type = %q, want emby", client.Type())
	}
}

func TestPlexUsesPlexTokenHeader(t *testing.T) {
	var gotPath, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Plex-Token")
	}))
	defer server.Close()

	client, err := mediaserver.NewClient(config.MediaServer{
		Name:   "plex",
		Type:   "plex",
		URL:    server.URL,
		APIKey: "plex-token",
	}, server.Client())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if err := client.RefreshLibrary(context.Background()); err != nil {
		t.Fatalf("RefreshLibrary failed: %v", err)
	}
	if gotPath != "/library/sections/all/refresh" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotToken != "plex-token" {
		t.Fatalf("token header = %q, want plex-token", gotToken)
	}
}

func TestRefreshReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "library locked", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := mediaserver.NewClient(config.MediaServer{
		Name:   "broken",
		Type:   "jellyfin",
		URL:    server.URL,
		APIKey: "key",
	}, server.Client())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if err := client.RefreshLibrary(context.Background()); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestNewClientValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.MediaServer
	}{
		{"unknown type", config.MediaServer{Name: "x", Type: "kodi", URL: "http://localhost", APIKey: "k"}},
		{"missing url", config.MediaServer{Name: "x", Type: "plex", APIKey: "k"}},
		{"missing key", config.MediaServer{Name: "x", Type: "plex", URL: "http://localhost"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := mediaserver.NewClient(tc.cfg, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
