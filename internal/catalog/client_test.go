package catalog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trailgrab/internal/config"
	"trailgrab/internal/fetch"
)

func testConfig(baseURL string) config.Catalog {
	return config.Catalog{
		BaseURL:        baseURL,
		Storefront:     "143441",
		Locale:         "en-US",
		Region:         "us",
		RequestTimeout: 5,
	}
}

func testClient(baseURL string) *Client {
	return NewClient(testConfig(baseURL), fetch.New(5*time.Second, nil), nil)
}

func TestParseContentURL(t *testing.T) {
	c := testClient("https://tv.apple.com")

	tests := []struct {
		name     string
		url      string
		wantKind string
		wantID   string
		wantErr  bool
	}{
		{
			name:     "movie url",
			url:      "https://tv.apple.com/us/movie/tron-ares/umc.cmc.abc123",
			wantKind: "movie",
			wantID:   "umc.cmc.abc123",
		},
		{
			name:     "scheme added when missing",
			url:      "tv.apple.com/us/movie/tron-ares/umc.cmc.abc123",
			wantKind: "movie",
			wantID:   "umc.cmc.abc123",
		},
		{
			name:     "episode collapses to show",
			url:      "https://tv.apple.com/us/episode/pilot/umc.cmc.ep1?showId=umc.cmc.show9",
			wantKind: "show",
			wantID:   "umc.cmc.show9",
		},
		{
			name:     "season collapses to show",
			url:      "https://tv.apple.com/us/season/one/umc.cmc.s1?showId=umc.cmc.show9",
			wantKind: "show",
			wantID:   "umc.cmc.show9",
		},
		{
			name:     "clip resolves through target",
			url:      "https://tv.apple.com/us/clip/teaser/umc.cmc.clip1?targetId=umc.cmc.target&targetType=Movie",
			wantKind: "movie",
			wantID:   "umc.cmc.target",
		},
		{
			name:    "wrong host",
			url:     "https://example.com/us/movie/tron-ares/umc.cmc.abc123",
			wantErr: true,
		},
		{
			name:    "path too short",
			url:     "https://tv.apple.com/us",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := c.ParseContentURL(tc.url)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseContentURL: %v", err)
			}
			if ref.Kind != tc.wantKind || ref.ID != tc.wantID {
				t.Fatalf("ref = %+v, want kind=%s id=%s", ref, tc.wantKind, tc.wantID)
			}
		})
	}
}

func TestContentAndPageURLs(t *testing.T) {
	c := testClient("https://tv.apple.com")
	if got := c.ContentURL("movie", "umc.cmc.1"); got != "https://tv.apple.com/us/movie/-/umc.cmc.1" {
		t.Fatalf("ContentURL = %q", got)
	}
	if got := c.PageURL("show", "test-show"); got != "https://tv.apple.com/us/show/test-show" {
		t.Fatalf("PageURL = %q", got)
	}
}

func TestIsContentID(t *testing.T) {
	cases := map[string]bool{
		"umc.cmc.4h5l1s6pb3e9pazdmdtsnc9c7": true,
		"  umc.cmc.1  ":                    true,
		"https://tv.apple.com/us/movie/test/umc.cmc.1": false,
		"tv.apple.com/us/movie/test/umc.cmc.1":         false,
		"": false,
	}
	for input, want := range cases {
		if got := IsContentID(input); got != want {
			t.Fatalf("IsContentID(%q) = %v, want %v", input, got, want)
		}
	}
}

const contentResponse = `{
	"data": {
		"content": {
			"title": "TRON: Ares",
			"description": "A program enters the real world.",
			"releaseDate": 1760054400000,
			"genres": [{"name": "Sci-Fi"}, {"name": "Action"}],
			"backgroundVideo": {
				"title": "Official Trailer",
				"assets": {"hlsUrl": "https://cdn.example.com/tron/master.m3u8"},
				"images": {"contentImage": {"url": "https://img.example.com/{w}x{h}.{f}", "width": 1280, "height": 720}}
			}
		},
		"canvas": {
			"shelves": [
				{
					"title": "Trailers",
					"items": [
						{"title": "Official Trailer", "assets": {"hlsUrl": "https://cdn.example.com/tron/master.m3u8"}},
						{"title": "Teaser", "assets": {"hlsUrl": "https://cdn.example.com/tron/teaser.m3u8"}},
						{"title": "No assets here"}
					]
				}
			]
		}
	}
}`

func contentServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/uts/v3/movies/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sf") != "143441" {
			t.Errorf("missing storefront parameter")
		}
		w.Write([]byte(contentResponse))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestDefaultTrailer(t *testing.T) {
	server := contentServer(t)
	c := testClient(server.URL)

	host := strings.TrimPrefix(server.URL, "http://")
	info, err := c.DefaultTrailer(t.Context(), "http://"+host+"/us/movie/tron-ares/umc.cmc.abc123")
	if err != nil {
		t.Fatalf("DefaultTrailer: %v", err)
	}
	if info.HLSURL != "https://cdn.example.com/tron/master.m3u8" {
		t.Fatalf("hls url = %q", info.HLSURL)
	}
	if info.ContentTitle != "TRON: Ares" {
		t.Fatalf("content title = %q", info.ContentTitle)
	}
	if info.VideoTitle != "Official Trailer" {
		t.Fatalf("video title = %q", info.VideoTitle)
	}
	if info.SourceID != "umc.cmc.abc123" {
		t.Fatalf("source id = %q", info.SourceID)
	}
	if info.ReleaseDate != "2025-10-10" {
		t.Fatalf("release date = %q", info.ReleaseDate)
	}
	if len(info.Genres) != 2 || info.Genres[0] != "Sci-Fi" {
		t.Fatalf("genres = %v", info.Genres)
	}
	if info.CoverURL != "https://img.example.com/1280x720.jpg" {
		t.Fatalf("cover url = %q", info.CoverURL)
	}
}

func TestTrailersUsesShelf(t *testing.T) {
	server := contentServer(t)
	c := testClient(server.URL)

	host := strings.TrimPrefix(server.URL, "http://")
	trailers, err := c.Trailers(t.Context(), "http://"+host+"/us/movie/tron-ares/umc.cmc.abc123")
	if err != nil {
		t.Fatalf("Trailers: %v", err)
	}
	if len(trailers) != 2 {
		t.Fatalf("got %d trailers, want 2", len(trailers))
	}
	if trailers[1].HLSURL != "https://cdn.example.com/tron/teaser.m3u8" {
		t.Fatalf("second trailer = %q", trailers[1].HLSURL)
	}
}

func TestAuthenticateExtractsToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/us", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head>
<script type="application/json" id="serialized-server-data">[{"nested":{"deep":{"developerToken":"tok-123"}}}]</script>
</head><body></body></html>`))
	})
	mux.HandleFunc("/api/uts/v3/movies/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("authorization header = %q", got)
		}
		w.Write([]byte(contentResponse))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := testClient(server.URL)
	c.Authenticate(t.Context())

	host := strings.TrimPrefix(server.URL, "http://")
	if _, err := c.DefaultTrailer(t.Context(), "http://"+host+"/us/movie/x/umc.cmc.1"); err != nil {
		t.Fatalf("DefaultTrailer: %v", err)
	}
}

func TestAuthenticateScriptRegexFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/us", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
<script>window.config = {"api":{"developerToken":"tok-script"}};</script>
</body></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := testClient(server.URL)
	token, err := c.fetchToken(t.Context())
	if err != nil {
		t.Fatalf("fetchToken: %v", err)
	}
	if token != "tok-script" {
		t.Fatalf("token = %q", token)
	}
}

func TestAuthenticateMissingTokenIsNonFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/us", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>nothing here</body></html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := testClient(server.URL)
	c.Authenticate(t.Context())
	if c.token != "" {
		t.Fatalf("token = %q, want empty", c.token)
	}
}
