package segments_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailgrab/internal/fetch"
	"trailgrab/internal/segments"
)

// segmentServer serves a media playlist plus the given segment payloads.
func segmentServer(t *testing.T, payloads [][]byte, failPaths map[string]bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	var playlist strings.Builder
	playlist.WriteString("#EXTM3U\n#EXT-X-TARGETDURATION:6\n")
	for i := range payloads {
		fmt.Fprintf(&playlist, "#EXTINF:6.0,\nsegment%d.m4s\n", i)
	}
	playlist.WriteString("#EXT-X-ENDLIST\n")

	mux.HandleFunc("/prog_index.m3u8", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(playlist.String()))
	})
	for i, payload := range payloads {
		path := fmt.Sprintf("/segment%d.m4s", i)
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if failPaths[r.URL.Path] {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write(payload)
		})
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newDownloader(fs afero.Fs, workers int) *segments.Downloader {
	client := fetch.New(5*time.Second, nil)
	return segments.New(client, fs, workers, nil)
}

func TestDownloadReassemblesInOrder(t *testing.T) {
	original := []byte("the quick brown fox jumps over the lazy dog, twice over")
	payloads := [][]byte{original[:10], original[10:11], original[11:30], original[30:]}
	server := segmentServer(t, payloads, nil)

	fs := afero.NewMemMapFs()
	err := newDownloader(fs, 3).Download(t.Context(), server.URL+"/prog_index.m3u8", "/out/video.m4s")
	require.NoError(t, err)

	got, err := afero.ReadFile(fs, "/out/video.m4s")
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestDownloadFailsWhenAnySegmentFails(t *testing.T) {
	payloads := [][]byte{[]byte("aaa"), []byte("bbb"), []byte("ccc")}
	server := segmentServer(t, payloads, map[string]bool{"/segment1.m4s": true})

	fs := afero.NewMemMapFs()
	err := newDownloader(fs, 2).Download(t.Context(), server.URL+"/prog_index.m3u8", "/out/video.m4s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "segment")

	exists, statErr := afero.Exists(fs, "/out/video.m4s")
	require.NoError(t, statErr)
	assert.False(t, exists, "no output file on failure")
}

func TestDownloadCleansUpTempFiles(t *testing.T) {
	payloads := [][]byte{[]byte("aaa"), []byte("bbb")}
	server := segmentServer(t, payloads, nil)

	fs := afero.NewMemMapFs()
	err := newDownloader(fs, 2).Download(t.Context(), server.URL+"/prog_index.m3u8", "/out/video.m4s")
	require.NoError(t, err)

	var leftover []string
	afero.Walk(fs, "/", func(path string, info os.FileInfo, err error) error {
		if err == nil && info != nil && !info.IsDir() && strings.Contains(path, "trailgrab-segments-") {
			leftover = append(leftover, path)
		}
		return nil
	})
	assert.Empty(t, leftover)
}

func TestDownloadEmptyPlaylist(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/prog_index.m3u8", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTM3U\n#EXT-X-ENDLIST\n"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fs := afero.NewMemMapFs()
	err := newDownloader(fs, 2).Download(t.Context(), server.URL+"/prog_index.m3u8", "/out/video.m4s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no segments")
}

func TestDownloadBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	payloads := make([][]byte, 12)
	for i := range payloads {
		payloads[i] = []byte(fmt.Sprintf("segment-%d", i))
	}

	mux := http.NewServeMux()
	var playlist strings.Builder
	playlist.WriteString("#EXTM3U\n")
	for i := range payloads {
		fmt.Fprintf(&playlist, "#EXTINF:6.0,\nsegment%d.m4s\n", i)
	}
	mux.HandleFunc("/prog_index.m3u8", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(playlist.String()))
	})
	for i, payload := range payloads {
		mux.HandleFunc(fmt.Sprintf("/segment%d.m4s", i), func(w http.ResponseWriter, r *http.Request) {
			current := inFlight.Add(1)
			for {
				p := peak.Load()
				if current <= p || peak.CompareAndSwap(p, current) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
			w.Write(payload)
		})
	}
	server := httptest.NewServer(mux)
	defer server.Close()

	fs := afero.NewMemMapFs()
	err := newDownloader(fs, 3).Download(t.Context(), server.URL+"/prog_index.m3u8", "/out/video.m4s")
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}
