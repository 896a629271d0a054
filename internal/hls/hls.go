package hls

import (
	"context"
	"fmt"
	"net/url"

	"trailgrab/internal/fetch"
	"trailgrab/internal/services"
)

// VideoStream describes one variant video rendition.
type VideoStream struct {
	VideoRange string // SDR, HDR, or DoVi
	FPS        float64
	Codec      string // AVC or HEVC, or the raw codec string if unrecognized
	Width      int
	Height     int
	Bitrate    string // "2.45 Mb/s"
	URI        string // absolute
}

// AudioStream describes one alternate audio rendition.
type AudioStream struct {
	Name       string
	Language   string // tag from the playlist, "und" when absent
	IsAD       bool   // accessibility description track
	IsOriginal bool
	Channels   string
	Codec      string // Atmos, DD5.1, HE-AAC, or AAC
	Bitrate    string // "160 Kb/s"
	URI        string // absolute
}

// SubtitleStream describes one alternate subtitle rendition.
type SubtitleStream struct {
	Name     string
	Language string
	IsForced bool
	IsSDH    bool
	URI      string // absolute
}

// Streams holds every rendition found in a master playlist.
type Streams struct {
	Video    []VideoStream
	Audio    []AudioStream
	Subtitle []SubtitleStream
}

// Load fetches and parses a master playlist.
func Load(ctx context.Context, client *fetch.Client, manifestURL string) (*Streams, error) {
	body, err := client.Get(ctx, manifestURL, nil)
	if err != nil {
		return nil, err
	}
	streams, err := ParseMaster(body, manifestURL)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "manifest", "parse", manifestURL, err)
	}
	return streams, nil
}

// LoadSegments fetches a rendition's media playlist and returns its segment
// URIs in download order.
func LoadSegments(ctx context.Context, client *fetch.Client, playlistURL string) ([]string, error) {
	body, err := client.Get(ctx, playlistURL, nil)
	if err != nil {
		return nil, err
	}
	segments, err := ParseMediaPlaylist(body, playlistURL)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "manifest", "segments", playlistURL, err)
	}
	return segments, nil
}

// resolveURI makes uri absolute against base. Already-absolute URIs pass
// through untouched.
func resolveURI(base, uri string) (string, error) {
	ref, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse uri %q: %w", uri, err)
	}
	if ref.IsAbs() {
		return uri, nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base %q: %w", base, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// uriPath returns just the path component, used for duplicate detection.
// Manifests repeat a rendition under different query parameters when only
// the bitrate bucket differs.
func uriPath(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return parsed.Path
}
