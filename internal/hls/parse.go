package hls

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	tagHeader    = "#EXTM3U"
	tagStreamInf = "#EXT-X-STREAM-INF:"
	tagMedia     = "#EXT-X-MEDIA:"
	tagMap       = "#EXT-X-MAP:"
	tagInf       = "#EXTINF:"
)

// ErrNotPlaylist is returned when the input does not start with the
// playlist header.
var ErrNotPlaylist = errors.New("missing #EXTM3U header")

// ParseMaster parses a master playlist into rendition descriptors. URIs are
// resolved to absolute form against manifestURL.
func ParseMaster(data []byte, manifestURL string) (*Streams, error) {
	lines, err := playlistLines(data)
	if err != nil {
		return nil, err
	}

	streams := &Streams{}
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, tagStreamInf):
			attrs := parseAttributes(strings.TrimPrefix(line, tagStreamInf))
			// The variant URI is the next non-tag line.
			uri := ""
			for j := i + 1; j < len(lines); j++ {
				if !strings.HasPrefix(lines[j], "#") {
					uri = lines[j]
					i = j
					break
				}
			}
			if uri == "" {
				return nil, fmt.Errorf("variant entry at line %d has no uri", i+1)
			}
			absolute, err := resolveURI(manifestURL, uri)
			if err != nil {
				return nil, err
			}
			video := buildVideoStream(attrs, absolute)
			if n := len(streams.Video); n > 0 && uriPath(streams.Video[n-1].URI) == uriPath(absolute) {
				continue
			}
			streams.Video = append(streams.Video, video)

		case strings.HasPrefix(line, tagMedia):
			attrs := parseAttributes(strings.TrimPrefix(line, tagMedia))
			uri := attrs["URI"]
			absolute := ""
			if uri != "" {
				if absolute, err = resolveURI(manifestURL, uri); err != nil {
					return nil, err
				}
			}
			switch attrs["TYPE"] {
			case "AUDIO":
				audio := buildAudioStream(attrs, absolute)
				if n := len(streams.Audio); n > 0 && uriPath(streams.Audio[n-1].URI) == uriPath(absolute) {
					continue
				}
				streams.Audio = append(streams.Audio, audio)
			case "SUBTITLES":
				subtitle := buildSubtitleStream(attrs, absolute)
				if n := len(streams.Subtitle); n > 0 && uriPath(streams.Subtitle[n-1].URI) == uriPath(absolute) {
					continue
				}
				streams.Subtitle = append(streams.Subtitle, subtitle)
			}
		}
	}
	return streams, nil
}

// ParseMediaPlaylist parses a rendition playlist into an ordered list of
// absolute segment URIs. The initialization segment, when present, comes
// first. Repeated URIs are dropped.
func ParseMediaPlaylist(data []byte, playlistURL string) ([]string, error) {
	lines, err := playlistLines(data)
	if err != nil {
		return nil, err
	}

	var segments []string
	seen := make(map[string]bool)
	add := func(uri string) error {
		absolute, err := resolveURI(playlistURL, uri)
		if err != nil {
			return err
		}
		if seen[absolute] {
			return nil
		}
		seen[absolute] = true
		segments = append(segments, absolute)
		return nil
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, tagMap):
			attrs := parseAttributes(strings.TrimPrefix(line, tagMap))
			if uri := attrs["URI"]; uri != "" {
				if err := add(uri); err != nil {
					return nil, err
				}
			}
		case !strings.HasPrefix(line, "#"):
			if err := add(line); err != nil {
				return nil, err
			}
		}
	}
	return segments, nil
}

func playlistLines(data []byte) ([]string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 || lines[0] != tagHeader {
		return nil, ErrNotPlaylist
	}
	return lines, nil
}

func buildVideoStream(attrs map[string]string, uri string) VideoStream {
	codec := attrs["CODECS"]
	videoRange := attrs["VIDEO-RANGE"]
	if videoRange == "" {
		videoRange = "SDR"
	}
	if strings.Contains(videoRange, "PQ") {
		videoRange = "HDR"
	}
	lower := strings.ToLower(codec)
	switch {
	case strings.Contains(lower, "avc"):
		codec = "AVC"
	case strings.Contains(lower, "hvc"):
		codec = "HEVC"
	}
	// Dolby Vision signals through the codec string, overriding the range
	// attribute.
	if strings.Contains(lower, "dvh") {
		codec = "HEVC"
		videoRange = "DoVi"
	}

	width, height := parseResolution(attrs["RESOLUTION"])
	fps, _ := strconv.ParseFloat(attrs["FRAME-RATE"], 64)
	avg, _ := strconv.Atoi(attrs["AVERAGE-BANDWIDTH"])

	return VideoStream{
		VideoRange: videoRange,
		FPS:        fps,
		Codec:      codec,
		Width:      width,
		Height:     height,
		Bitrate:    formatMbps(avg),
		URI:        uri,
	}
}

func buildAudioStream(attrs map[string]string, uri string) AudioStream {
	characteristics := attrs["CHARACTERISTICS"]
	groupID := attrs["GROUP-ID"]

	codec := "AAC"
	lowerGroup := strings.ToLower(groupID)
	switch {
	case strings.Contains(lowerGroup, "atmos"):
		codec = "Atmos"
	case strings.Contains(lowerGroup, "ac3"):
		codec = "DD5.1"
	case strings.Contains(lowerGroup, "stereo"):
		if strings.Contains(groupID, "HE") {
			codec = "HE-AAC"
		}
	}

	// Audio playlists carry no bandwidth attribute; the bitrate bucket is
	// encoded in the URI instead. gr2448 is a 2448 kb/s source bucket that
	// delivers roughly 488 kb/s streams.
	bitrate := "0 Kb/s"
	switch {
	case strings.Contains(uri, "gr32"):
		bitrate = "32 Kb/s"
	case strings.Contains(uri, "gr64"):
		bitrate = "64 Kb/s"
	case strings.Contains(uri, "gr160"):
		bitrate = "160 Kb/s"
	case strings.Contains(uri, "gr384"):
		bitrate = "384 Kb/s"
	case strings.Contains(uri, "gr2448"):
		bitrate = "488 Kb/s"
	}

	lang := attrs["LANGUAGE"]
	if lang == "" {
		lang = "und"
	}
	channels := attrs["CHANNELS"]
	if channels == "" {
		channels = "2"
	}

	return AudioStream{
		Name:       attrs["NAME"],
		Language:   lang,
		IsAD:       strings.Contains(characteristics, "accessibility"),
		IsOriginal: strings.Contains(characteristics, "original-content"),
		Channels:   channels,
		Codec:      codec,
		Bitrate:    bitrate,
		URI:        uri,
	}
}

func buildSubtitleStream(attrs map[string]string, uri string) SubtitleStream {
	lang := attrs["LANGUAGE"]
	if lang == "" {
		lang = "und"
	}
	return SubtitleStream{
		Name:     attrs["NAME"],
		Language: lang,
		IsForced: attrs["FORCED"] == "YES",
		IsSDH:    strings.Contains(attrs["CHARACTERISTICS"], "accessibility"),
		URI:      uri,
	}
}

func parseResolution(value string) (int, int) {
	parts := strings.SplitN(strings.ToLower(value), "x", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	width, err1 := strconv.Atoi(parts[0])
	height, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return width, height
}

func formatMbps(bandwidth int) string {
	mbps := float64(bandwidth) / 1_000_000
	return strconv.FormatFloat(round2(mbps), 'f', -1, 64) + " Mb/s"
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// parseAttributes splits an attribute list like
// `BANDWIDTH=1000,CODECS="avc1.64001f",RESOLUTION=1280x720` into a map,
// honoring quoted values that contain commas.
func parseAttributes(list string) map[string]string {
	attrs := make(map[string]string)
	for i := 0; i < len(list); {
		eq := strings.IndexByte(list[i:], '=')
		if eq < 0 {
			break
		}
		key := strings.TrimSpace(list[i : i+eq])
		i += eq + 1

		var value string
		if i < len(list) && list[i] == '"' {
			end := strings.IndexByte(list[i+1:], '"')
			if end < 0 {
				value = list[i+1:]
				i = len(list)
			} else {
				value = list[i+1 : i+1+end]
				i += end + 2
			}
		} else {
			end := strings.IndexByte(list[i:], ',')
			if end < 0 {
				value = list[i:]
				i = len(list)
			} else {
				value = list[i : i+end]
				i += end
			}
		}
		if key != "" {
			attrs[key] = value
		}
		// Skip the separating comma.
		if i < len(list) && list[i] == ',' {
			i++
		}
	}
	return attrs
}
