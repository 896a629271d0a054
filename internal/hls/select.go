package hls

import (
	"sort"
	"strconv"
	"strings"

	"trailgrab/internal/language"
)

// Select picks the video and audio renditions to download.
//
// Video: highest resolution whose height fits under maxHeight (0 means
// unbounded); when every stream exceeds the cap, the lowest-resolution
// stream is used instead of failing. Audio: accessibility-description
// tracks are avoided when an alternative exists, the preferred language
// wins when available, and ties resolve to the highest bitrate.
//
// Both results are nil only when the manifest has no video streams.
func Select(streams *Streams, maxHeight int, preferredLanguage string) (*VideoStream, *AudioStream) {
	if streams == nil || len(streams.Video) == 0 {
		return nil, nil
	}

	video := append([]VideoStream(nil), streams.Video...)
	sort.SliceStable(video, func(i, j int) bool {
		return video[i].Width*video[i].Height > video[j].Width*video[j].Height
	})

	var selectedVideo *VideoStream
	for i := range video {
		if maxHeight == 0 || video[i].Height <= maxHeight {
			selectedVideo = &video[i]
			break
		}
	}
	if selectedVideo == nil {
		selectedVideo = &video[len(video)-1]
	}

	if len(streams.Audio) == 0 {
		return selectedVideo, nil
	}

	audio := append([]AudioStream(nil), streams.Audio...)
	if filtered := filterAudio(audio, func(a AudioStream) bool { return !a.IsAD }); len(filtered) > 0 {
		audio = filtered
	}
	if filtered := filterAudio(audio, func(a AudioStream) bool {
		return language.Matches(preferredLanguage, a.Language)
	}); len(filtered) > 0 {
		audio = filtered
	}
	sort.SliceStable(audio, func(i, j int) bool {
		return bitrateKbps(audio[i].Bitrate) > bitrateKbps(audio[j].Bitrate)
	})
	return selectedVideo, &audio[0]
}

func filterAudio(streams []AudioStream, keep func(AudioStream) bool) []AudioStream {
	var out []AudioStream
	for _, s := range streams {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// bitrateKbps parses bitrate strings like "160 Kb/s" or "2.45 Mb/s" into
// kb/s for comparison. Unparseable strings compare as 0.
func bitrateKbps(bitrate string) int {
	fields := strings.Fields(bitrate)
	if len(fields) == 0 {
		return 0
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	if strings.Contains(bitrate, "Mb") {
		value *= 1000
	}
	return int(value)
}
