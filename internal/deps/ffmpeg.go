package deps

import "strings"

// ResolveFFmpegPath returns the ffmpeg binary trailgrab will execute. A
// configured path wins; otherwise "ffmpeg" is resolved from PATH.
func ResolveFFmpegPath(configured string) string {
	if path := strings.TrimSpace(configured); path != "" {
		return path
	}
	return "ffmpeg"
}

// CheckFFmpeg reports whether the ffmpeg binary the remuxer will use is
// actually runnable.
func CheckFFmpeg(configured string) Status {
	return CheckBinaries([]Requirement{{
		Name:        "FFmpeg",
		Command:     ResolveFFmpegPath(configured),
		Description: "Required for trailer remuxing",
	}})[0]
}
