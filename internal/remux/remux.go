// Package remux combines downloaded elementary streams into the final
// container file by driving an external ffmpeg process.
package remux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"trailgrab/internal/config"
	"trailgrab/internal/language"
	"trailgrab/internal/logging"
	"trailgrab/internal/services"
)

// videoEncoders maps symbolic codec names to ffmpeg encoder identifiers.
var videoEncoders = map[string]string{
	"h264": "libx264",
	"h265": "libx265",
	"vp8":  "libvpx",
	"vp9":  "libvpx-vp9",
	"av1":  "libaom-av1",
}

var audioEncoders = map[string]string{
	"aac":  "aac",
	"ac3":  "ac3",
	"eac3": "eac3",
	"mp3":  "libmp3lame",
	"flac": "flac",
	"opus": "libopus",
}

// commandContext is swapped by tests to observe the constructed command.
var commandContext = exec.CommandContext

// Remuxer invokes ffmpeg with a bounded timeout.
type Remuxer struct {
	ffmpegPath string
	timeout    time.Duration
	logger     *slog.Logger
}

// New returns a Remuxer. An empty ffmpegPath resolves "ffmpeg" from PATH at
// invocation time.
func New(cfg config.FFmpeg, logger *slog.Logger) *Remuxer {
	if logger == nil {
		logger = logging.NewNop()
	}
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = "ffmpeg"
	}
	timeout := time.Duration(cfg.TimeoutMinutes) * time.Minute
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}
	return &Remuxer{
		ffmpegPath: path,
		timeout:    timeout,
		logger:     logging.NewComponentLogger(logger, "remux"),
	}
}

// Available reports whether the configured ffmpeg binary can be resolved.
func (r *Remuxer) Available() (string, bool) {
	resolved, err := exec.LookPath(r.ffmpegPath)
	return resolved, err == nil
}

// Mux combines video and audio streams into outputPath. Either input may be
// empty, but not both. A non-zero ffmpeg exit is a hard failure carrying the
// tail of stderr.
func (r *Remuxer) Mux(ctx context.Context, videoPath, audioPath, outputPath string, profile config.Profile) error {
	args, err := BuildArgs(videoPath, audioPath, outputPath, profile)
	if err != nil {
		return services.Wrap(services.ErrValidation, "remux", "build args", outputPath, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.logger.Debug("invoking ffmpeg",
		logging.String("binary", r.ffmpegPath),
		logging.String("args", strings.Join(args, " ")))

	cmd := commandContext(ctx, r.ffmpegPath, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrExternalTool, "remux", "mux", outputPath,
				fmt.Errorf("ffmpeg timed out after %s", r.timeout))
		}
		return services.Wrap(services.ErrExternalTool, "remux", "mux", outputPath,
			fmt.Errorf("ffmpeg failed: %w: %s", err, tail(stderr.String(), 512)))
	}

	if _, err := os.Stat(outputPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "remux", "verify", outputPath,
			fmt.Errorf("ffmpeg exited cleanly but produced no output"))
	}
	return nil
}

// BuildArgs constructs the ffmpeg argument list for the given inputs and
// profile. Codec "copy" passes streams through; anything else selects an
// encoder from the lookup tables, with a fixed quality preset for
// re-encoded video.
func BuildArgs(videoPath, audioPath, outputPath string, profile config.Profile) ([]string, error) {
	if videoPath == "" && audioPath == "" {
		return nil, fmt.Errorf("no input streams")
	}
	if outputPath == "" {
		return nil, fmt.Errorf("no output path")
	}

	args := []string{"-y"}
	if videoPath != "" {
		args = append(args, "-i", videoPath)
	}
	if audioPath != "" {
		args = append(args, "-i", audioPath)
	}

	inputIndex := 0
	if videoPath != "" {
		args = append(args, "-map", fmt.Sprintf("%d:v", inputIndex))
		inputIndex++
	}
	if audioPath != "" {
		args = append(args, "-map", fmt.Sprintf("%d:a", inputIndex))
	}

	if videoPath != "" {
		if profile.VideoCodec == "copy" {
			args = append(args, "-c:v", "copy")
		} else {
			encoder, ok := videoEncoders[profile.VideoCodec]
			if !ok {
				return nil, fmt.Errorf("unknown video codec %q", profile.VideoCodec)
			}
			args = append(args, "-c:v", encoder)
			if profile.VideoCodec == "h264" || profile.VideoCodec == "h265" {
				args = append(args, "-preset", "fast", "-crf", "22")
			}
		}
	}

	if audioPath != "" {
		if profile.AudioCodec == "copy" {
			args = append(args, "-c:a", "copy")
		} else {
			encoder, ok := audioEncoders[profile.AudioCodec]
			if !ok {
				return nil, fmt.Errorf("unknown audio codec %q", profile.AudioCodec)
			}
			args = append(args, "-c:a", encoder, "-b:a", "128k")
		}
		if code := language.ToISO3(profile.AudioLanguage); code != language.Undetermined {
			args = append(args, "-metadata:s:a:0", "language="+code)
		}
	}

	return append(args, outputPath), nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
