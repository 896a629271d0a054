package remux

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"trailgrab/internal/config"
)

func TestBuildArgsCopyBoth(t *testing.T) {
	profile := config.Profile{VideoCodec: "copy", AudioCodec: "copy"}
	args, err := BuildArgs("/tmp/v.ts", "/tmp/a.ts", "/tmp/out.mkv", profile)
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	want := []string{
		"-y",
		"-i", "/tmp/v.ts",
		"-i", "/tmp/a.ts",
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "copy",
		"-c:a", "copy",
		"/tmp/out.mkv",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
}

func TestBuildArgsReencode(t *testing.T) {
	profile := config.Profile{VideoCodec: "h264", AudioCodec: "aac"}
	args, err := BuildArgs("/tmp/v.ts", "/tmp/a.ts", "/tmp/out.mkv", profile)
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	joined := strings.Join(args, " ")
	for _, fragment := range []string{
		"-c:v libx264",
		"-preset fast -crf 22",
		"-c:a aac -b:a 128k",
	} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("args missing %q: %s", fragment, joined)
		}
	}
}

func TestBuildArgsAudioLanguageMetadata(t *testing.T) {
	profile := config.Profile{VideoCodec: "copy", AudioCodec: "copy", AudioLanguage: "en-US"}
	args, err := BuildArgs("/tmp/v.ts", "/tmp/a.ts", "/tmp/out.mkv", profile)
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-metadata:s:a:0 language=eng") {
		t.Errorf("audio language metadata missing: %s", joined)
	}

	profile.AudioLanguage = ""
	args, err = BuildArgs("/tmp/v.ts", "/tmp/a.ts", "/tmp/out.mkv", profile)
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	if strings.Contains(strings.Join(args, " "), "-metadata") {
		t.Errorf("metadata flag present without a language: %v", args)
	}
}

func TestBuildArgsNoPresetForVP9(t *testing.T) {
	profile := config.Profile{VideoCodec: "vp9", AudioCodec: "copy"}
	args, err := BuildArgs("/tmp/v.ts", "", "/tmp/out.mkv", profile)
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-c:v libvpx-vp9") {
		t.Errorf("args = %s", joined)
	}
	if strings.Contains(joined, "-crf") {
		t.Errorf("crf preset applied to vp9: %s", joined)
	}
}

func TestBuildArgsVideoOnly(t *testing.T) {
	profile := config.Profile{VideoCodec: "copy", AudioCodec: "copy"}
	args, err := BuildArgs("/tmp/v.ts", "", "/tmp/out.mkv", profile)
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	joined := strings.Join(args, " ")
	if strings.Contains(joined, ":a") {
		t.Errorf("audio mapping present with no audio input: %s", joined)
	}
	if !strings.Contains(joined, "-map 0:v") {
		t.Errorf("args = %s", joined)
	}
}

func TestBuildArgsAudioOnly(t *testing.T) {
	profile := config.Profile{VideoCodec: "copy", AudioCodec: "copy"}
	args, err := BuildArgs("", "/tmp/a.ts", "/tmp/out.mkv", profile)
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-map 0:a") {
		t.Errorf("args = %s", joined)
	}
}

func TestBuildArgsErrors(t *testing.T) {
	profile := config.Profile{VideoCodec: "copy", AudioCodec: "copy"}
	if _, err := BuildArgs("", "", "/tmp/out.mkv", profile); err == nil {
		t.Error("expected error with no inputs")
	}
	if _, err := BuildArgs("/tmp/v.ts", "", "", profile); err == nil {
		t.Error("expected error with no output")
	}
	bad := config.Profile{VideoCodec: "xvid", AudioCodec: "copy"}
	if _, err := BuildArgs("/tmp/v.ts", "", "/tmp/out.mkv", bad); err == nil {
		t.Error("expected error for unknown codec")
	}
}

// TestHelperProcess stands in for ffmpeg in Mux tests.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	if os.Getenv("HELPER_FAIL") == "1" {
		fmt.Fprintln(os.Stderr, "simulated encoder failure")
		os.Exit(1)
	}
	if output := os.Getenv("HELPER_OUTPUT"); output != "" {
		os.WriteFile(output, []byte("muxed"), 0o644)
	}
	os.Exit(0)
}

func stubCommand(t *testing.T, env ...string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), append([]string{"GO_WANT_HELPER_PROCESS=1"}, env...)...)
		return cmd
	}
	t.Cleanup(func() { commandContext = original })
}

func TestMuxSuccess(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.mkv")
	stubCommand(t, "HELPER_OUTPUT="+output)

	r := New(config.FFmpeg{TimeoutMinutes: 1}, nil)
	profile := config.Profile{VideoCodec: "copy", AudioCodec: "copy"}
	if err := r.Mux(t.Context(), "/tmp/v.ts", "/tmp/a.ts", output, profile); err != nil {
		t.Fatalf("Mux: %v", err)
	}
}

func TestMuxNonZeroExit(t *testing.T) {
	stubCommand(t, "HELPER_FAIL=1")

	r := New(config.FFmpeg{TimeoutMinutes: 1}, nil)
	profile := config.Profile{VideoCodec: "copy", AudioCodec: "copy"}
	err := r.Mux(t.Context(), "/tmp/v.ts", "", filepath.Join(t.TempDir(), "out.mkv"), profile)
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "simulated encoder failure") {
		t.Fatalf("error does not carry stderr: %v", err)
	}
}

func TestMuxMissingOutput(t *testing.T) {
	stubCommand(t)

	r := New(config.FFmpeg{TimeoutMinutes: 1}, nil)
	profile := config.Profile{VideoCodec: "copy", AudioCodec: "copy"}
	err := r.Mux(t.Context(), "/tmp/v.ts", "", filepath.Join(t.TempDir(), "out.mkv"), profile)
	if err == nil {
		t.Fatal("expected error when ffmpeg produces no output")
	}
	if !strings.Contains(err.Error(), "no output") {
		t.Fatalf("unexpected error: %v", err)
	}
}
