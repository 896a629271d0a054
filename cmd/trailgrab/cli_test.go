package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

// isolateHome points HOME at a temp dir so default config and data paths
// stay inside the test sandbox.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestConfigInitAndValidate(t *testing.T) {
	isolateHome(t)

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestMediaAddListRemove(t *testing.T) {
	isolateHome(t)

	out, _, err := runCLI(t, "media", "add", "Interstellar", "--year", "2014")
	if err != nil {
		t.Fatalf("media add: %v", err)
	}
	requireContains(t, out, `Added "Interstellar"`)

	out, _, err = runCLI(t, "media", "list")
	if err != nil {
		t.Fatalf("media list: %v", err)
	}
	requireContains(t, out, "Interstellar")
	requireContains(t, out, "2014")
	requireContains(t, out, "missing")

	out, _, err = runCLI(t, "media", "list", "--status", "downloaded")
	if err != nil {
		t.Fatalf("media list --status: %v", err)
	}
	requireContains(t, out, "No media items")

	if _, _, err := runCLI(t, "media", "list", "--status", "bogus"); err == nil {
		t.Fatal("expected unknown status to fail")
	}

	out, _, err = runCLI(t, "media", "remove", "1")
	if err != nil {
		t.Fatalf("media remove: %v", err)
	}
	requireContains(t, out, "Removed")

	if _, _, err := runCLI(t, "media", "remove", "1"); err == nil {
		t.Fatal("expected removing a missing item to fail")
	}
}

func TestProfileSaveAndList(t *testing.T) {
	isolateHome(t)

	_, _, err := runCLI(t, "profile", "save", "compact",
		"--max-resolution", "720", "--language", "de", "--container", "webm")
	if err != nil {
		t.Fatalf("profile save: %v", err)
	}

	out, _, err := runCLI(t, "profile", "list")
	if err != nil {
		t.Fatalf("profile list: %v", err)
	}
	requireContains(t, out, "compact")
	requireContains(t, out, "720p")
	requireContains(t, out, "webm")

	out, _, err = runCLI(t, "profile", "remove", "compact")
	if err != nil {
		t.Fatalf("profile remove: %v", err)
	}
	requireContains(t, out, "Removed")
}

func TestHistoryEmpty(t *testing.T) {
	isolateHome(t)

	out, _, err := runCLI(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No download attempts")
}

func TestStatusReportsDirectories(t *testing.T) {
	isolateHome(t)

	out, _, err := runCLI(t, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "System Status")
	requireContains(t, out, "Staging directory")
	requireContains(t, out, "Dependencies")
	requireContains(t, out, "FFmpeg")
}
