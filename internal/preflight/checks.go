package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"trailgrab/internal/config"
	"trailgrab/internal/deps"
	"trailgrab/internal/services/mediaserver"
)

// CheckMediaServer verifies connectivity and authentication for one server.
func CheckMediaServer(ctx context.Context, server config.MediaServer) Result {
	name := strings.TrimSpace(server.Name)
	if name == "" {
		name = server.Type
	}

	client, err := mediaserver.NewClient(server, nil)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.TestConnection(checkCtx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("connection check failed (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries a download run needs.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	ffmpegPath := ""
	if cfg != nil {
		ffmpegPath = cfg.FFmpeg.Path
	}
	return []deps.Status{deps.CheckFFmpeg(ffmpegPath)}
}
