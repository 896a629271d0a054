// Package trailerfile verifies finished trailers and moves them into the
// media library.
package trailerfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Filename returns the trailer filename for a media title and container.
func Filename(title, container string) string {
	cleaned := strings.TrimSpace(title)
	if cleaned == "" {
		cleaned = "Trailer"
	}
	// Strip characters that are unsafe in library filenames.
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "", "*", "", "?", "", "\"", "", "<", "", ">", "", "|", "")
	cleaned = strings.TrimSpace(replacer.Replace(cleaned))
	return fmt.Sprintf("%s - Trailer.%s", cleaned, strings.TrimPrefix(container, "."))
}

// Verify confirms the output file exists and meets the minimum size.
func Verify(path string, minSizeBytes int64) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("trailer file %q does not exist", path)
		}
		return fmt.Errorf("stat trailer file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("trailer path %q is a directory", path)
	}
	if minSizeBytes > 0 && info.Size() < minSizeBytes {
		return fmt.Errorf("trailer file %q is %d bytes, below minimum %d", path, info.Size(), minSizeBytes)
	}
	return nil
}

// Place moves a finished trailer into the target directory under the
// standard trailer filename and returns the final path. An existing trailer
// at the target path is replaced.
func Place(sourcePath, targetDir, title, container string) (string, error) {
	targetPath := filepath.Join(targetDir, Filename(title, container))
	if err := removeExistingTarget(targetPath); err != nil {
		return "", err
	}
	if err := Move(sourcePath, targetPath); err != nil {
		return "", err
	}
	return targetPath, nil
}

// Move relocates a file, falling back to copy-and-remove when source and
// target live on different filesystems.
func Move(sourcePath, targetPath string) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}
	if err := os.Rename(sourcePath, targetPath); err != nil {
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
			if err := copyFileContents(sourcePath, targetPath); err != nil {
				return fmt.Errorf("copy file across devices: %w", err)
			}
			if err := os.Remove(sourcePath); err != nil {
				return fmt.Errorf("remove source after copy: %w", err)
			}
			return nil
		}
		return fmt.Errorf("move file: %w", err)
	}
	return nil
}

func copyFileContents(sourcePath, targetPath string) error {
	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dest, err := os.OpenFile(targetPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(dest, source); err != nil {
		dest.Close()
		return fmt.Errorf("copy data: %w", err)
	}
	if err := dest.Sync(); err != nil {
		dest.Close()
		return fmt.Errorf("sync destination: %w", err)
	}
	if err := dest.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}

func removeExistingTarget(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat existing target: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("existing library path %q is a directory", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove existing target %q: %w", path, err)
	}
	return nil
}
