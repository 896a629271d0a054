// Package segments downloads a rendition's media segments concurrently and
// assembles them into one elementary stream file.
package segments

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"trailgrab/internal/fetch"
	"trailgrab/internal/hls"
	"trailgrab/internal/logging"
	"trailgrab/internal/services"
)

// Downloader fetches segment lists and their payloads.
type Downloader struct {
	client  *fetch.Client
	fs      afero.Fs
	workers int
	logger  *slog.Logger
}

// New returns a Downloader writing through fs with the given worker count.
func New(client *fetch.Client, fs afero.Fs, workers int, logger *slog.Logger) *Downloader {
	if workers <= 0 {
		workers = 10
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Downloader{
		client:  client,
		fs:      fs,
		workers: workers,
		logger:  logging.NewComponentLogger(logger, "segments"),
	}
}

// Download resolves playlistURL to its segment list, fetches every segment,
// and concatenates the payloads in playlist order into outputPath. Source
// segments are timestamp-contiguous, so raw byte concatenation produces a
// valid elementary stream. Temporary files are removed on every exit path.
func (d *Downloader) Download(ctx context.Context, playlistURL, outputPath string) error {
	uris, err := hls.LoadSegments(ctx, d.client, playlistURL)
	if err != nil {
		return err
	}
	if len(uris) == 0 {
		return services.Wrap(services.ErrDownload, "segments", "resolve", playlistURL, fmt.Errorf("playlist lists no segments"))
	}

	tempDir, err := afero.TempDir(d.fs, "", "trailgrab-segments-")
	if err != nil {
		return services.Wrap(services.ErrDownload, "segments", "tempdir", playlistURL, err)
	}
	defer d.fs.RemoveAll(tempDir)

	d.logger.Debug("downloading segments",
		logging.Int("count", len(uris)),
		logging.Int("workers", d.workers))

	// Every in-flight fetch runs to completion before failures are
	// reported; a single bad segment should not abort its siblings.
	var mu sync.Mutex
	var failures []error

	workerPool := pool.New().WithMaxGoroutines(d.workers)
	for i, uri := range uris {
		workerPool.Go(func() {
			body, err := d.client.Get(ctx, uri, nil)
			if err == nil {
				err = afero.WriteFile(d.fs, d.segmentPath(tempDir, i), body, 0o644)
			}
			if err != nil {
				mu.Lock()
				failures = append(failures, fmt.Errorf("segment %d: %w", i, err))
				mu.Unlock()
			}
		})
	}
	workerPool.Wait()

	if len(failures) > 0 {
		return services.Wrap(services.ErrDownload, "segments", "fetch", playlistURL,
			fmt.Errorf("%d of %d segments failed: %w", len(failures), len(uris), failures[0]))
	}

	if err := d.assemble(tempDir, len(uris), outputPath); err != nil {
		return services.Wrap(services.ErrDownload, "segments", "assemble", outputPath, err)
	}
	return nil
}

func (d *Downloader) segmentPath(tempDir string, index int) string {
	return filepath.Join(tempDir, fmt.Sprintf("segment-%05d", index))
}

func (d *Downloader) assemble(tempDir string, count int, outputPath string) error {
	out, err := d.fs.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	for i := 0; i < count; i++ {
		if err := appendFile(d.fs, out, d.segmentPath(tempDir, i)); err != nil {
			return err
		}
	}
	return out.Close()
}

func appendFile(fs afero.Fs, out io.Writer, path string) error {
	in, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("open segment: %w", err)
	}
	defer in.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy segment %s: %w", filepath.Base(path), err)
	}
	return nil
}
