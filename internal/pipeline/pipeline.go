// Package pipeline drives one trailer download from discovery through
// library placement.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"trailgrab/internal/catalog"
	"trailgrab/internal/config"
	"trailgrab/internal/discovery"
	"trailgrab/internal/fetch"
	"trailgrab/internal/hls"
	"trailgrab/internal/logging"
	"trailgrab/internal/remux"
	"trailgrab/internal/segments"
	"trailgrab/internal/services"
	"trailgrab/internal/services/mediaserver"
	"trailgrab/internal/store"
	"trailgrab/internal/trailerfile"
)

// Discoverer locates validated trailer metadata for a query.
type Discoverer interface {
	Find(ctx context.Context, query discovery.Query, exclude discovery.ExclusionSet) (*catalog.TrailerInfo, error)
	Resolve(ctx context.Context, contentURL string, query discovery.Query, exclude discovery.ExclusionSet) (*catalog.TrailerInfo, error)
}

// SegmentFetcher materializes one stream's segments into a local file.
type SegmentFetcher interface {
	Download(ctx context.Context, playlistURL, outputPath string) error
}

// Muxer combines elementary streams into the final container file.
type Muxer interface {
	Mux(ctx context.Context, videoPath, audioPath, outputPath string, profile config.Profile) error
}

// Notifier fans a library refresh out to configured media servers.
type Notifier interface {
	NotifyAll(ctx context.Context) []mediaserver.CheckResult
}

// Request describes one trailer download.
type Request struct {
	Query discovery.Query
	// ManualURL bypasses discovery when the caller already knows the
	// content URL or identifier.
	ManualURL string
	Profile   config.Profile
	// TargetDir receives the finished trailer. Empty falls back to the
	// configured library directory.
	TargetDir string
	// MediaID links the download to a stored media item when set.
	MediaID int64
	// Excluded seeds the exclusion set with identifiers rejected in
	// prior sessions.
	Excluded []string
}

// Result reports a finished download.
type Result struct {
	TrailerPath string
	Info        *catalog.TrailerInfo
	Attempts    int
}

// Pipeline owns the discovery-to-library download sequence.
type Pipeline struct {
	cfg        *config.Config
	httpClient *fetch.Client
	catalog    *catalog.Client
	engine     Discoverer
	downloader SegmentFetcher
	remuxer    Muxer
	notifier   Notifier
	store      *store.Store
	logger     *slog.Logger

	loadStreams func(ctx context.Context, client *fetch.Client, manifestURL string) (*hls.Streams, error)
	verify      func(path string, minSizeBytes int64) error
	place       func(sourcePath, targetDir, title, container string) (string, error)
}

// New wires a pipeline from configuration. The store may be nil for
// one-shot downloads that track nothing.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "configuration is required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	httpClient := fetch.New(time.Duration(cfg.Catalog.RequestTimeout)*time.Second, logger)
	catalogClient := catalog.NewClient(cfg.Catalog, httpClient, logger)
	engine := discovery.NewEngine(catalogClient, httpClient, cfg.Search, logger)
	downloader := segments.New(newSegmentClient(cfg, logger), nil, cfg.Download.MaxWorkers, logger)
	remuxer := remux.New(cfg.FFmpeg, logger)
	notifier := mediaserver.NewNotifier(cfg.MediaServers, nil, logger)

	return &Pipeline{
		cfg:         cfg,
		httpClient:  httpClient,
		catalog:     catalogClient,
		engine:      engine,
		downloader:  downloader,
		remuxer:     remuxer,
		notifier:    notifier,
		store:       st,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
		loadStreams: hls.Load,
		verify:      trailerfile.Verify,
		place:       trailerfile.Place,
	}, nil
}

// Execute runs the full download sequence with the configured retry budget.
// Each failed attempt adds the attempt's source identifier to the exclusion
// set before the sequence restarts from discovery. Failures a retry cannot
// improve end the sequence immediately.
func (p *Pipeline) Execute(ctx context.Context, req Request) (*Result, error) {
	if req.Query.Title == "" && req.ManualURL == "" {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "execute", "query title is required", nil)
	}

	if err := p.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "execute", "ensure directories", err)
	}

	lock := flock.New(filepath.Join(p.cfg.Paths.StagingDir, ".trailgrab.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "execute", "acquire staging lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "execute", "another download is already using the staging directory", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if p.catalog != nil {
		p.catalog.Authenticate(ctx)
	}

	ctx = logging.WithMediaTitle(ctx, req.Query.Title)

	exclude := discovery.NewExclusionSet(req.Excluded...)
	attempts := p.cfg.Download.RetryLimit + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptID := uuid.NewString()
		attemptCtx := logging.WithAttemptID(ctx, attemptID)
		logger := logging.WithContext(attemptCtx, p.logger).With(logging.Int("attempt", attempt))

		info, err := p.discover(attemptCtx, req, exclude)
		if err != nil {
			p.recordFailure(ctx, req, err)
			return nil, err
		}

		attemptRow := p.beginAttempt(attemptCtx, req, attemptID, info.SourceID)
		logger.Info("starting download attempt",
			logging.String(logging.FieldSourceID, info.SourceID),
			logging.String("manifest_url", info.HLSURL))

		trailerPath, err := p.runAttempt(attemptCtx, req, info)
		if err == nil {
			p.finishAttempt(ctx, attemptRow, store.AttemptSucceeded, "", trailerPath)
			p.recordSuccess(ctx, req, info, trailerPath)
			p.notify(ctx)
			logger.Info("trailer downloaded", logging.String("trailer_path", trailerPath))
			return &Result{TrailerPath: trailerPath, Info: info, Attempts: attempt}, nil
		}

		lastErr = err
		p.finishAttempt(ctx, attemptRow, store.AttemptFailed, err.Error(), "")
		if info.SourceID != "" {
			exclude.Add(info.SourceID)
		}
		logger.Warn("download attempt failed", logging.Error(err))
		if !services.Retryable(err) {
			p.recordFailure(ctx, req, err)
			return nil, err
		}
	}

	terminal := services.Wrap(services.ErrDownload, "pipeline", "execute",
		fmt.Sprintf("trailer download failed for %q", req.Query.Title), lastErr)
	p.recordFailure(ctx, req, terminal)
	return nil, terminal
}

// newSegmentClient builds the HTTP client for segment payload fetches.
// Segments are large relative to API responses and get their own timeout.
func newSegmentClient(cfg *config.Config, logger *slog.Logger) *fetch.Client {
	return fetch.New(time.Duration(cfg.Download.SegmentTimeout)*time.Second, logger)
}

func (p *Pipeline) discover(ctx context.Context, req Request, exclude discovery.ExclusionSet) (*catalog.TrailerInfo, error) {
	if req.ManualURL != "" {
		target := strings.TrimSpace(req.ManualURL)
		// A bare content identifier expands to its canonical page URL
		// so the resolver always receives a URL.
		if catalog.IsContentID(target) {
			target = catalog.ContentURLFor(p.cfg.Catalog, req.Query.Kind(), target)
		}
		return p.engine.Resolve(ctx, target, req.Query, exclude)
	}
	return p.engine.Find(ctx, req.Query, exclude)
}

// runAttempt performs one discovery-validated download: manifest parse,
// stream selection, sequential video/audio segment downloads, remux, and
// placement. All intermediate files live in a per-attempt staging directory
// removed on every exit path.
func (p *Pipeline) runAttempt(ctx context.Context, req Request, info *catalog.TrailerInfo) (string, error) {
	staging, err := os.MkdirTemp(p.cfg.Paths.StagingDir, "attempt-")
	if err != nil {
		return "", services.Wrap(services.ErrDownload, "download", "staging", "create staging directory", err)
	}
	defer os.RemoveAll(staging)

	streams, err := p.loadStreams(ctx, p.httpClient, info.HLSURL)
	if err != nil {
		return "", services.Wrap(services.ErrParse, "manifest", "load", "load manifest", err)
	}

	video, audio := hls.Select(streams, req.Profile.MaxResolution, req.Profile.AudioLanguage)
	if video == nil {
		return "", services.Wrap(services.ErrParse, "manifest", "select", "manifest has no video streams", nil)
	}

	downloadCtx := logging.WithStage(ctx, "download")
	logging.WithContext(downloadCtx, p.logger).Debug("downloading streams",
		logging.String("video_uri", video.URI),
		logging.Bool("has_audio", audio != nil))

	videoPath := filepath.Join(staging, "video.raw")
	if err := p.downloader.Download(downloadCtx, video.URI, videoPath); err != nil {
		return "", services.Wrap(services.ErrDownload, "download", "video", "download video stream", err)
	}

	audioPath := ""
	if audio != nil {
		audioPath = filepath.Join(staging, "audio.raw")
		if err := p.downloader.Download(downloadCtx, audio.URI, audioPath); err != nil {
			return "", services.Wrap(services.ErrDownload, "download", "audio", "download audio stream", err)
		}
	}

	container := req.Profile.Container
	if container == "" {
		container = "mkv"
	}
	outputPath := filepath.Join(staging, "trailer."+container)
	if err := p.remuxer.Mux(logging.WithStage(ctx, "remux"), videoPath, audioPath, outputPath, req.Profile); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "remux", "mux", "remux streams", err)
	}

	if err := p.verify(outputPath, req.Profile.MinSizeBytes); err != nil {
		return "", services.Wrap(services.ErrValidation, "verify", "output", "verify trailer output", err)
	}

	targetDir := req.TargetDir
	if targetDir == "" {
		targetDir = p.cfg.Paths.LibraryDir
	}
	finalPath, err := p.place(outputPath, targetDir, req.Query.Title, container)
	if err != nil {
		return "", services.Wrap(services.ErrDownload, "place", "move", "move trailer into library", err)
	}
	return finalPath, nil
}

func (p *Pipeline) notify(ctx context.Context) {
	if p.notifier == nil {
		return
	}
	results := p.notifier.NotifyAll(ctx)
	if p.store == nil {
		return
	}
	for _, result := range results {
		errMsg := ""
		if result.Err != nil {
			errMsg = result.Err.Error()
		}
		if err := p.store.UpsertServerStatus(ctx, store.ServerStatus{
			Name:      result.Name,
			Type:      result.Type,
			URL:       result.URL,
			Enabled:   result.Enabled,
			Reachable: result.Reachable,
			LastError: errMsg,
		}); err != nil {
			p.logger.Warn("record server status", logging.Error(err))
		}
	}
}

func (p *Pipeline) beginAttempt(ctx context.Context, req Request, attemptID, sourceID string) *store.Attempt {
	if p.store == nil || req.MediaID == 0 {
		return nil
	}
	if item, err := p.store.GetMedia(ctx, req.MediaID); err == nil && item != nil {
		item.Status = store.StatusDownloading
		if err := p.store.UpdateMedia(ctx, item); err != nil {
			p.logger.Warn("update media status", logging.Error(err))
		}
	}
	attempt, err := p.store.BeginAttempt(ctx, req.MediaID, attemptID, sourceID)
	if err != nil {
		p.logger.Warn("record attempt start", logging.Error(err))
		return nil
	}
	return attempt
}

func (p *Pipeline) finishAttempt(ctx context.Context, attempt *store.Attempt, status store.AttemptStatus, errMsg, outputPath string) {
	if p.store == nil || attempt == nil {
		return
	}
	if err := p.store.FinishAttempt(ctx, attempt.ID, status, errMsg, outputPath); err != nil {
		p.logger.Warn("record attempt finish", logging.Error(err))
	}
}

func (p *Pipeline) recordSuccess(ctx context.Context, req Request, info *catalog.TrailerInfo, trailerPath string) {
	if p.store == nil || req.MediaID == 0 {
		return
	}
	item, err := p.store.GetMedia(ctx, req.MediaID)
	if err != nil || item == nil {
		return
	}
	now := time.Now().UTC()
	item.SourceID = info.SourceID
	item.TrailerPath = trailerPath
	item.FailureReason = ""
	item.DownloadedAt = &now
	if req.Profile.StopMonitoring {
		item.Status = store.StatusDownloaded
	} else {
		// Keep the item monitored so a better trailer can replace this one.
		item.Status = store.StatusMissing
	}
	if err := p.store.UpdateMedia(ctx, item); err != nil {
		p.logger.Warn("record download success", logging.Error(err))
	}
}

func (p *Pipeline) recordFailure(ctx context.Context, req Request, failure error) {
	if p.store == nil || req.MediaID == 0 {
		return
	}
	item, err := p.store.GetMedia(ctx, req.MediaID)
	if err != nil || item == nil {
		return
	}
	item.Status = store.StatusFailed
	item.FailureReason = failure.Error()
	if err := p.store.UpdateMedia(ctx, item); err != nil {
		p.logger.Warn("record download failure", logging.Error(err))
	}
}
