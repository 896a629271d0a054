// Package store persists media items, download profiles, and download
// history in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"trailgrab/internal/config"
)

// Store manages trailgrab persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the trailgrab database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "trailgrab.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the database file.
func (s *Store) Path() string {
	return s.path
}

// AddMedia inserts a new media item. A zero status defaults to missing.
func (s *Store) AddMedia(ctx context.Context, item *MediaItem) (*MediaItem, error) {
	if item == nil {
		return nil, errors.New("item is nil")
	}
	status := item.Status
	if status == "" {
		status = StatusMissing
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("unknown status %q", status)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	excluded, err := marshalExcluded(item.ExcludedIDs)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO media_items (
            title, year, is_movie, external_id, source_id, content_url,
            profile_name, status, trailer_path, failure_reason, excluded_ids,
            downloaded_at, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Title,
		item.Year,
		boolToInt(item.IsMovie),
		nullableString(item.ExternalID),
		nullableString(item.SourceID),
		nullableString(item.ContentURL),
		nullableString(item.ProfileName),
		status,
		nullableString(item.TrailerPath),
		nullableString(item.FailureReason),
		excluded,
		nullableTime(item.DownloadedAt),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert media item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetMedia(ctx, id)
}

// GetMedia fetches a media item by identifier.
func (s *Store) GetMedia(ctx context.Context, id int64) (*MediaItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_items WHERE id = ?`, id)
	item, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media item: %w", err)
	}
	return item, nil
}

// FindMediaByExternalID returns the first item matching an external identifier.
func (s *Store) FindMediaByExternalID(ctx context.Context, externalID string) (*MediaItem, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+mediaColumns+` FROM media_items WHERE external_id = ? ORDER BY id LIMIT 1`,
		externalID,
	)
	item, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by external id: %w", err)
	}
	return item, nil
}

// UpdateMedia persists changes to an existing media item.
func (s *Store) UpdateMedia(ctx context.Context, item *MediaItem) error {
	if item == nil {
		return errors.New("item is nil")
	}
	if !ValidStatus(item.Status) {
		return fmt.Errorf("unknown status %q", item.Status)
	}
	excluded, err := marshalExcluded(item.ExcludedIDs)
	if err != nil {
		return err
	}
	item.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(
		ctx,
		`UPDATE media_items
         SET title = ?, year = ?, is_movie = ?, external_id = ?, source_id = ?,
             content_url = ?, profile_name = ?, status = ?, trailer_path = ?,
             failure_reason = ?, excluded_ids = ?, downloaded_at = ?, updated_at = ?
         WHERE id = ?`,
		item.Title,
		item.Year,
		boolToInt(item.IsMovie),
		nullableString(item.ExternalID),
		nullableString(item.SourceID),
		nullableString(item.ContentURL),
		nullableString(item.ProfileName),
		item.Status,
		nullableString(item.TrailerPath),
		nullableString(item.FailureReason),
		excluded,
		nullableTime(item.DownloadedAt),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update media item: %w", err)
	}
	return nil
}

// ListMedia returns media items filtered by status set (or all items when no
// status is provided), ordered by creation time.
func (s *Store) ListMedia(ctx context.Context, statuses ...Status) ([]*MediaItem, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + mediaColumns + ` FROM media_items`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list media items: %w", err)
	}
	defer rows.Close()

	var items []*MediaItem
	for rows.Next() {
		item, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// RemoveMedia deletes a media item and its download history.
func (s *Store) RemoveMedia(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM media_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete media item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Stats returns a count of media items grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM media_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("media stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// BeginAttempt records the start of a download attempt.
func (s *Store) BeginAttempt(ctx context.Context, mediaID int64, attemptID, sourceID string) (*Attempt, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO download_attempts (media_id, attempt_id, source_id, status, started_at)
         VALUES (?, ?, ?, ?, ?)`,
		mediaID,
		attemptID,
		nullableString(sourceID),
		AttemptStarted,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert attempt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.getAttempt(ctx, id)
}

// FinishAttempt records the outcome of a download attempt.
func (s *Store) FinishAttempt(ctx context.Context, id int64, status AttemptStatus, errorMessage, outputPath string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE download_attempts
         SET status = ?, error_message = ?, output_path = ?, finished_at = ?
         WHERE id = ?`,
		status,
		nullableString(errorMessage),
		nullableString(outputPath),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish attempt: %w", err)
	}
	return nil
}

// AttemptsForMedia returns the download history for one media item, newest first.
func (s *Store) AttemptsForMedia(ctx context.Context, mediaID int64) ([]*Attempt, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+attemptColumns+` FROM download_attempts WHERE media_id = ? ORDER BY started_at DESC, id DESC`,
		mediaID,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()
	return collectAttempts(rows)
}

// RecentAttempts returns the most recent download attempts across all media.
func (s *Store) RecentAttempts(ctx context.Context, limit int) ([]*Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+attemptColumns+` FROM download_attempts ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent attempts: %w", err)
	}
	defer rows.Close()
	return collectAttempts(rows)
}

func (s *Store) getAttempt(ctx context.Context, id int64) (*Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM download_attempts WHERE id = ?`, id)
	attempt, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return attempt, nil
}

const mediaColumns = "id, title, year, is_movie, external_id, source_id, content_url, profile_name, status, trailer_path, failure_reason, excluded_ids, downloaded_at, created_at, updated_at"

const attemptColumns = "id, media_id, attempt_id, source_id, status, error_message, output_path, started_at, finished_at"

func scanMedia(scanner interface{ Scan(dest ...any) error }) (*MediaItem, error) {
	var (
		id            int64
		title         string
		year          int
		isMovie       sql.NullInt64
		externalID    sql.NullString
		sourceID      sql.NullString
		contentURL    sql.NullString
		profileName   sql.NullString
		statusStr     string
		trailerPath   sql.NullString
		failureReason sql.NullString
		excludedRaw   sql.NullString
		downloadedRaw sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&year,
		&isMovie,
		&externalID,
		&sourceID,
		&contentURL,
		&profileName,
		&statusStr,
		&trailerPath,
		&failureReason,
		&excludedRaw,
		&downloadedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &MediaItem{
		ID:            id,
		Title:         title,
		Year:          year,
		IsMovie:       isMovie.Int64 != 0,
		ExternalID:    externalID.String,
		SourceID:      sourceID.String,
		ContentURL:    contentURL.String,
		ProfileName:   profileName.String,
		Status:        Status(statusStr),
		TrailerPath:   trailerPath.String,
		FailureReason: failureReason.String,
	}

	if excludedRaw.Valid && excludedRaw.String != "" {
		if err := json.Unmarshal([]byte(excludedRaw.String), &item.ExcludedIDs); err != nil {
			return nil, fmt.Errorf("decode excluded ids: %w", err)
		}
	}
	if downloadedRaw.Valid {
		if downloaded, err := parseTimeString(downloadedRaw.String); err == nil {
			item.DownloadedAt = &downloaded
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func scanAttempt(scanner interface{ Scan(dest ...any) error }) (*Attempt, error) {
	var (
		id           int64
		mediaID      int64
		attemptID    string
		sourceID     sql.NullString
		statusStr    string
		errorMessage sql.NullString
		outputPath   sql.NullString
		startedRaw   sql.NullString
		finishedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&mediaID,
		&attemptID,
		&sourceID,
		&statusStr,
		&errorMessage,
		&outputPath,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	attempt := &Attempt{
		ID:           id,
		MediaID:      mediaID,
		AttemptID:    attemptID,
		SourceID:     sourceID.String,
		Status:       AttemptStatus(statusStr),
		ErrorMessage: errorMessage.String,
		OutputPath:   outputPath.String,
	}
	if started, err := parseTimeString(startedRaw.String); err == nil {
		attempt.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			attempt.FinishedAt = &finished
		}
	}
	return attempt, nil
}

func collectAttempts(rows *sql.Rows) ([]*Attempt, error) {
	var attempts []*Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

func marshalExcluded(ids []string) (any, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode excluded ids: %w", err)
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
