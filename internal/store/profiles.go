package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trailgrab/internal/config"
)

// DefaultProfile converts the configured default profile into a store profile.
func DefaultProfile(cfg config.Profile) *Profile {
	return &Profile{
		Name:           "default",
		MaxResolution:  cfg.MaxResolution,
		AudioLanguage:  cfg.AudioLanguage,
		VideoCodec:     cfg.VideoCodec,
		AudioCodec:     cfg.AudioCodec,
		Container:      cfg.Container,
		StopMonitoring: cfg.StopMonitoring,
		MinSizeBytes:   cfg.MinSizeBytes,
	}
}

// Settings converts a stored profile back into the config representation the
// download pipeline consumes.
func (p *Profile) Settings() config.Profile {
	return config.Profile{
		MaxResolution:  p.MaxResolution,
		AudioLanguage:  p.AudioLanguage,
		VideoCodec:     p.VideoCodec,
		AudioCodec:     p.AudioCodec,
		Container:      p.Container,
		StopMonitoring: p.StopMonitoring,
		MinSizeBytes:   p.MinSizeBytes,
	}
}

// SaveProfile inserts a profile or updates the existing profile with the same name.
func (s *Store) SaveProfile(ctx context.Context, profile *Profile) (*Profile, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	if profile.Name == "" {
		return nil, errors.New("profile name is required")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO profiles (
            name, max_resolution, audio_language, video_codec, audio_codec,
            container, stop_monitoring, min_size_bytes, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            max_resolution = excluded.max_resolution,
            audio_language = excluded.audio_language,
            video_codec = excluded.video_codec,
            audio_codec = excluded.audio_codec,
            container = excluded.container,
            stop_monitoring = excluded.stop_monitoring,
            min_size_bytes = excluded.min_size_bytes,
            updated_at = excluded.updated_at`,
		profile.Name,
		profile.MaxResolution,
		profile.AudioLanguage,
		profile.VideoCodec,
		profile.AudioCodec,
		profile.Container,
		boolToInt(profile.StopMonitoring),
		profile.MinSizeBytes,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return s.GetProfile(ctx, profile.Name)
}

// GetProfile fetches a profile by name.
func (s *Store) GetProfile(ctx context.Context, name string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE name = ?`, name)
	profile, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// ListProfiles returns all profiles ordered by name.
func (s *Store) ListProfiles(ctx context.Context) ([]*Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// RemoveProfile deletes a profile by name.
func (s *Store) RemoveProfile(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("delete profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ProfileForMedia resolves the effective profile for a media item, falling
// back to the configured default when the item names no stored profile.
func (s *Store) ProfileForMedia(ctx context.Context, item *MediaItem, fallback config.Profile) (config.Profile, error) {
	if item == nil || item.ProfileName == "" {
		return fallback, nil
	}
	profile, err := s.GetProfile(ctx, item.ProfileName)
	if err != nil {
		return fallback, err
	}
	if profile == nil {
		return fallback, nil
	}
	return profile.Settings(), nil
}

const profileColumns = "id, name, max_resolution, audio_language, video_codec, audio_codec, container, stop_monitoring, min_size_bytes, created_at, updated_at"

func scanProfile(scanner interface{ Scan(dest ...any) error }) (*Profile, error) {
	var (
		id             int64
		name           string
		maxResolution  int
		audioLanguage  string
		videoCodec     string
		audioCodec     string
		container      string
		stopMonitoring sql.NullInt64
		minSizeBytes   int64
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&name,
		&maxResolution,
		&audioLanguage,
		&videoCodec,
		&audioCodec,
		&container,
		&stopMonitoring,
		&minSizeBytes,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	profile := &Profile{
		ID:             id,
		Name:           name,
		MaxResolution:  maxResolution,
		AudioLanguage:  audioLanguage,
		VideoCodec:     videoCodec,
		AudioCodec:     audioCodec,
		Container:      container,
		StopMonitoring: stopMonitoring.Int64 != 0,
		MinSizeBytes:   minSizeBytes,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		profile.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		profile.UpdatedAt = updated
	}
	return profile, nil
}
