package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpsertServerStatus records the result of a media server connectivity check.
func (s *Store) UpsertServerStatus(ctx context.Context, status ServerStatus) error {
	if status.Name == "" {
		return fmt.Errorf("server name is required")
	}
	checked := nullableTime(status.LastChecked)
	if status.LastChecked == nil {
		checked = time.Now().UTC().Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO server_status (name, type, url, enabled, reachable, last_error, last_checked)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET
             type = excluded.type,
             url = excluded.url,
             enabled = excluded.enabled,
             reachable = excluded.reachable,
             last_error = excluded.last_error,
             last_checked = excluded.last_checked`,
		status.Name,
		status.Type,
		status.URL,
		boolToInt(status.Enabled),
		boolToInt(status.Reachable),
		nullableString(status.LastError),
		checked,
	)
	if err != nil {
		return fmt.Errorf("upsert server status: %w", err)
	}
	return nil
}

// ListServerStatus returns the last known state of every media server.
func (s *Store) ListServerStatus(ctx context.Context) ([]ServerStatus, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT name, type, url, enabled, reachable, last_error, last_checked FROM server_status ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list server status: %w", err)
	}
	defer rows.Close()

	var statuses []ServerStatus
	for rows.Next() {
		var (
			status     ServerStatus
			enabled    sql.NullInt64
			reachable  sql.NullInt64
			lastError  sql.NullString
			checkedRaw sql.NullString
		)
		if err := rows.Scan(&status.Name, &status.Type, &status.URL, &enabled, &reachable, &lastError, &checkedRaw); err != nil {
			return nil, err
		}
		status.Enabled = enabled.Int64 != 0
		status.Reachable = reachable.Int64 != 0
		status.LastError = lastError.String
		if checkedRaw.Valid {
			if checked, err := parseTimeString(checkedRaw.String); err == nil {
				status.LastChecked = &checked
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}
