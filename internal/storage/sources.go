package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Source is one registered quest-text origin, either a local directory or a
// git repository.
type Source struct {
	ID         int64
	Path       string
	Type       string // "local" or "git"
	LastSynced sql.NullTime
}

// InsertSource registers a new source and returns its ID.
func (db *DB) InsertSource(ctx context.Context, path, typ string) (int64, error) {
	conn, err := db.ensure(ctx)
	if err != nil {
		return 0, err
	}
	res, err := conn.ExecContext(ctx, `
		INSERT INTO sources (path, type) VALUES (?, ?)
	`, path, typ)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get source insert ID: %w", err)
	}
	return id, nil
}

// GetAllSources retrieves every registered source.
func (db *DB) GetAllSources(ctx context.Context) ([]Source, error) {
	conn, err := db.ensure(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, `
		SELECT id, path, type, last_synced FROM sources
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Path, &s.Type, &s.LastSynced); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// DeleteSource removes a registered source.
func (db *DB) DeleteSource(ctx context.Context, id int64) error {
	conn, err := db.ensure(ctx)
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete source %d: %w", id, err)
	}
	return nil
}

// UpdateSourceLastSynced stamps a source's last successful sync time.
func (db *DB) UpdateSourceLastSynced(ctx context.Context, id int64) error {
	conn, err := db.ensure(ctx)
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, `
		UPDATE sources SET last_synced = ? WHERE id = ?
	`, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update last synced for source %d: %w", id, err)
	}
	return nil
}
