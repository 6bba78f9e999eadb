// Package storage is the sqlite-backed record store. All operations are
// atomic at the single-row level; multi-row batches run in one transaction.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dawnhollow/memquest/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB wraps the SQL database connection.
type DB struct {
	mu   sync.Mutex // guards conn replacement in ensure
	conn *sql.DB
	dsn  string
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: conn, dsn: dsn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// ensure verifies the connection before an operation, attempting exactly one
// reconnect. A second failure surfaces as domain.ErrStoreUnavailable; callers
// treat that as retryable and do not retry here. The check and any swap run
// under the mutex, and callers use the returned handle rather than re-reading
// the shared field, so a concurrent reconnect never races a query.
func (db *DB) ensure(ctx context.Context) (*sql.DB, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.conn.PingContext(ctx); err == nil {
		return db.conn, nil
	}
	conn, err := sql.Open("sqlite", db.dsn)
	if err != nil {
		return nil, fmt.Errorf("reopen failed: %w", domain.ErrStoreUnavailable)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("reconnect ping failed: %w", domain.ErrStoreUnavailable)
	}
	db.conn.Close()
	db.conn = conn
	return conn, nil
}

// ListQuests returns the whole quest corpus in creation order.
func (db *DB) ListQuests(ctx context.Context) ([]domain.QuestUnit, error) {
	conn, err := db.ensure(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, `
		SELECT name, content, created_by, created_at
		FROM quests ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	defer rows.Close()

	var quests []domain.QuestUnit
	for rows.Next() {
		var q domain.QuestUnit
		if err := rows.Scan(&q.Name, &q.Content, &q.Creator, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quest row: %w", err)
		}
		quests = append(quests, q)
	}
	return quests, rows.Err()
}

// ListQuestNames returns every persisted quest name. The namer reads this
// once at the start of an ingestion batch.
func (db *DB) ListQuestNames(ctx context.Context) ([]string, error) {
	conn, err := db.ensure(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, `SELECT name FROM quests`)
	if err != nil {
		return nil, fmt.Errorf("failed to list quest names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan quest name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AppendQuests inserts a batch of quest units in one transaction.
func (db *DB) AppendQuests(ctx context.Context, quests []domain.QuestUnit) error {
	conn, err := db.ensure(ctx)
	if err != nil {
		return err
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin quest batch: %w", err)
	}
	defer tx.Rollback()

	for _, q := range quests {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quests (name, content, created_by, created_at)
			VALUES (?, ?, ?, ?)
		`, q.Name, q.Content, q.Creator, q.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert quest %s: %w", q.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quest batch: %w", err)
	}
	return nil
}

// FindQuestByName retrieves one quest, or nil if absent.
func (db *DB) FindQuestByName(ctx context.Context, name string) (*domain.QuestUnit, error) {
	conn, err := db.ensure(ctx)
	if err != nil {
		return nil, err
	}
	var q domain.QuestUnit
	row := conn.QueryRowContext(ctx, `
		SELECT name, content, created_by, created_at
		FROM quests WHERE name = ?
	`, name)
	if err := row.Scan(&q.Name, &q.Content, &q.Creator, &q.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Quest not found
		}
		return nil, fmt.Errorf("failed to find quest %s: %w", name, err)
	}
	return &q, nil
}

// UpdateQuestContent replaces a quest's content.
func (db *DB) UpdateQuestContent(ctx context.Context, name, content string) error {
	conn, err := db.ensure(ctx)
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx, `
		UPDATE quests SET content = ? WHERE name = ?
	`, content, name)
	if err != nil {
		return fmt.Errorf("failed to update quest %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update quest %s: %w", name, domain.ErrQuestNotFound)
	}
	return nil
}

// RenameQuest renames a quest and propagates the new name to every card
// record and mnemonic referencing it, all in one transaction.
func (db *DB) RenameQuest(ctx context.Context, oldName, newName string) error {
	conn, err := db.ensure(ctx)
	if err != nil {
		return err
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rename: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE quests SET name = ? WHERE name = ?`, newName, oldName)
	if err != nil {
		return fmt.Errorf("failed to rename quest %s: %w", oldName, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rename quest %s: %w", oldName, domain.ErrQuestNotFound)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE cards SET quest_name = ? WHERE quest_name = ?`, newName, oldName); err != nil {
		return fmt.Errorf("failed to propagate rename to cards: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE mnemonics SET quest_name = ? WHERE quest_name = ?`, newName, oldName); err != nil {
		return fmt.Errorf("failed to propagate rename to mnemonics: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rename: %w", err)
	}
	return nil
}

// DeleteQuestsByPrefix removes every quest whose name starts with the prefix,
// along with the card records and mnemonics referencing them, all in one
// transaction. Returns how many quests were deleted.
func (db *DB) DeleteQuestsByPrefix(ctx context.Context, prefix string) (int64, error) {
	conn, err := db.ensure(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin prefix delete: %w", err)
	}
	defer tx.Rollback()

	pattern := escapeLike(prefix) + "%"
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM cards WHERE quest_name LIKE ? ESCAPE '\'
	`, pattern); err != nil {
		return 0, fmt.Errorf("failed to delete cards with quest prefix %s: %w", prefix, err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM mnemonics WHERE quest_name LIKE ? ESCAPE '\'
	`, pattern); err != nil {
		return 0, fmt.Errorf("failed to delete mnemonics with quest prefix %s: %w", prefix, err)
	}
	res, err := tx.ExecContext(ctx, `
		DELETE FROM quests WHERE name LIKE ? ESCAPE '\'
	`, pattern)
	if err != nil {
		return 0, fmt.Errorf("failed to delete quests with prefix %s: %w", prefix, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted quests: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prefix delete: %w", err)
	}
	return n, nil
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
