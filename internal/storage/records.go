package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dawnhollow/memquest/internal/domain"
)

// ListCardRecords returns all of a user's card records, newest first.
func (db *DB) ListCardRecords(ctx context.Context, userID string) ([]domain.CardRecord, error) {
	conn, err := db.ensure(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, `
		SELECT id, user_id, quest_name, type, level, grade, card_text, collected_at
		FROM cards WHERE user_id = ?
		ORDER BY collected_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards for user %s: %w", userID, err)
	}
	defer rows.Close()

	var records []domain.CardRecord
	for rows.Next() {
		var rec domain.CardRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.QuestName, &rec.Type,
			&rec.Level, &rec.Grade, &rec.CardText, &rec.CollectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetCardRecord retrieves the (user, quest, type) card record, or nil.
func (db *DB) GetCardRecord(ctx context.Context, userID, questName string, typ domain.CardType) (*domain.CardRecord, error) {
	conn, err := db.ensure(ctx)
	if err != nil {
		return nil, err
	}
	var rec domain.CardRecord
	row := conn.QueryRowContext(ctx, `
		SELECT id, user_id, quest_name, type, level, grade, card_text, collected_at
		FROM cards WHERE user_id = ? AND quest_name = ? AND type = ?
	`, userID, questName, typ)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.QuestName, &rec.Type,
		&rec.Level, &rec.Grade, &rec.CardText, &rec.CollectedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Card not found
		}
		return nil, fmt.Errorf("failed to get card for user %s quest %s: %w", userID, questName, err)
	}
	return &rec, nil
}

// AppendCardRecord inserts a new card record and returns its row ID.
func (db *DB) AppendCardRecord(ctx context.Context, rec *domain.CardRecord) (int64, error) {
	conn, err := db.ensure(ctx)
	if err != nil {
		return 0, err
	}
	res, err := conn.ExecContext(ctx, `
		INSERT INTO cards (user_id, quest_name, type, level, grade, card_text, collected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.UserID, rec.QuestName, rec.Type, rec.Level, rec.Grade, rec.CardText, rec.CollectedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert card for user %s quest %s: %w", rec.UserID, rec.QuestName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get card insert ID: %w", err)
	}
	rec.ID = id
	return id, nil
}

// UpdateCardRecord writes back a card's level, grade, snapshot, and timestamp.
func (db *DB) UpdateCardRecord(ctx context.Context, rec *domain.CardRecord) error {
	conn, err := db.ensure(ctx)
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx, `
		UPDATE cards
		SET level = ?, grade = ?, card_text = ?, collected_at = ?
		WHERE id = ?
	`, rec.Level, rec.Grade, rec.CardText, rec.CollectedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update card %d: %w", rec.ID, err)
	}
	return nil
}

// DeleteCardRecords removes all of a user's card records.
func (db *DB) DeleteCardRecords(ctx context.Context, userID string) error {
	conn, err := db.ensure(ctx)
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM cards WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete cards for user %s: %w", userID, err)
	}
	return nil
}

// GetMnemonic retrieves a user's mnemonic for a quest, or nil.
func (db *DB) GetMnemonic(ctx context.Context, userID, questName string) (*domain.Mnemonic, error) {
	conn, err := db.ensure(ctx)
	if err != nil {
		return nil, err
	}
	var m domain.Mnemonic
	row := conn.QueryRowContext(ctx, `
		SELECT user_id, quest_name, text, updated_at
		FROM mnemonics WHERE user_id = ? AND quest_name = ?
	`, userID, questName)
	if err := row.Scan(&m.UserID, &m.QuestName, &m.Text, &m.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Mnemonic not found
		}
		return nil, fmt.Errorf("failed to get mnemonic for user %s quest %s: %w", userID, questName, err)
	}
	return &m, nil
}

// UpsertMnemonic inserts or replaces the (user, quest) mnemonic.
func (db *DB) UpsertMnemonic(ctx context.Context, m *domain.Mnemonic) error {
	conn, err := db.ensure(ctx)
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx, `
		INSERT INTO mnemonics (user_id, quest_name, text, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, quest_name) DO UPDATE SET text = excluded.text, updated_at = excluded.updated_at
	`, m.UserID, m.QuestName, m.Text, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert mnemonic for user %s quest %s: %w", m.UserID, m.QuestName, err)
	}
	return nil
}

// DeleteMnemonics removes all of a user's mnemonics.
func (db *DB) DeleteMnemonics(ctx context.Context, userID string) error {
	conn, err := db.ensure(ctx)
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM mnemonics WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete mnemonics for user %s: %w", userID, err)
	}
	return nil
}

// GetOrCreateUser retrieves a user's progress, inserting the starting state
// on first sight.
func (db *DB) GetOrCreateUser(ctx context.Context, userID string) (*domain.UserProgress, error) {
	conn, err := db.ensure(ctx)
	if err != nil {
		return nil, err
	}
	var u domain.UserProgress
	row := conn.QueryRowContext(ctx, `
		SELECT user_id, level, xp, title FROM users WHERE user_id = ?
	`, userID)
	err = row.Scan(&u.UserID, &u.Level, &u.XP, &u.Title)
	if err == nil {
		return &u, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	fresh := domain.NewUserProgress(userID)
	if _, err := conn.ExecContext(ctx, `
		INSERT INTO users (user_id, level, xp, title) VALUES (?, ?, ?, ?)
	`, fresh.UserID, fresh.Level, fresh.XP, fresh.Title); err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", userID, err)
	}
	return fresh, nil
}

// UpdateUserLevelXP writes back a user's level, XP, and title.
func (db *DB) UpdateUserLevelXP(ctx context.Context, user *domain.UserProgress) error {
	conn, err := db.ensure(ctx)
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx, `
		INSERT INTO users (user_id, level, xp, title) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET level = excluded.level, xp = excluded.xp, title = excluded.title
	`, user.UserID, user.Level, user.XP, user.Title)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.UserID, err)
	}
	return nil
}
