package store

import (
	"context"
	"fmt"
	"time"

	"voice-assistant/internal/db"
	"voice-assistant/internal/types"
)

// DatabaseStore stores chat messages in PostgreSQL, one row per message.
type DatabaseStore struct {
	db *db.DB
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(database *db.DB) *DatabaseStore {
	return &DatabaseStore{db: database}
}

// Append inserts msgs for userID in a single transaction
func (ds *DatabaseStore) Append(ctx context.Context, userID string, msgs ...types.Message) error {
	if userID == "" {
		return fmt.Errorf("user_id is required")
	}
	if len(msgs) == 0 {
		return nil
	}

	tx, err := ds.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO chat_messages (user_id, sender, text, created_at)
		VALUES ($1, $2, $3, $4)
	`
	for _, m := range msgs {
		ts := m.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := tx.ExecContext(ctx, query, userID, m.Sender, m.Text, ts.UTC()); err != nil {
			return fmt.Errorf("failed to save chat message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat messages: %w", err)
	}
	return nil
}

// History returns the user's messages in insertion order as a single chat
func (ds *DatabaseStore) History(ctx context.Context, userID string) ([]types.Chat, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `
		SELECT sender, text, created_at
		FROM chat_messages
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := ds.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	defer rows.Close()

	var msgs []types.Message
	for rows.Next() {
		var m types.Message
		if err := rows.Scan(&m.Sender, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chat history: %w", err)
	}

	if len(msgs) == 0 {
		return []types.Chat{}, nil
	}
	return []types.Chat{{UserID: userID, Messages: msgs}}, nil
}

func (ds *DatabaseStore) Close(context.Context) error {
	return ds.db.Close()
}
