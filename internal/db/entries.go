package db

import (
	"context"
	"fmt"
	"time"

	"github.com/kendinapp/kendin-backend/internal/models"
)

// ListEntriesInRange returns the user's entries with from <= created_at < to,
// oldest first.
func (db *DB) ListEntriesInRange(ctx context.Context, userID string, from, to time.Time) ([]models.Entry, error) {
	query := `
		SELECT id, user_id, text, created_at
		FROM entries
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at ASC, id ASC
	`

	rows, err := db.conn.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// CountEntries returns how many entries a user owns.
func (db *DB) CountEntries(ctx context.Context, userID string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}
