package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kendinapp/kendin-backend/internal/models"
)

// ErrReflectionNotFound is returned by GetWeeklyReflection when no row exists.
var ErrReflectionNotFound = errors.New("weekly reflection not found")

// UpsertWeeklyReflection stores content for (userID, weekStart). An existing
// row for the pair is overwritten and un-archived.
func (db *DB) UpsertWeeklyReflection(ctx context.Context, userID string, weekStart time.Time, content string) error {
	query := `
		INSERT INTO weekly_reflections (user_id, week_start_date, content, is_archived)
		VALUES ($1, $2, $3, FALSE)
		ON CONFLICT (user_id, week_start_date) DO UPDATE SET
			content = EXCLUDED.content,
			is_archived = FALSE,
			updated_at = NOW()
	`

	_, err := db.conn.ExecContext(ctx, query, userID, weekStart.Format(models.WeekDateFormat), content)
	if err != nil {
		return fmt.Errorf("failed to upsert weekly reflection: %w", err)
	}
	return nil
}

// GetWeeklyReflection returns the reflection for (userID, weekStart).
func (db *DB) GetWeeklyReflection(ctx context.Context, userID string, weekStart time.Time) (*models.WeeklyReflection, error) {
	query := `
		SELECT id, user_id, week_start_date, content, is_archived, created_at, updated_at
		FROM weekly_reflections
		WHERE user_id = $1 AND week_start_date = $2
	`

	var r models.WeeklyReflection
	err := db.conn.QueryRowContext(ctx, query, userID, weekStart.Format(models.WeekDateFormat)).Scan(
		&r.ID,
		&r.UserID,
		&r.WeekStartDate,
		&r.Content,
		&r.IsArchived,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReflectionNotFound
		}
		return nil, fmt.Errorf("failed to get weekly reflection: %w", err)
	}
	return &r, nil
}

// CountWeeklyReflections returns how many reflections a user owns.
func (db *DB) CountWeeklyReflections(ctx context.Context, userID string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM weekly_reflections WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count weekly reflections: %w", err)
	}
	return n, nil
}
