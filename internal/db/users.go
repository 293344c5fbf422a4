package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kendinapp/kendin-backend/internal/models"
)

// GetUser returns the entitlement fields of a user.
// Returns ErrUserNotFound if no row exists.
func (db *DB) GetUser(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT id, is_premium, premium_miss_tokens FROM users WHERE id = $1`

	var u models.User
	err := db.conn.QueryRowContext(ctx, query, userID).Scan(&u.ID, &u.IsPremium, &u.PremiumMissTokens)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// IsPremium reports the user's premium flag.
func (db *DB) IsPremium(ctx context.Context, userID string) (bool, error) {
	u, err := db.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.IsPremium, nil
}

// GetEntitlements returns the premium fields of a user.
func (db *DB) GetEntitlements(ctx context.Context, userID string) (*models.Entitlements, error) {
	u, err := db.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	e := u.Entitlements()
	return &e, nil
}

// UpdateEntitlements overwrites is_premium and premium_miss_tokens.
// Returns ErrUserNotFound if no row was updated.
func (db *DB) UpdateEntitlements(ctx context.Context, userID string, e models.Entitlements) error {
	query := `UPDATE users SET is_premium = $2, premium_miss_tokens = $3 WHERE id = $1`

	result, err := db.conn.ExecContext(ctx, query, userID, e.IsPremium, e.PremiumMissTokens)
	if err != nil {
		return fmt.Errorf("failed to update entitlements: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
