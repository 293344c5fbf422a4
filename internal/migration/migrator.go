// Package migration moves a user's journal data and entitlements to another
// account, used when an anonymous session signs up with email.
package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kendinapp/kendin-backend/internal/apperr"
	"github.com/kendinapp/kendin-backend/internal/db"
	"github.com/kendinapp/kendin-backend/internal/identity"
	"github.com/kendinapp/kendin-backend/internal/logger"
	"github.com/kendinapp/kendin-backend/internal/models"
)

var tracer = otel.Tracer("kendin/migration")

var (
	ErrMissingFields   = apperr.Validation("Missing old_user_id or new_user_id")
	ErrSameUser        = apperr.Validation("old_user_id and new_user_id must be different")
	ErrOldUserNotFound = apperr.NotFound("Old user not found")
	ErrNewUserNotFound = apperr.NotFound("New user not found")
)

// Store is the data access the migrator needs. *db.DB implements it.
type Store interface {
	ReassignUserData(ctx context.Context, oldUserID, newUserID string) (*db.ReassignResult, error)
	GetEntitlements(ctx context.Context, userID string) (*models.Entitlements, error)
	UpdateEntitlements(ctx context.Context, userID string, e models.Entitlements) error
}

// Request names the source and destination accounts.
type Request struct {
	OldUserID string `json:"old_user_id"`
	NewUserID string `json:"new_user_id"`
}

// Validate checks the request without touching any dependency.
func (req Request) Validate() error {
	if strings.TrimSpace(req.OldUserID) == "" || strings.TrimSpace(req.NewUserID) == "" {
		return ErrMissingFields
	}
	// ids are compared the way the uuid column compares them
	if strings.EqualFold(strings.TrimSpace(req.OldUserID), strings.TrimSpace(req.NewUserID)) {
		return ErrSameUser
	}
	return nil
}

// Result reports what was moved.
type Result struct {
	EntriesMoved       int64
	ReflectionsMoved   int64
	EntitlementsCopied bool
}

// Migrator verifies both identities and then moves data from old to new.
type Migrator struct {
	store    Store
	verifier identity.Verifier
}

// NewMigrator creates a migrator with the given dependencies.
func NewMigrator(store Store, verifier identity.Verifier) *Migrator {
	return &Migrator{store: store, verifier: verifier}
}

// Migrate runs the migration:
//
//  1. both identities must exist (404 otherwise, nothing is written)
//  2. entries and reflections are reassigned in one transaction
//  3. entitlements are copied best-effort; failure is logged, not returned
//
// A failure in step 3 leaves the data moved and the destination's
// entitlements untouched. Re-running the request is safe: step 2 then moves
// nothing and step 3 copies again.
func (m *Migrator) Migrate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "migration.migrate",
		trace.WithAttributes(
			attribute.String("user.old_id", req.OldUserID),
			attribute.String("user.new_id", req.NewUserID),
		))
	defer span.End()

	result, err := m.migrate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("entries.moved", result.EntriesMoved),
		attribute.Int64("reflections.moved", result.ReflectionsMoved),
		attribute.Bool("entitlements.copied", result.EntitlementsCopied),
	)
	return result, nil
}

func (m *Migrator) migrate(ctx context.Context, req Request) (*Result, error) {
	log := logger.Ctx(ctx)

	if !m.exists(ctx, req.OldUserID) {
		return nil, ErrOldUserNotFound
	}
	if !m.exists(ctx, req.NewUserID) {
		return nil, ErrNewUserNotFound
	}

	moved, err := m.store.ReassignUserData(ctx, req.OldUserID, req.NewUserID)
	if err != nil {
		return nil, classifyReassignError(err)
	}

	result := &Result{
		EntriesMoved:     moved.Entries,
		ReflectionsMoved: moved.Reflections,
	}

	copied, err := m.copyEntitlements(ctx, req.OldUserID, req.NewUserID)
	if err != nil {
		log.Warn("entitlement copy failed, data migration kept",
			"old_user_id", req.OldUserID,
			"new_user_id", req.NewUserID,
			"error", err)
	}
	result.EntitlementsCopied = copied

	return result, nil
}

// exists treats a failed lookup like a missing user.
func (m *Migrator) exists(ctx context.Context, userID string) bool {
	ok, err := m.verifier.UserExists(ctx, userID)
	if err != nil {
		logger.Ctx(ctx).Warn("identity lookup failed", "user_id", userID, "error", err)
		return false
	}
	return ok
}

// copyEntitlements overwrites the destination's premium fields with the
// source's. A source without a users row has nothing to copy.
func (m *Migrator) copyEntitlements(ctx context.Context, oldUserID, newUserID string) (bool, error) {
	e, err := m.store.GetEntitlements(ctx, oldUserID)
	if errors.Is(err, db.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read source entitlements: %w", err)
	}
	if err := m.store.UpdateEntitlements(ctx, newUserID, *e); err != nil {
		return false, fmt.Errorf("write destination entitlements: %w", err)
	}
	return true, nil
}

func classifyReassignError(err error) error {
	if errors.Is(err, db.ErrReflectionConflict) {
		return apperr.Conflict("New user already has a reflection for a migrated week", err)
	}

	var re *db.ReassignError
	if errors.As(err, &re) {
		switch re.Table {
		case db.TableEntries:
			return apperr.Dependency("Failed to migrate entries", re.Err)
		case db.TableWeeklyReflections:
			return apperr.Dependency("Failed to migrate reflections", re.Err)
		}
	}
	return apperr.Dependency("Failed to migrate user data", err)
}
