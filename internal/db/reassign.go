package db

import (
	"context"
	"fmt"
)

// Tables touched by ReassignUserData, reported in ReassignError.
const (
	TableEntries           = "entries"
	TableWeeklyReflections = "weekly_reflections"
)

// ReassignError reports which table's ownership update failed.
type ReassignError struct {
	Table string
	Err   error
}

func (e *ReassignError) Error() string {
	return fmt.Sprintf("failed to reassign %s: %v", e.Table, e.Err)
}

func (e *ReassignError) Unwrap() error {
	return e.Err
}

// ReassignResult counts the rows moved per table.
type ReassignResult struct {
	Entries     int64
	Reflections int64
}

// ReassignUserData moves every entry and then every weekly reflection from
// oldUserID to newUserID inside a single transaction. Either both tables are
// updated or neither is.
//
// If newUserID already has a reflection for a week oldUserID also has, the
// unique (user_id, week_start_date) constraint fails; the error is a
// *ReassignError for TableWeeklyReflections wrapping ErrReflectionConflict.
func (db *DB) ReassignUserData(ctx context.Context, oldUserID, newUserID string) (*ReassignResult, error) {
	var result ReassignResult

	err := WithTx(ctx, db.conn, nil, func(ctx context.Context, tx DBTX) error {
		n, err := reassignOwner(ctx, tx, TableEntries, oldUserID, newUserID)
		if err != nil {
			return &ReassignError{Table: TableEntries, Err: err}
		}
		result.Entries = n

		n, err = reassignOwner(ctx, tx, TableWeeklyReflections, oldUserID, newUserID)
		if err != nil {
			if isUniqueViolation(err) {
				err = fmt.Errorf("%w: %v", ErrReflectionConflict, err)
			}
			return &ReassignError{Table: TableWeeklyReflections, Err: err}
		}
		result.Reflections = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// reassignOwner runs the bulk ownership update for one table. table is
// always one of the package constants, never caller input.
func reassignOwner(ctx context.Context, tx DBTX, table, oldUserID, newUserID string) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET user_id = $1 WHERE user_id = $2`, table)
	res, err := tx.ExecContext(ctx, query, newUserID, oldUserID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
