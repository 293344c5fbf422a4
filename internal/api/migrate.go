package api

import (
	"net/http"

	"github.com/kendinapp/kendin-backend/internal/logger"
	"github.com/kendinapp/kendin-backend/internal/migration"
)

// HandleMigrateUserData moves data from {"old_user_id"} to {"new_user_id"}.
func HandleMigrateUserData(m DataMigrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req migration.Request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		ctx := logger.WithLogger(r.Context(), logger.Ctx(r.Context()).With(
			"old_user_id", req.OldUserID,
			"new_user_id", req.NewUserID,
		))

		result, err := m.Migrate(ctx, req)
		if err != nil {
			writeError(w, r.WithContext(ctx), err)
			return
		}

		logger.Ctx(ctx).Info("user data migrated",
			"entries", result.EntriesMoved,
			"reflections", result.ReflectionsMoved,
			"entitlements_copied", result.EntitlementsCopied)
		respondSuccess(w)
	}
}
