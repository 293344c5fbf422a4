package api

import (
	"net/http"

	"github.com/kendinapp/kendin-backend/internal/logger"
	"github.com/kendinapp/kendin-backend/internal/reflection"
)

// HandleGenerateReflection generates and stores the weekly reflection for
// {"user_id", "week_start_date"}.
func HandleGenerateReflection(gen ReflectionGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reflection.Request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		ctx := logger.WithLogger(r.Context(), logger.Ctx(r.Context()).With(
			"user_id", req.UserID,
			"week_start_date", req.WeekStartDate,
		))

		result, err := gen.Generate(ctx, req)
		if err != nil {
			writeError(w, r.WithContext(ctx), err)
			return
		}

		logger.Ctx(ctx).Info("weekly reflection stored",
			"entries", result.EntryCount,
			"premium", result.Premium)
		respondSuccess(w)
	}
}
