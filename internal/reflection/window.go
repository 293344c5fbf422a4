package reflection

import (
	"strings"
	"time"

	"github.com/kendinapp/kendin-backend/internal/models"
)

// WindowDays is the number of calendar days covered by a reflection:
// the week start (Monday) through Saturday.
const WindowDays = 6

// ParseWeekStart parses a YYYY-MM-DD date, or an RFC 3339 timestamp whose
// UTC date is used. The result is midnight UTC.
func ParseWeekStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(models.WeekDateFormat, s); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// Window returns the half-open range [from, to) of created_at values that
// belong to the week starting at weekStart. It equals the closed range from
// weekStart 00:00 through the end of weekStart+5 days.
func Window(weekStart time.Time) (from, to time.Time) {
	return weekStart, weekStart.AddDate(0, 0, WindowDays)
}
