package reflection

import (
	"fmt"
	"strings"
	"time"

	"github.com/kendinapp/kendin-backend/internal/models"
)

var turkishMonths = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

var turkishWeekdays = [...]string{
	"Pazar", "Pazartesi", "Salı", "Çarşamba", "Perşembe", "Cuma", "Cumartesi",
}

// DateLabel renders t in loc the way tr-TR writes a long date without the
// year: "20 Ekim Pazartesi".
func DateLabel(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%d %s %s", t.Day(), turkishMonths[t.Month()-1], turkishWeekdays[t.Weekday()])
}

// FormatEntries renders entries as "<label>: <text>" blocks separated by a
// blank line, in the order given.
func FormatEntries(entries []models.Entry, loc *time.Location) string {
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, DateLabel(e.CreatedAt, loc)+": "+e.Text)
	}
	return strings.Join(blocks, "\n\n")
}
