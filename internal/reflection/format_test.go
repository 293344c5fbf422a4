package reflection

import (
	"testing"
	"time"

	"github.com/kendinapp/kendin-backend/internal/models"
)

func TestDateLabel(t *testing.T) {
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC), "19 Ekim Pazartesi"},
		{time.Date(2026, time.October, 21, 18, 0, 0, 0, time.UTC), "21 Ekim Çarşamba"},
		{time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC), "1 Şubat Pazar"},
		{time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC), "29 Ağustos Cumartesi"},
	}
	for _, tt := range tests {
		if got := DateLabel(tt.t, time.UTC); got != tt.want {
			t.Errorf("DateLabel(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestDateLabel_Location(t *testing.T) {
	istanbul := time.FixedZone("TRT", 3*60*60)
	late := time.Date(2026, time.October, 19, 22, 30, 0, 0, time.UTC)

	if got := DateLabel(late, istanbul); got != "20 Ekim Salı" {
		t.Errorf("DateLabel in +03:00 = %q, want 20 Ekim Salı", got)
	}
	if got := DateLabel(late, nil); got != "19 Ekim Pazartesi" {
		t.Errorf("DateLabel with nil location = %q", got)
	}
}

func TestFormatEntries(t *testing.T) {
	entries := []models.Entry{
		{Text: "A", CreatedAt: time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)},
		{Text: "B", CreatedAt: time.Date(2026, time.October, 21, 18, 0, 0, 0, time.UTC)},
	}

	want := "19 Ekim Pazartesi: A\n\n21 Ekim Çarşamba: B"
	if got := FormatEntries(entries, time.UTC); got != want {
		t.Errorf("FormatEntries() = %q, want %q", got, want)
	}

	if got := FormatEntries(nil, time.UTC); got != "" {
		t.Errorf("FormatEntries(nil) = %q, want empty", got)
	}
}
