package models

import "time"

// User is the entitlement view of an account. Identity itself is owned by
// the auth provider; this service only reads and copies these fields.
type User struct {
	ID                string `json:"id"`
	IsPremium         bool   `json:"is_premium"`
	PremiumMissTokens int    `json:"premium_miss_tokens"`
}

// Entitlements returns the premium fields of u.
func (u *User) Entitlements() Entitlements {
	return Entitlements{
		IsPremium:         u.IsPremium,
		PremiumMissTokens: u.PremiumMissTokens,
	}
}

// Entitlements are the premium fields copied during account migration.
type Entitlements struct {
	IsPremium         bool `json:"is_premium"`
	PremiumMissTokens int  `json:"premium_miss_tokens"`
}

// Entry is a single journal record.
type Entry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// WeeklyReflection is the generated text for one user and one week.
// (UserID, WeekStartDate) is unique.
type WeeklyReflection struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user_id"`
	WeekStartDate time.Time `json:"week_start_date"`
	Content       string    `json:"content"`
	IsArchived    bool      `json:"is_archived"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WeekDateFormat is the wire and storage format of week_start_date.
const WeekDateFormat = "2006-01-02"
