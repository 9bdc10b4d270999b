package domain

import "time"

// SessionToken records a token issued at login. Rows are written once and
// only ever read back by the admin audit listing.
type SessionToken struct {
	ID        uint      `gorm:"primaryKey"`         // Primary key
	Token     string    `gorm:"size:1000;not null"` // Signed JWT
	AccountID uint      `gorm:"index;not null"`     // Foreign key to Account
	ExpiresAt time.Time `gorm:"not null"`           // Issuance time + token TTL
	CreatedAt time.Time                             // Issuance time
}

func (SessionToken) TableName() string {
	return "session_tokens"
}

// Expired reports whether the token's validity window has passed at now
func (t SessionToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
