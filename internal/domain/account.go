package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // Fixed-point money
)

const (
	RoleCustomer = "customer" // Default role assigned at registration
	RoleAdmin    = "admin"    // Role allowed on /admin routes
)

// DefaultBalance is credited to every account at registration
var DefaultBalance = decimal.RequireFromString("100000.00")

// Account Model
type Account struct {
	ID            uint            `gorm:"primaryKey" json:"id"`                                         // Primary key
	Username      string          `gorm:"size:255;uniqueIndex;not null" json:"username"`                // Unique username
	Email         string          `gorm:"size:255;uniqueIndex;not null" json:"email"`                   // Unique email
	PasswordHash  string          `gorm:"column:password;size:255;not null" json:"-"`                   // bcrypt hash, never serialized
	Balance       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:100000.00" json:"balance"` // Current balance
	Phone         *string         `gorm:"size:50" json:"phone,omitempty"`                               // Optional phone number
	Role          string          `gorm:"size:50;not null;default:customer" json:"role"`                // customer or admin
	CreatedAt     time.Time       `json:"created_at"`                                                   // Registration time
	SessionTokens []SessionToken  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`       // Issued tokens, removed with the account
}

// TableName pins the table name used by migrations and raw queries
func (Account) TableName() string {
	return "accounts"
}
