package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a registered account holding a token balance.
// The balance is the authoritative ledger; it is mutated only through the
// repository's debit/credit operations, never assigned directly.
type User struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Username      string          `gorm:"size:100;not null" json:"username"`
	Email         string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	WalletAddress *string         `gorm:"size:100;uniqueIndex" json:"wallet_address,omitempty"`
	TokenBalance  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"token_balance"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
