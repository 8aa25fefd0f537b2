package models

import (
	"time"

	"github.com/google/uuid"
)

// Market statuses. A market starts pending, is approved or rejected by an
// admin, moves to pending_result once its closing date passes, and ends up
// resolved. resolved and rejected are terminal.
const (
	MarketStatusPending       = "pending"
	MarketStatusApproved      = "approved"
	MarketStatusPendingResult = "pending_result"
	MarketStatusResolved      = "resolved"
	MarketStatusRejected      = "rejected"
)

// NoResultSentinel is recorded as the winner when the admin finds no valid outcome.
const NoResultSentinel = "No Result"

// Market represents a community prediction, poll, or fixture-linked question
// users can vote on. Binary predictions are markets whose options are Yes/No.
type Market struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Realm       string    `gorm:"size:100;not null;index" json:"realm"`
	Category    string    `gorm:"size:100" json:"category,omitempty"`
	Subcategory string    `gorm:"size:100" json:"subcategory,omitempty"`
	Question    string    `gorm:"type:text;not null" json:"question"`

	// Submitter identity. Not a foreign key: markets can be submitted by
	// anyone, accounts exist only for token-gated fixture voting.
	Username string `gorm:"size:100;not null" json:"username"`
	Email    string `gorm:"size:255;not null" json:"email"`

	Status string `gorm:"size:50;not null;default:pending;index" json:"status"`

	// Rule is set only when an admin approves or rejects the market.
	RuleCondition *string    `gorm:"type:text" json:"rule_condition,omitempty"`
	ClosingDate   *time.Time `gorm:"index" json:"closing_date,omitempty"`

	Options []MarketOption `gorm:"foreignKey:MarketID" json:"options,omitempty"`
	Results []MarketResult `gorm:"foreignKey:MarketID" json:"results,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// TableName specifies the table name for Market model
func (Market) TableName() string {
	return "markets"
}

// IsTerminal reports whether the market can never change status again.
func (m *Market) IsTerminal() bool {
	return m.Status == MarketStatusResolved || m.Status == MarketStatusRejected
}

// VotingClosed reports whether votes are no longer accepted.
func (m *Market) VotingClosed() bool {
	return m.Status == MarketStatusPendingResult || m.IsTerminal()
}

// MarketOption is one outcome of a market with its running vote count.
type MarketOption struct {
	ID       uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	MarketID uuid.UUID     `gorm:"type:uuid;not null;index" json:"market_id"`
	Name     string        `gorm:"size:255;not null" json:"name"`
	Position int           `gorm:"not null" json:"position"`
	Votes    int64         `gorm:"not null;default:0" json:"votes"`
	Voters   []OptionVoter `gorm:"foreignKey:OptionID" json:"voters,omitempty"`
}

// TableName specifies the table name for MarketOption model
func (MarketOption) TableName() string {
	return "market_options"
}

// OptionVoter records one identity's vote on an option. The unique index on
// (market_id, email) enforces one vote per identity per market, across all
// options, even under concurrent casts.
type OptionVoter struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OptionID uuid.UUID `gorm:"type:uuid;not null;index" json:"option_id"`
	MarketID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_option_voters_market_email,priority:1" json:"market_id"`
	Username string    `gorm:"size:100;not null" json:"username"`
	Email    string    `gorm:"size:255;not null;uniqueIndex:idx_option_voters_market_email,priority:2" json:"email"`
	VotedAt  time.Time `json:"voted_at"`
}

// TableName specifies the table name for OptionVoter model
func (OptionVoter) TableName() string {
	return "option_voters"
}

// MarketResult holds one winning identity, written only at resolution.
// A single row with WinnerEmail = NoResultSentinel marks a no-result market.
type MarketResult struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MarketID    uuid.UUID `gorm:"type:uuid;not null;index" json:"market_id"`
	WinnerEmail string    `gorm:"size:255;not null" json:"winner_email"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for MarketResult model
func (MarketResult) TableName() string {
	return "market_results"
}
