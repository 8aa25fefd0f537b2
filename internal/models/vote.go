package models

import (
	"time"

	"github.com/google/uuid"
)

// FixtureVote is the durable ledger entry for one user's vote on a football
// fixture. Created with IsProcessed=false and mutated exactly once by the
// fixture resolution pass, which sets MatchResult, IsProcessed and, for
// winners, IsRewarded. Entries are never deleted.
type FixtureVote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FixtureID int64     `gorm:"not null;index;uniqueIndex:idx_fixture_votes_user_fixture,priority:2" json:"fixture_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_fixture_votes_user_fixture,priority:1" json:"user_id"`
	TeamVoted string    `gorm:"size:255;not null" json:"team_voted"`

	MatchStartTime time.Time `gorm:"not null" json:"match_start_time"`
	// ProcessAfterTime is a resolution-eligibility hint (kick-off plus a fixed
	// offset); nothing enforces it automatically.
	ProcessAfterTime time.Time `gorm:"not null" json:"process_after_time"`

	IsProcessed bool    `gorm:"not null;default:false;index" json:"is_processed"`
	IsRewarded  bool    `gorm:"not null;default:false" json:"is_rewarded"`
	MatchResult *string `gorm:"size:255" json:"match_result,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// TableName specifies the table name for FixtureVote model
func (FixtureVote) TableName() string {
	return "fixture_votes"
}
