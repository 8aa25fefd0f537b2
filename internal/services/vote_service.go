package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"votearena/internal/apperr"
	"votearena/internal/fixtures"
	"votearena/internal/models"
	"votearena/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// rewardDelay is how long after kick-off a vote becomes eligible for
// resolution. It is a hint stored on the entry, not an enforced schedule.
const rewardDelay = 3 * time.Hour

// TokenMirror mirrors ledger credits onto the token contract. The database
// ledger stays authoritative; mirroring is best effort.
type TokenMirror interface {
	Enabled() bool
	MirrorCredit(ctx context.Context, walletAddress string, amount decimal.Decimal) (string, error)
}

// VoteService handles token-gated votes on football fixtures: the fee debit
// and the vote ledger entry are written in one database transaction.
type VoteService struct {
	repo     *repository.Repository
	provider fixtures.Provider
	voteFee  decimal.Decimal
}

func NewVoteService(repo *repository.Repository, provider fixtures.Provider, voteFee decimal.Decimal) *VoteService {
	return &VoteService{
		repo:     repo,
		provider: provider,
		voteFee:  voteFee,
	}
}

// CastVoteResult is returned after a successful cast: the ledger entry plus
// the current percentage split for the fixture.
type CastVoteResult struct {
	Vote        *models.FixtureVote `json:"vote"`
	TotalVotes  int64               `json:"total_votes"`
	TeamPercent float64             `json:"team_percent"`
	RestPercent float64             `json:"rest_percent"`
}

// CastVote places a fee-charged vote on a fixture. Preconditions: the user
// exists with balance >= fee, the fixture has a scheduled start time, and the
// user has not voted on this fixture before. The debit and the entry commit
// or roll back together, so a charged-but-unrecorded vote cannot happen.
func (s *VoteService) CastVote(ctx context.Context, userID uuid.UUID, fixtureID int64, teamVoted string) (*CastVoteResult, error) {
	teamVoted = strings.TrimSpace(teamVoted)
	if fixtureID <= 0 || teamVoted == "" {
		return nil, apperr.Validation("userId, fixtureId and teamVoted are required.")
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if user.TokenBalance.LessThan(s.voteFee) {
		return nil, apperr.InsufficientFunds("Insufficient tokens to place a vote.")
	}

	fixture, err := s.provider.GetFixture(ctx, fixtureID)
	if err != nil {
		if errors.Is(err, fixtures.ErrFixtureNotFound) {
			return nil, apperr.NotFound("Fixture not found")
		}
		return nil, apperr.Upstream("Failed to fetch fixture data.", err)
	}
	if fixture.StartingAt == nil {
		return nil, apperr.Validation("Invalid fixture ID or no start time.")
	}

	vote := &models.FixtureVote{
		ID:               uuid.New(),
		FixtureID:        fixtureID,
		UserID:           userID,
		TeamVoted:        teamVoted,
		MatchStartTime:   *fixture.StartingAt,
		ProcessAfterTime: fixture.StartingAt.Add(rewardDelay),
	}

	err = s.repo.Transaction(ctx, func(txr *repository.Repository) error {
		if err := txr.DebitTokens(ctx, userID, s.voteFee); err != nil {
			if errors.Is(err, repository.ErrInsufficientBalance) {
				return apperr.InsufficientFunds("Insufficient tokens to place a vote.")
			}
			return fmt.Errorf("failed to debit vote fee: %w", err)
		}
		if err := txr.CreateFixtureVote(ctx, vote); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.DuplicateVote("You have already voted for this match.")
			}
			return fmt.Errorf("failed to create vote: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[VoteService] user %s voted %q on fixture %d (fee %s)", userID, teamVoted, fixtureID, s.voteFee)

	result := &CastVoteResult{Vote: vote}
	total, forTeam, err := s.repo.CountFixtureVotes(ctx, fixtureID, teamVoted)
	if err != nil {
		// The vote is committed; the split is cosmetic.
		log.Printf("[VoteService] failed to compute vote split for fixture %d: %v", fixtureID, err)
		return result, nil
	}
	result.TotalVotes = total
	if total > 0 {
		result.TeamPercent = float64(forTeam) / float64(total) * 100
		result.RestPercent = 100 - result.TeamPercent
	}
	return result, nil
}

// GetUserVotes lists a user's fixture votes, newest first.
func (s *VoteService) GetUserVotes(ctx context.Context, userID uuid.UUID) ([]models.FixtureVote, error) {
	votes, err := s.repo.GetUserFixtureVotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user votes: %w", err)
	}
	return votes, nil
}
