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

	"github.com/shopspring/decimal"
)

// DrawResult is stored on every entry of a fixture that ended level.
const DrawResult = "Draw"

// FixtureResolutionService is the oracle-driven resolution path: the fixture
// score decides the winner and every unprocessed vote ledger entry is settled
// exactly once. Idempotency is per entry through the is_processed flag, so
// re-running the pass (or running it concurrently) cannot double-credit.
type FixtureResolutionService struct {
	repo          *repository.Repository
	provider      fixtures.Provider
	notifications *NotificationService
	mirror        TokenMirror
	reward        decimal.Decimal
	now           func() time.Time
}

func NewFixtureResolutionService(
	repo *repository.Repository,
	provider fixtures.Provider,
	notifications *NotificationService,
	mirror TokenMirror,
	reward decimal.Decimal,
) *FixtureResolutionService {
	return &FixtureResolutionService{
		repo:          repo,
		provider:      provider,
		notifications: notifications,
		mirror:        mirror,
		reward:        reward,
		now:           time.Now,
	}
}

// ResolutionSummary reports what one resolution pass did.
type ResolutionSummary struct {
	Fixture    string `json:"fixture"`
	Winner     string `json:"winner"`
	TotalVotes int    `json:"total_votes"`
	Rewarded   int    `json:"rewarded"`
	Source     string `json:"source"`
}

// ProcessFixtureResult settles all unprocessed votes for a fixture. A
// provider failure aborts before any entry is touched. Individual entry
// failures are logged and skipped so one bad entry cannot block the batch.
func (s *FixtureResolutionService) ProcessFixtureResult(ctx context.Context, fixtureID int64) (*ResolutionSummary, error) {
	fixture, err := s.provider.GetFixture(ctx, fixtureID)
	if err != nil {
		if errors.Is(err, fixtures.ErrFixtureNotFound) {
			return nil, apperr.NotFound("Invalid fixture or no score data")
		}
		return nil, apperr.Upstream("Failed to fetch fixture result.", err)
	}

	winner, err := fixture.Winner()
	if err != nil {
		return nil, apperr.Validation("Invalid fixture or no score data")
	}

	matchResult := winner
	if matchResult == "" {
		matchResult = DrawResult
	}

	votes, err := s.repo.GetUnprocessedFixtureVotes(ctx, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending votes: %w", err)
	}

	summary := &ResolutionSummary{
		Fixture: fixture.Name,
		Winner:  matchResult,
		Source:  fixture.Source,
	}

	for _, vote := range votes {
		won := winner != "" && strings.EqualFold(strings.TrimSpace(vote.TeamVoted), winner)

		if err := s.settleVote(ctx, vote, matchResult, won); err != nil {
			if errors.Is(err, repository.ErrNoRows) {
				// Another resolution run settled this entry first.
				continue
			}
			log.Printf("[FixtureResolution] failed to settle vote %s: %v", vote.ID, err)
			continue
		}

		summary.TotalVotes++
		if won {
			summary.Rewarded++
			s.notifications.Notify(ctx, vote.UserID,
				"You won!",
				fmt.Sprintf("Your vote on %s was right — %s tokens have been credited.", fixture.Name, s.reward))
			s.mirrorReward(ctx, vote)
		} else {
			s.notifications.Notify(ctx, vote.UserID,
				"Result published",
				fmt.Sprintf("%s finished %s. Better luck next time!", fixture.Name, matchResult))
		}
	}

	log.Printf("[FixtureResolution] fixture %d (%s): winner=%s processed=%d rewarded=%d source=%s",
		fixtureID, fixture.Name, matchResult, summary.TotalVotes, summary.Rewarded, fixture.Source)
	return summary, nil
}

// settleVote flips one entry and, for winners, credits the reward. The flag
// flip is conditional on is_processed=false and shares a transaction with the
// credit, so a crash mid-batch leaves settled entries flagged and cannot
// double-credit on retry.
func (s *FixtureResolutionService) settleVote(ctx context.Context, vote models.FixtureVote, matchResult string, won bool) error {
	return s.repo.Transaction(ctx, func(txr *repository.Repository) error {
		if err := txr.MarkFixtureVoteProcessed(ctx, vote.ID, matchResult, won, s.now()); err != nil {
			return err
		}
		if won {
			if err := txr.CreditTokens(ctx, vote.UserID, s.reward); err != nil {
				return fmt.Errorf("failed to credit reward: %w", err)
			}
		}
		return nil
	})
}

// mirrorReward forwards the credit to the token contract when a mirror is
// configured and the winner has a wallet. Chain failures are logged only.
func (s *FixtureResolutionService) mirrorReward(ctx context.Context, vote models.FixtureVote) {
	if s.mirror == nil || !s.mirror.Enabled() {
		return
	}
	user, err := s.repo.GetUserByID(ctx, vote.UserID)
	if err != nil || user.WalletAddress == nil {
		return
	}
	sig, err := s.mirror.MirrorCredit(ctx, *user.WalletAddress, s.reward)
	if err != nil {
		log.Printf("[FixtureResolution] on-chain mirror failed for user %s: %v", vote.UserID, err)
		return
	}
	log.Printf("[FixtureResolution] mirrored reward for user %s on-chain: %s", vote.UserID, sig)
}
