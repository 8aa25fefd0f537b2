package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"votearena/internal/apperr"
	"votearena/internal/models"
	"votearena/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResolutionService is the manual resolution path: an admin picks the winning
// option (or "No Result") for a market whose voting has closed. Winners are
// recorded in the market's results; no token payout happens here — rewarding
// manual-market winners is a separate administrative action.
type ResolutionService struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewResolutionService(repo *repository.Repository) *ResolutionService {
	return &ResolutionService{repo: repo, now: time.Now}
}

// MarkOutcome resolves a pending_result market. winningOptionID is either an
// option UUID or the literal "No Result" sentinel.
func (s *ResolutionService) MarkOutcome(ctx context.Context, marketID uuid.UUID, winningOptionID string) (*models.Market, error) {
	var market *models.Market

	err := s.repo.Transaction(ctx, func(txr *repository.Repository) error {
		var err error
		market, err = txr.LockMarketByID(ctx, marketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Market not found")
			}
			return fmt.Errorf("failed to fetch market: %w", err)
		}

		if market.Status != models.MarketStatusPendingResult {
			return apperr.StateConflict("Market is not ready for result selection.")
		}

		now := s.now()

		if winningOptionID == models.NoResultSentinel {
			results := []models.MarketResult{{
				ID:          uuid.New(),
				MarketID:    marketID,
				WinnerEmail: models.NoResultSentinel,
			}}
			if err := txr.CreateMarketResults(ctx, results); err != nil {
				return fmt.Errorf("failed to record no-result: %w", err)
			}
			market.Status = models.MarketStatusResolved
			market.ResolvedAt = &now
			if err := txr.SaveMarket(ctx, market); err != nil {
				return fmt.Errorf("failed to resolve market: %w", err)
			}
			return nil
		}

		optionID, err := uuid.Parse(winningOptionID)
		if err != nil {
			return apperr.Validation("winningOptionId must be an option id or %q.", models.NoResultSentinel)
		}

		option, err := txr.GetOption(ctx, marketID, optionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Option not found")
			}
			return fmt.Errorf("failed to fetch option: %w", err)
		}

		voters, err := txr.GetOptionVoters(ctx, option.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch winning voters: %w", err)
		}

		results := make([]models.MarketResult, 0, len(voters))
		for _, voter := range voters {
			results = append(results, models.MarketResult{
				ID:          uuid.New(),
				MarketID:    marketID,
				WinnerEmail: voter.Email,
			})
		}
		if len(results) > 0 {
			if err := txr.CreateMarketResults(ctx, results); err != nil {
				return fmt.Errorf("failed to record winners: %w", err)
			}
		}

		market.Status = models.MarketStatusResolved
		market.ResolvedAt = &now
		if err := txr.SaveMarket(ctx, market); err != nil {
			return fmt.Errorf("failed to resolve market: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[ResolutionService] market %s resolved (outcome %s)", marketID, winningOptionID)
	return s.repo.GetMarketByID(ctx, marketID)
}
