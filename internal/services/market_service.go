package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"votearena/internal/apperr"
	"votearena/internal/models"
	"votearena/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// closingDateLayouts are the accepted formats for an admin-supplied closing date.
var closingDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type MarketService struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewMarketService(repo *repository.Repository) *MarketService {
	return &MarketService{repo: repo, now: time.Now}
}

// NewMarketServiceWithClock is used by tests to control expiry sweeps.
func NewMarketServiceWithClock(repo *repository.Repository, now func() time.Time) *MarketService {
	return &MarketService{repo: repo, now: now}
}

// CreateMarketInput is the submission payload for a new market.
type CreateMarketInput struct {
	Realm       string   `json:"realm"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Question    string   `json:"question"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Options     []string `json:"options"`
}

// Create stores a new market in pending status. Binary predictions omit the
// options list and get a Yes/No pair.
func (s *MarketService) Create(ctx context.Context, input CreateMarketInput) (*models.Market, error) {
	if strings.TrimSpace(input.Realm) == "" ||
		strings.TrimSpace(input.Question) == "" ||
		strings.TrimSpace(input.Username) == "" ||
		strings.TrimSpace(input.Email) == "" {
		return nil, apperr.Validation("Realm, question, username, and email are required fields.")
	}

	optionNames := input.Options
	if len(optionNames) == 0 {
		optionNames = []string{"Yes", "No"}
	}

	marketID := uuid.New()
	market := &models.Market{
		ID:          marketID,
		Realm:       strings.TrimSpace(input.Realm),
		Category:    strings.TrimSpace(input.Category),
		Subcategory: strings.TrimSpace(input.Subcategory),
		Question:    strings.TrimSpace(input.Question),
		Username:    strings.TrimSpace(input.Username),
		Email:       strings.TrimSpace(input.Email),
		Status:      models.MarketStatusPending,
	}
	for i, name := range optionNames {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, apperr.Validation("Option names must not be empty.")
		}
		market.Options = append(market.Options, models.MarketOption{
			ID:       uuid.New(),
			MarketID: marketID,
			Name:     name,
			Position: i,
		})
	}

	if err := s.repo.CreateMarket(ctx, market); err != nil {
		return nil, fmt.Errorf("failed to create market: %w", err)
	}
	return market, nil
}

// List sweeps expired markets into pending_result, then returns markets
// matching the realm/status filter. The sweep is lazy by design: a market
// past its closing date transitions the next time anything lists markets.
func (s *MarketService) List(ctx context.Context, realm, status string) ([]models.Market, error) {
	if err := s.ExpireClosedMarkets(ctx); err != nil {
		// Listing still works with a stale status; log and carry on.
		log.Printf("[MarketService] expiry sweep failed: %v", err)
	}

	markets, err := s.repo.FindMarkets(ctx, realm, status)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch markets: %w", err)
	}
	return markets, nil
}

// Get retrieves one market by ID.
func (s *MarketService) Get(ctx context.Context, marketID uuid.UUID) (*models.Market, error) {
	market, err := s.repo.GetMarketByID(ctx, marketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Market not found")
		}
		return nil, fmt.Errorf("failed to fetch market: %w", err)
	}
	return market, nil
}

// ExpireClosedMarkets advances every approved market whose closing date has
// passed to pending_result. Safe to call repeatedly.
func (s *MarketService) ExpireClosedMarkets(ctx context.Context) error {
	count, err := s.repo.ExpireClosedMarkets(ctx, s.now())
	if err != nil {
		return fmt.Errorf("failed to expire closed markets: %w", err)
	}
	if count > 0 {
		log.Printf("[MarketService] moved %d markets to %s", count, models.MarketStatusPendingResult)
	}
	return nil
}

// StatusUpdateInput is the admin approval/rejection payload.
type StatusUpdateInput struct {
	Status string `json:"status"`
	Rule   struct {
		Condition   string `json:"condition"`
		ClosingDate string `json:"closingDate"`
	} `json:"rule"`
}

// UpdateStatus applies an admin approval or rejection. The rule is validated
// before any write happens; a market already in a terminal state is left
// untouched.
func (s *MarketService) UpdateStatus(ctx context.Context, marketID uuid.UUID, input StatusUpdateInput) (*models.Market, error) {
	if input.Status != models.MarketStatusApproved && input.Status != models.MarketStatusRejected {
		return nil, apperr.Validation("Status must be %q or %q.", models.MarketStatusApproved, models.MarketStatusRejected)
	}

	condition := strings.TrimSpace(input.Rule.Condition)
	if condition == "" || strings.TrimSpace(input.Rule.ClosingDate) == "" {
		return nil, apperr.Validation("Condition and closingDate are required for approval or rejection.")
	}
	closingDate, err := parseClosingDate(input.Rule.ClosingDate)
	if err != nil {
		return nil, apperr.Validation("closingDate %q is not a valid timestamp.", input.Rule.ClosingDate)
	}

	var market *models.Market
	err = s.repo.Transaction(ctx, func(txr *repository.Repository) error {
		market, err = txr.LockMarketByID(ctx, marketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Market not found")
			}
			return fmt.Errorf("failed to fetch market: %w", err)
		}

		if market.IsTerminal() {
			return apperr.StateConflict("Market is already %s and cannot change status.", market.Status)
		}

		market.Status = input.Status
		market.RuleCondition = &condition
		market.ClosingDate = &closingDate
		if err := txr.SaveMarket(ctx, market); err != nil {
			return fmt.Errorf("failed to update market status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[MarketService] market %s set to %s (closes %s)", marketID, input.Status, closingDate.Format(time.RFC3339))
	return market, nil
}

// VoteInput identifies the option and the voter for a manual market vote.
type VoteInput struct {
	OptionID uuid.UUID `json:"optionId"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// Vote records one identity's vote on a market option. Preconditions are
// checked in order: the market exists, voting is still open, the option
// exists, and the identity has not voted for any option of this market.
// The duplicate check and the write share one transaction holding a row lock
// on the market, and the (market_id, email) unique index backstops races.
func (s *MarketService) Vote(ctx context.Context, marketID uuid.UUID, input VoteInput) error {
	if strings.TrimSpace(input.Username) == "" || strings.TrimSpace(input.Email) == "" {
		return apperr.Validation("Username and email are required to vote.")
	}

	return s.repo.Transaction(ctx, func(txr *repository.Repository) error {
		market, err := txr.LockMarketByID(ctx, marketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Market not found")
			}
			return fmt.Errorf("failed to fetch market: %w", err)
		}

		if market.VotingClosed() {
			return apperr.StateConflict("Voting has ended for this market.")
		}
		if market.ClosingDate != nil && s.now().After(*market.ClosingDate) {
			return apperr.StateConflict("Voting time has expired.")
		}

		option, err := txr.GetOption(ctx, marketID, input.OptionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Option not found")
			}
			return fmt.Errorf("failed to fetch option: %w", err)
		}

		email := strings.TrimSpace(input.Email)
		voted, err := txr.HasVoterForMarket(ctx, marketID, email)
		if err != nil {
			return fmt.Errorf("failed to check existing votes: %w", err)
		}
		if voted {
			return apperr.DuplicateVote("You have already voted on this market.")
		}

		voter := &models.OptionVoter{
			ID:       uuid.New(),
			OptionID: option.ID,
			MarketID: marketID,
			Username: strings.TrimSpace(input.Username),
			Email:    email,
			VotedAt:  s.now(),
		}
		if err := txr.AddOptionVoter(ctx, voter); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.DuplicateVote("You have already voted on this market.")
			}
			return fmt.Errorf("failed to record vote: %w", err)
		}
		if err := txr.IncrementOptionVotes(ctx, option.ID); err != nil {
			return fmt.Errorf("failed to update vote count: %w", err)
		}
		return nil
	})
}

func parseClosingDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range closingDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized closing date %q", raw)
}
