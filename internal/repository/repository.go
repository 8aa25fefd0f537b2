package repository

import (
	"context"
	"errors"
	"time"

	"votearena/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientBalance is returned by DebitTokens when the conditional
// update matched no row, i.e. the balance was below the debit amount.
var ErrInsufficientBalance = errors.New("insufficient token balance")

// ErrNoRows is returned by conditional updates that matched nothing.
var ErrNoRows = errors.New("no matching rows")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn inside a database transaction, handing it a Repository
// bound to the transaction. Everything fn writes commits or rolls back as one
// unit; this is how vote entries stay atomic with their ledger movements.
func (r *Repository) Transaction(ctx context.Context, fn func(txr *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// ============================================================================
// Market store
// ============================================================================

// CreateMarket persists a new market together with its options.
func (r *Repository) CreateMarket(ctx context.Context, market *models.Market) error {
	return r.db.WithContext(ctx).Create(market).Error
}

// GetMarketByID retrieves a market with options, voters and results preloaded.
func (r *Repository) GetMarketByID(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("market_options.position ASC") }).
		Preload("Options.Voters").
		Preload("Results").
		Where("id = ?", id).
		First(&market).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

// LockMarketByID loads a market under FOR UPDATE so status checks and vote
// writes within the same transaction cannot interleave with other writers.
// sqlite has no row locks and serializes writers itself, so the clause is
// skipped there.
func (r *Repository) LockMarketByID(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var market models.Market
	err := query.Where("id = ?", id).First(&market).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

// FindMarkets lists markets filtered by realm and/or status; empty filters
// match everything.
func (r *Repository) FindMarkets(ctx context.Context, realm, status string) ([]models.Market, error) {
	query := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("market_options.position ASC") }).
		Preload("Results")

	if realm != "" {
		query = query.Where("realm = ?", realm)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var markets []models.Market
	if err := query.Order("created_at DESC").Find(&markets).Error; err != nil {
		return nil, err
	}
	return markets, nil
}

// SaveMarket updates a market row (status, rule, resolution timestamps).
func (r *Repository) SaveMarket(ctx context.Context, market *models.Market) error {
	return r.db.WithContext(ctx).Save(market).Error
}

// ExpireClosedMarkets bulk-transitions approved markets whose closing date
// has passed into pending_result. Filtering strictly on the approved status
// makes the sweep idempotent: a second run matches nothing.
func (r *Repository) ExpireClosedMarkets(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Market{}).
		Where("status = ? AND closing_date IS NOT NULL AND closing_date <= ?", models.MarketStatusApproved, now).
		Update("status", models.MarketStatusPendingResult)
	return res.RowsAffected, res.Error
}

// GetOption retrieves one option of a market.
func (r *Repository) GetOption(ctx context.Context, marketID, optionID uuid.UUID) (*models.MarketOption, error) {
	var option models.MarketOption
	err := r.db.WithContext(ctx).
		Where("id = ? AND market_id = ?", optionID, marketID).
		First(&option).Error
	if err != nil {
		return nil, err
	}
	return &option, nil
}

// HasVoterForMarket reports whether the identity already voted for any option
// of the market.
func (r *Repository) HasVoterForMarket(ctx context.Context, marketID uuid.UUID, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OptionVoter{}).
		Where("market_id = ? AND email = ?", marketID, email).
		Count(&count).Error
	return count > 0, err
}

// GetOptionVoters lists every voter recorded against one option.
func (r *Repository) GetOptionVoters(ctx context.Context, optionID uuid.UUID) ([]models.OptionVoter, error) {
	var voters []models.OptionVoter
	err := r.db.WithContext(ctx).
		Where("option_id = ?", optionID).
		Order("voted_at ASC").
		Find(&voters).Error
	if err != nil {
		return nil, err
	}
	return voters, nil
}

// AddOptionVoter appends a voter row. The unique (market_id, email) index
// turns a concurrent duplicate into a constraint violation.
func (r *Repository) AddOptionVoter(ctx context.Context, voter *models.OptionVoter) error {
	return r.db.WithContext(ctx).Create(voter).Error
}

// IncrementOptionVotes bumps an option's running vote counter atomically.
func (r *Repository) IncrementOptionVotes(ctx context.Context, optionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.MarketOption{}).
		Where("id = ?", optionID).
		Update("votes", gorm.Expr("votes + 1")).Error
}

// CreateMarketResults writes the resolution winner rows.
func (r *Repository) CreateMarketResults(ctx context.Context, results []models.MarketResult) error {
	return r.db.WithContext(ctx).Create(&results).Error
}

// ============================================================================
// Token ledger
// ============================================================================

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser persists a new user.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// DebitTokens subtracts amount from the user's balance. The balance check and
// the subtraction are one conditional UPDATE, so two concurrent debits can
// never both pass the check against the same funds. Returns
// ErrInsufficientBalance when the balance does not cover the amount.
func (r *Repository) DebitTokens(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND token_balance >= ?", userID, amount).
		Update("token_balance", gorm.Expr("token_balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// CreditTokens adds amount to the user's balance.
func (r *Repository) CreditTokens(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("token_balance", gorm.Expr("token_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ============================================================================
// Fixture vote ledger
// ============================================================================

// CreateFixtureVote inserts a new vote ledger entry.
func (r *Repository) CreateFixtureVote(ctx context.Context, vote *models.FixtureVote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

// GetUserFixtureVotes lists all fixture votes cast by a user, newest first.
func (r *Repository) GetUserFixtureVotes(ctx context.Context, userID uuid.UUID) ([]models.FixtureVote, error) {
	var votes []models.FixtureVote
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

// GetUnprocessedFixtureVotes lists entries for a fixture not yet touched by
// the resolution pass.
func (r *Repository) GetUnprocessedFixtureVotes(ctx context.Context, fixtureID int64) ([]models.FixtureVote, error) {
	var votes []models.FixtureVote
	err := r.db.WithContext(ctx).
		Where("fixture_id = ? AND is_processed = ?", fixtureID, false).
		Order("created_at ASC").
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

// MarkFixtureVoteProcessed flips one entry to processed, conditionally on it
// still being unprocessed. Returns ErrNoRows when another invocation got
// there first, which is what makes concurrent resolution runs safe.
func (r *Repository) MarkFixtureVoteProcessed(ctx context.Context, voteID uuid.UUID, matchResult string, rewarded bool, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.FixtureVote{}).
		Where("id = ? AND is_processed = ?", voteID, false).
		Updates(map[string]interface{}{
			"is_processed": true,
			"is_rewarded":  rewarded,
			"match_result": matchResult,
			"processed_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRows
	}
	return nil
}

// CountFixtureVotes returns the total entries and the entries for one team,
// used for the percentage split returned after a cast.
func (r *Repository) CountFixtureVotes(ctx context.Context, fixtureID int64, team string) (total int64, forTeam int64, err error) {
	err = r.db.WithContext(ctx).
		Model(&models.FixtureVote{}).
		Where("fixture_id = ?", fixtureID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).
		Model(&models.FixtureVote{}).
		Where("fixture_id = ? AND LOWER(team_voted) = LOWER(?)", fixtureID, team).
		Count(&forTeam).Error
	if err != nil {
		return 0, 0, err
	}
	return total, forTeam, nil
}

// ============================================================================
// Notifications
// ============================================================================

// CreateNotification persists a notification.
func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// GetUserNotifications lists a user's notifications, newest first.
func (r *Repository) GetUserNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkAllNotificationsRead flags every unread notification of a user as read.
func (r *Repository) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
