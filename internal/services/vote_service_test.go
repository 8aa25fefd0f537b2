package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"votearena/internal/apperr"
	"votearena/internal/fixtures"
	"votearena/internal/models"
	"votearena/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// stubProvider serves a canned fixture (or error) in place of the live API.
type stubProvider struct {
	fixture *fixtures.Fixture
	err     error
}

func (p *stubProvider) GetFixture(ctx context.Context, fixtureID int64) (*fixtures.Fixture, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.fixture, nil
}

func testFixture(startingAt time.Time) *fixtures.Fixture {
	return &fixtures.Fixture{
		ID:         19135,
		Name:       "Arsenal vs Chelsea",
		StartingAt: &startingAt,
		Source:     "live",
	}
}

func createTestUser(t *testing.T, repo *repository.Repository, balance int64) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Username:     "bob",
		Email:        uuid.NewString() + "@example.com",
		TokenBalance: decimal.NewFromInt(balance),
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func fetchBalance(t *testing.T, repo *repository.Repository, userID uuid.UUID) decimal.Decimal {
	t.Helper()
	user, err := repo.GetUserByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to fetch user: %v", err)
	}
	return user.TokenBalance
}

func TestCastVoteDebitsFee(t *testing.T) {
	repo := repository.NewRepository(setupTestDB(t))
	kickoff := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	service := NewVoteService(repo, &stubProvider{fixture: testFixture(kickoff)}, decimal.NewFromInt(5))
	user := createTestUser(t, repo, 12)

	result, err := service.CastVote(context.Background(), user.ID, 19135, "Arsenal")
	if err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}

	if balance := fetchBalance(t, repo, user.ID); !balance.Equal(decimal.NewFromInt(7)) {
		t.Errorf("expected balance 7 after fee, got %s", balance)
	}
	if result.Vote.IsProcessed || result.Vote.IsRewarded {
		t.Error("fresh vote must be unprocessed")
	}
	if want := kickoff.Add(3 * time.Hour); !result.Vote.ProcessAfterTime.Equal(want) {
		t.Errorf("expected ProcessAfterTime %v, got %v", want, result.Vote.ProcessAfterTime)
	}
	if result.TotalVotes != 1 || result.TeamPercent != 100 {
		t.Errorf("expected 100%% split on first vote, got %+v", result)
	}
}

func TestCastVoteInsufficientFunds(t *testing.T) {
	repo := repository.NewRepository(setupTestDB(t))
	kickoff := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	service := NewVoteService(repo, &stubProvider{fixture: testFixture(kickoff)}, decimal.NewFromInt(5))
	user := createTestUser(t, repo, 3)

	_, err := service.CastVote(context.Background(), user.ID, 19135, "Arsenal")
	if !apperr.IsKind(err, apperr.KindInsufficientFunds) {
		t.Errorf("expected insufficient funds error, got %v", err)
	}

	if balance := fetchBalance(t, repo, user.ID); !balance.Equal(decimal.NewFromInt(3)) {
		t.Errorf("balance must be untouched, got %s", balance)
	}

	votes, err := service.GetUserVotes(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserVotes failed: %v", err)
	}
	if len(votes) != 0 {
		t.Errorf("no vote entry may exist after a failed cast, got %d", len(votes))
	}
}

func TestCastVoteDuplicate(t *testing.T) {
	repo := repository.NewRepository(setupTestDB(t))
	kickoff := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	service := NewVoteService(repo, &stubProvider{fixture: testFixture(kickoff)}, decimal.NewFromInt(5))
	user := createTestUser(t, repo, 20)

	if _, err := service.CastVote(context.Background(), user.ID, 19135, "Arsenal"); err != nil {
		t.Fatalf("first cast failed: %v", err)
	}

	_, err := service.CastVote(context.Background(), user.ID, 19135, "Chelsea")
	if !apperr.IsKind(err, apperr.KindDuplicateVote) {
		t.Errorf("expected duplicate vote error, got %v", err)
	}

	// The duplicate attempt's debit must have rolled back with the insert.
	if balance := fetchBalance(t, repo, user.ID); !balance.Equal(decimal.NewFromInt(15)) {
		t.Errorf("expected balance 15 after one fee, got %s", balance)
	}
}

func TestCastVoteFixtureWithoutStartTime(t *testing.T) {
	repo := repository.NewRepository(setupTestDB(t))
	fixture := &fixtures.Fixture{ID: 19135, Name: "Arsenal vs Chelsea"}
	service := NewVoteService(repo, &stubProvider{fixture: fixture}, decimal.NewFromInt(5))
	user := createTestUser(t, repo, 20)

	_, err := service.CastVote(context.Background(), user.ID, 19135, "Arsenal")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if balance := fetchBalance(t, repo, user.ID); !balance.Equal(decimal.NewFromInt(20)) {
		t.Errorf("balance must be untouched, got %s", balance)
	}
}

func TestCastVoteProviderErrors(t *testing.T) {
	repo := repository.NewRepository(setupTestDB(t))
	user := createTestUser(t, repo, 20)

	notFound := NewVoteService(repo, &stubProvider{err: fixtures.ErrFixtureNotFound}, decimal.NewFromInt(5))
	_, err := notFound.CastVote(context.Background(), user.ID, 19135, "Arsenal")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}

	down := NewVoteService(repo, &stubProvider{err: errors.New("connection refused")}, decimal.NewFromInt(5))
	_, err = down.CastVote(context.Background(), user.ID, 19135, "Arsenal")
	if !apperr.IsKind(err, apperr.KindUpstream) {
		t.Errorf("expected upstream error, got %v", err)
	}

	if balance := fetchBalance(t, repo, user.ID); !balance.Equal(decimal.NewFromInt(20)) {
		t.Errorf("balance must be untouched, got %s", balance)
	}
}

func TestCastVoteUnknownUser(t *testing.T) {
	repo := repository.NewRepository(setupTestDB(t))
	kickoff := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	service := NewVoteService(repo, &stubProvider{fixture: testFixture(kickoff)}, decimal.NewFromInt(5))

	_, err := service.CastVote(context.Background(), uuid.New(), 19135, "Arsenal")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}
