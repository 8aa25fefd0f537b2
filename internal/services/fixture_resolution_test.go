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

func finishedFixture(homeGoals, awayGoals int) *fixtures.Fixture {
	kickoff := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	return &fixtures.Fixture{
		ID:         19135,
		Name:       "Arsenal vs Chelsea",
		StartingAt: &kickoff,
		Scores: []fixtures.Score{
			{Description: "CURRENT", Participant: "home", Goals: homeGoals},
			{Description: "CURRENT", Participant: "away", Goals: awayGoals},
			{Description: "1ST_HALF", Participant: "home", Goals: 1},
		},
		Source: "live",
	}
}

func newResolutionForTest(t *testing.T, provider fixtures.Provider) (*FixtureResolutionService, *repository.Repository) {
	t.Helper()
	repo := repository.NewRepository(setupTestDB(t))
	notifications := NewNotificationService(repo)
	service := NewFixtureResolutionService(repo, provider, notifications, nil, decimal.NewFromInt(10))
	return service, repo
}

func addFixtureVote(t *testing.T, repo *repository.Repository, userID uuid.UUID, team string) *models.FixtureVote {
	t.Helper()
	kickoff := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	vote := &models.FixtureVote{
		ID:               uuid.New(),
		FixtureID:        19135,
		UserID:           userID,
		TeamVoted:        team,
		MatchStartTime:   kickoff,
		ProcessAfterTime: kickoff.Add(3 * time.Hour),
	}
	if err := repo.CreateFixtureVote(context.Background(), vote); err != nil {
		t.Fatalf("failed to create vote: %v", err)
	}
	return vote
}

func TestProcessFixtureResultRewardsWinners(t *testing.T) {
	service, repo := newResolutionForTest(t, &stubProvider{fixture: finishedFixture(2, 1)})

	winner := createTestUser(t, repo, 7)
	loser := createTestUser(t, repo, 7)
	// Case must not matter for the team comparison.
	addFixtureVote(t, repo, winner.ID, "arsenal")
	addFixtureVote(t, repo, loser.ID, "Chelsea")

	summary, err := service.ProcessFixtureResult(context.Background(), 19135)
	if err != nil {
		t.Fatalf("ProcessFixtureResult failed: %v", err)
	}

	if summary.Winner != "Arsenal" {
		t.Errorf("expected winner Arsenal, got %q", summary.Winner)
	}
	if summary.TotalVotes != 2 || summary.Rewarded != 1 {
		t.Errorf("expected 2 processed / 1 rewarded, got %d / %d", summary.TotalVotes, summary.Rewarded)
	}

	if balance := fetchBalance(t, repo, winner.ID); !balance.Equal(decimal.NewFromInt(17)) {
		t.Errorf("expected winner balance 17, got %s", balance)
	}
	if balance := fetchBalance(t, repo, loser.ID); !balance.Equal(decimal.NewFromInt(7)) {
		t.Errorf("expected loser balance unchanged at 7, got %s", balance)
	}

	votes, err := repo.GetUserFixtureVotes(context.Background(), winner.ID)
	if err != nil {
		t.Fatalf("failed to fetch votes: %v", err)
	}
	entry := votes[0]
	if !entry.IsProcessed || !entry.IsRewarded {
		t.Errorf("winner entry flags wrong: processed=%v rewarded=%v", entry.IsProcessed, entry.IsRewarded)
	}
	if entry.MatchResult == nil || *entry.MatchResult != "Arsenal" {
		t.Errorf("expected match result Arsenal, got %v", entry.MatchResult)
	}
	if entry.ProcessedAt == nil {
		t.Error("expected ProcessedAt to be set")
	}

	// Both users are notified.
	for _, userID := range []uuid.UUID{winner.ID, loser.ID} {
		notifications, err := repo.GetUserNotifications(context.Background(), userID)
		if err != nil {
			t.Fatalf("failed to fetch notifications: %v", err)
		}
		if len(notifications) != 1 {
			t.Errorf("expected 1 notification for %s, got %d", userID, len(notifications))
		}
	}
}

func TestProcessFixtureResultIdempotent(t *testing.T) {
	service, repo := newResolutionForTest(t, &stubProvider{fixture: finishedFixture(2, 1)})
	winner := createTestUser(t, repo, 7)
	addFixtureVote(t, repo, winner.ID, "Arsenal")

	if _, err := service.ProcessFixtureResult(context.Background(), 19135); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	summary, err := service.ProcessFixtureResult(context.Background(), 19135)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if summary.TotalVotes != 0 || summary.Rewarded != 0 {
		t.Errorf("second run must process nothing, got %d / %d", summary.TotalVotes, summary.Rewarded)
	}

	// Exactly one reward, however many times the pass runs.
	if balance := fetchBalance(t, repo, winner.ID); !balance.Equal(decimal.NewFromInt(17)) {
		t.Errorf("expected balance 17 after repeated runs, got %s", balance)
	}
}

func TestProcessFixtureResultDraw(t *testing.T) {
	service, repo := newResolutionForTest(t, &stubProvider{fixture: finishedFixture(1, 1)})
	user := createTestUser(t, repo, 7)
	addFixtureVote(t, repo, user.ID, "Arsenal")

	summary, err := service.ProcessFixtureResult(context.Background(), 19135)
	if err != nil {
		t.Fatalf("ProcessFixtureResult failed: %v", err)
	}
	if summary.Winner != DrawResult {
		t.Errorf("expected %q, got %q", DrawResult, summary.Winner)
	}
	if summary.Rewarded != 0 {
		t.Errorf("nobody wins a draw, got %d rewarded", summary.Rewarded)
	}
	if balance := fetchBalance(t, repo, user.ID); !balance.Equal(decimal.NewFromInt(7)) {
		t.Errorf("expected balance unchanged at 7, got %s", balance)
	}

	votes, err := repo.GetUserFixtureVotes(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to fetch votes: %v", err)
	}
	if votes[0].MatchResult == nil || *votes[0].MatchResult != DrawResult {
		t.Errorf("expected draw recorded on the entry, got %v", votes[0].MatchResult)
	}
}

func TestProcessFixtureResultProviderFailure(t *testing.T) {
	service, repo := newResolutionForTest(t, &stubProvider{err: errors.New("connection refused")})
	user := createTestUser(t, repo, 7)
	addFixtureVote(t, repo, user.ID, "Arsenal")

	_, err := service.ProcessFixtureResult(context.Background(), 19135)
	if !apperr.IsKind(err, apperr.KindUpstream) {
		t.Errorf("expected upstream error, got %v", err)
	}

	// A failed fetch must leave every entry untouched.
	votes, err := repo.GetUserFixtureVotes(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to fetch votes: %v", err)
	}
	if votes[0].IsProcessed {
		t.Error("entry must stay unprocessed after provider failure")
	}
	if balance := fetchBalance(t, repo, user.ID); !balance.Equal(decimal.NewFromInt(7)) {
		t.Errorf("expected balance unchanged at 7, got %s", balance)
	}
}

func TestProcessFixtureResultBadFixtureName(t *testing.T) {
	kickoff := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	fixture := &fixtures.Fixture{ID: 19135, Name: "Arsenal - Chelsea", StartingAt: &kickoff}
	service, _ := newResolutionForTest(t, &stubProvider{fixture: fixture})

	_, err := service.ProcessFixtureResult(context.Background(), 19135)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for unsplittable name, got %v", err)
	}
}
