package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"votearena/internal/apperr"
	"votearena/internal/models"
	"votearena/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserService registers accounts and exposes balance reads. Balance writes
// happen only through the voting and resolution flows.
type UserService struct {
	repo *repository.Repository
}

func NewUserService(repo *repository.Repository) *UserService {
	return &UserService{repo: repo}
}

type RegisterUserInput struct {
	Username       string `json:"username" binding:"required"`
	Email          string `json:"email" binding:"required"`
	WalletAddress  string `json:"walletAddress"`
	InitialBalance int64  `json:"initialBalance"`
}

// Register creates a user with an optional starting token balance.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" {
		return nil, apperr.Validation("Username and email are required.")
	}
	if input.InitialBalance < 0 {
		return nil, apperr.Validation("Initial balance cannot be negative.")
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		TokenBalance: decimal.NewFromInt(input.InitialBalance),
	}
	if wallet := strings.TrimSpace(input.WalletAddress); wallet != "" {
		user.WalletAddress = &wallet
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validation("A user with this email or wallet already exists.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Get returns one user including the current token balance.
func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found.")
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}
