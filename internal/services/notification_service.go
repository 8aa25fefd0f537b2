package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"votearena/internal/apperr"
	"votearena/internal/models"
	"votearena/internal/repository"

	"github.com/google/uuid"
)

// NotificationService persists user notifications. Notify is fire-and-forget
// from the caller's perspective: a failed write is logged, never propagated.
type NotificationService struct {
	repo *repository.Repository
}

func NewNotificationService(repo *repository.Repository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify writes a notification, swallowing errors.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, title, message string) {
	n := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   title,
		Message: message,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		log.Printf("[NotificationService] failed to notify user %s: %v", userID, err)
	}
}

// Create persists a notification and reports failures, for the API endpoint.
func (s *NotificationService) Create(ctx context.Context, userID uuid.UUID, title, message string) (*models.Notification, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.Validation("userId and title are required.")
	}
	n := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   title,
		Message: message,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// MarkAllRead flags all of a user's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}
