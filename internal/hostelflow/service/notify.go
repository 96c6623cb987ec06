package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/store"
)

// NotificationService serves each user's in-app notification feed.
type NotificationService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(store *store.Store, logger *slog.Logger) *NotificationService {
	return &NotificationService{store: store, logger: logger}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID int64) ([]*domain.Notification, error) {
	notifications, err := s.store.ListUserNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	if err := s.store.MarkNotificationRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("Notification not found")
		}
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// MarkAllReadResponse reports how many notifications were marked.
type MarkAllReadResponse struct {
	Marked int64 `json:"marked"`
}

// MarkAllRead marks every unread notification the user has.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (*MarkAllReadResponse, error) {
	n, err := s.store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("mark all read: %w", err)
	}
	return &MarkAllReadResponse{Marked: n}, nil
}
