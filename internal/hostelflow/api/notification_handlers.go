package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/service"
)

func (s *Server) registerNotificationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listNotifications",
		Method:      http.MethodGet,
		Path:        "/api/notifications",
		Summary:     "List notifications",
		Description: "Returns the caller's notifications, newest first",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListNotifications)

	huma.Register(s.api, huma.Operation{
		OperationID: "markNotificationRead",
		Method:      http.MethodPost,
		Path:        "/api/notifications/{id}/read",
		Summary:     "Mark notification read",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarkNotificationRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "markAllNotificationsRead",
		Method:      http.MethodPost,
		Path:        "/api/notifications/read-all",
		Summary:     "Mark all notifications read",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarkAllNotificationsRead)
}

// === DTOs ===

// NotificationListOutput wraps the caller's notification feed.
type NotificationListOutput struct {
	Body []*domain.Notification
}

// NotificationIDInput identifies a notification by path.
type NotificationIDInput struct {
	ID int64 `path:"id" doc:"Notification ID"`
}

// MarkAllReadOutput wraps the mark-all acknowledgement.
type MarkAllReadOutput struct {
	Body *service.MarkAllReadResponse
}

// === Handlers ===

func (s *Server) handleListNotifications(ctx context.Context, _ *struct{}) (*NotificationListOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	notifications, err := s.notifications.List(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &NotificationListOutput{Body: notifications}, nil
}

func (s *Server) handleMarkNotificationRead(ctx context.Context, input *NotificationIDInput) (*MessageOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.notifications.MarkRead(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: service.MessageResponse{Message: "Notification marked as read"}}, nil
}

func (s *Server) handleMarkAllNotificationsRead(ctx context.Context, _ *struct{}) (*MarkAllReadOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.notifications.MarkAllRead(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &MarkAllReadOutput{Body: resp}, nil
}
