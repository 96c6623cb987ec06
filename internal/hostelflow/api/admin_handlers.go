package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/service"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminListUsers",
		Method:      http.MethodGet,
		Path:        "/api/admin/users",
		Summary:     "List residents",
		Description: "Returns every resident account. Providers and admins are excluded.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/admin/users/{id}",
		Summary:     "Delete resident",
		Description: "Deletes a resident account and everything hanging off it. Provider and admin accounts are protected.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDeleteUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListBookings",
		Method:      http.MethodGet,
		Path:        "/api/admin/bookings",
		Summary:     "List all bookings",
		Description: "Returns every booking in the system, optionally filtered by status",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListBookings)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateBookingStatus",
		Method:      http.MethodPost,
		Path:        "/api/admin/bookings/{id}/status",
		Summary:     "Set booking status",
		Description: "Sets any booking to any status, bypassing the provider transition rules. The resident is notified.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminUpdateBookingStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListProviders",
		Method:      http.MethodGet,
		Path:        "/api/admin/providers",
		Summary:     "List providers",
		Description: "Returns every provider with their account and services",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListProviders)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateProvider",
		Method:        http.MethodPost,
		Path:          "/api/admin/providers",
		Summary:       "Create provider",
		Description:   "Onboards a provider: an account with the default password, a profile, and one offering per service name. Unknown service names are added to the catalog.",
		Tags:          []string{"Admin"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleAdminCreateProvider)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateProvider",
		Method:      http.MethodPatch,
		Path:        "/api/admin/providers/{id}",
		Summary:     "Update provider",
		Description: "Edits a provider's account, phone, and services",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminUpdateProvider)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteProvider",
		Method:      http.MethodDelete,
		Path:        "/api/admin/providers/{id}",
		Summary:     "Delete provider",
		Description: "Removes a provider entirely: account, profile, services, and their bookings",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDeleteProvider)
}

// === DTOs ===

// UserListOutput wraps a list of accounts.
type UserListOutput struct {
	Body []*domain.User
}

// UserIDInput identifies an account by path.
type UserIDInput struct {
	ID int64 `path:"id" doc:"User ID"`
}

// AdminBookingsInput carries the optional status filter.
type AdminBookingsInput struct {
	Status string `query:"status" doc:"Filter by status: Booked, In Progress, Completed, or Cancelled"`
}

// ProviderListOutput wraps the provider roster.
type ProviderListOutput struct {
	Body []*service.ProviderView
}

// ProviderOutput wraps a single provider.
type ProviderOutput struct {
	Body *service.ProviderView
}

// CreateProviderInput wraps the provider onboarding form for Huma.
type CreateProviderInput struct {
	Body service.CreateProviderRequest
}

// UpdateProviderInput wraps a provider edit for Huma.
type UpdateProviderInput struct {
	ID   int64 `path:"id" doc:"Provider ID"`
	Body service.UpdateProviderRequest
}

// ProviderIDInput identifies a provider by path.
type ProviderIDInput struct {
	ID int64 `path:"id" doc:"Provider ID"`
}

// === Handlers ===

func (s *Server) handleAdminListUsers(ctx context.Context, _ *struct{}) (*UserListOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	users, err := s.admin.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return &UserListOutput{Body: users}, nil
}

func (s *Server) handleAdminDeleteUser(ctx context.Context, input *UserIDInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.admin.DeleteUser(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: service.MessageResponse{Message: "User deleted successfully"}}, nil
}

func (s *Server) handleAdminListBookings(ctx context.Context, input *AdminBookingsInput) (*BookingListOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	views, err := s.admin.ListBookings(ctx, input.Status)
	if err != nil {
		return nil, err
	}
	return &BookingListOutput{Body: views}, nil
}

func (s *Server) handleAdminUpdateBookingStatus(ctx context.Context, input *UpdateStatusInput) (*BookingOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	view, err := s.admin.UpdateBookingStatus(ctx, input.ID, input.Body.Status)
	if err != nil {
		return nil, err
	}
	return &BookingOutput{Body: view}, nil
}

func (s *Server) handleAdminListProviders(ctx context.Context, _ *struct{}) (*ProviderListOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	views, err := s.admin.ListProviders(ctx)
	if err != nil {
		return nil, err
	}
	return &ProviderListOutput{Body: views}, nil
}

func (s *Server) handleAdminCreateProvider(ctx context.Context, input *CreateProviderInput) (*ProviderOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	view, err := s.admin.CreateProvider(ctx, &input.Body)
	if err != nil {
		return nil, err
	}
	return &ProviderOutput{Body: view}, nil
}

func (s *Server) handleAdminUpdateProvider(ctx context.Context, input *UpdateProviderInput) (*ProviderOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	view, err := s.admin.UpdateProvider(ctx, input.ID, &input.Body)
	if err != nil {
		return nil, err
	}
	return &ProviderOutput{Body: view}, nil
}

func (s *Server) handleAdminDeleteProvider(ctx context.Context, input *ProviderIDInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.admin.DeleteProvider(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: service.MessageResponse{Message: "Provider deleted."}}, nil
}
