package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/service"
)

func (s *Server) registerProviderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "providerProfile",
		Method:      http.MethodGet,
		Path:        "/api/provider/profile",
		Summary:     "Provider profile",
		Description: "Returns the caller's provider profile and the services they perform",
		Tags:        []string{"Provider"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleProviderProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "providerBookings",
		Method:      http.MethodGet,
		Path:        "/api/provider/bookings",
		Summary:     "Provider bookings",
		Description: "Returns every booking assigned to the caller's services, newest date first",
		Tags:        []string{"Provider"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleProviderBookings)

	huma.Register(s.api, huma.Operation{
		OperationID: "providerUpdateBookingStatus",
		Method:      http.MethodPost,
		Path:        "/api/provider/bookings/{id}/status",
		Summary:     "Update booking status",
		Description: "Moves one of the caller's bookings through its lifecycle: Booked to In Progress to Completed, or cancels a Booked one. The resident is notified.",
		Tags:        []string{"Provider"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleProviderUpdateBookingStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "providerSetAvailability",
		Method:      http.MethodPost,
		Path:        "/api/provider/availability",
		Summary:     "Toggle service availability",
		Description: "Flips the availability toggle on one of the caller's services. Unavailable services are never auto-assigned.",
		Tags:        []string{"Provider"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleProviderSetAvailability)
}

// === DTOs ===

// ProviderProfileOutput wraps the provider's own profile.
type ProviderProfileOutput struct {
	Body *service.ProfileResponse
}

// UpdateStatusRequest carries the target booking status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required" doc:"Target status: Booked, In Progress, Completed, or Cancelled"`
}

// UpdateStatusInput wraps a status change for Huma.
type UpdateStatusInput struct {
	ID   int64 `path:"id" doc:"Booking ID"`
	Body UpdateStatusRequest
}

// SetAvailabilityRequest identifies the offering and the new toggle state.
type SetAvailabilityRequest struct {
	ID        int64 `json:"id" validate:"required" doc:"Provider service ID"`
	Available bool  `json:"availability" doc:"Whether the service should accept new bookings"`
}

// SetAvailabilityInput wraps the availability toggle for Huma.
type SetAvailabilityInput struct {
	Body SetAvailabilityRequest
}

// OfferingOutput wraps a single provider service.
type OfferingOutput struct {
	Body *service.OfferingView
}

// === Handlers ===

func (s *Server) handleProviderProfile(ctx context.Context, _ *struct{}) (*ProviderProfileOutput, error) {
	user, err := s.RequireProvider(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.provider.Profile(ctx, user)
	if err != nil {
		return nil, err
	}
	return &ProviderProfileOutput{Body: profile}, nil
}

func (s *Server) handleProviderBookings(ctx context.Context, _ *struct{}) (*BookingListOutput, error) {
	user, err := s.RequireProvider(ctx)
	if err != nil {
		return nil, err
	}

	views, err := s.provider.Bookings(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &BookingListOutput{Body: views}, nil
}

func (s *Server) handleProviderUpdateBookingStatus(ctx context.Context, input *UpdateStatusInput) (*BookingOutput, error) {
	user, err := s.RequireProvider(ctx)
	if err != nil {
		return nil, err
	}

	view, err := s.provider.UpdateBookingStatus(ctx, user.ID, input.ID, input.Body.Status)
	if err != nil {
		return nil, err
	}
	return &BookingOutput{Body: view}, nil
}

func (s *Server) handleProviderSetAvailability(ctx context.Context, input *SetAvailabilityInput) (*OfferingOutput, error) {
	user, err := s.RequireProvider(ctx)
	if err != nil {
		return nil, err
	}

	view, err := s.provider.SetAvailability(ctx, user.ID, input.Body.ID, input.Body.Available)
	if err != nil {
		return nil, err
	}
	return &OfferingOutput{Body: view}, nil
}
