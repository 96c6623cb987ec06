package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/service"
)

func (s *Server) registerBookingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listServices",
		Method:      http.MethodGet,
		Path:        "/api/services",
		Summary:     "List services",
		Description: "Returns every service the hostel offers, with provider counts",
		Tags:        []string{"Bookings"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListServices)

	huma.Register(s.api, huma.Operation{
		OperationID: "serviceAvailability",
		Method:      http.MethodGet,
		Path:        "/api/services/{id}/availability",
		Summary:     "Slot availability",
		Description: "Returns which time slots are still bookable for a service on a date. The date accepts 'today', 'tomorrow', or YYYY-MM-DD.",
		Tags:        []string{"Bookings"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAvailability)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBooking",
		Method:        http.MethodPost,
		Path:          "/api/bookings",
		Summary:       "Create booking",
		Description:   "Books a time slot, auto-assigning an available provider of the service. Fails with a conflict when every provider is taken.",
		Tags:          []string{"Bookings"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBooking)

	huma.Register(s.api, huma.Operation{
		OperationID: "myBookings",
		Method:      http.MethodGet,
		Path:        "/api/bookings",
		Summary:     "My bookings",
		Description: "Returns the caller's bookings, newest date first",
		Tags:        []string{"Bookings"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMyBookings)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelBooking",
		Method:      http.MethodPost,
		Path:        "/api/bookings/{id}/cancel",
		Summary:     "Cancel booking",
		Description: "Cancels the caller's own booking while it is still in the Booked state",
		Tags:        []string{"Bookings"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCancelBooking)

	huma.Register(s.api, huma.Operation{
		OperationID: "rateBooking",
		Method:      http.MethodPost,
		Path:        "/api/bookings/{id}/rate",
		Summary:     "Rate booking",
		Description: "Rates a completed booking: the comment lands on the booking and the score updates the provider's running mean",
		Tags:        []string{"Bookings"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRateBooking)

	huma.Register(s.api, huma.Operation{
		OperationID: "dashboard",
		Method:      http.MethodGet,
		Path:        "/api/dashboard",
		Summary:     "Dashboard counters",
		Description: "Returns the caller's booking counts by status plus the catalog size",
		Tags:        []string{"Bookings"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDashboard)
}

// === DTOs ===

// ServiceListOutput wraps the service catalog.
type ServiceListOutput struct {
	Body []*service.ServiceView
}

// AvailabilityInput identifies the service and date to check.
type AvailabilityInput struct {
	ID   int64  `path:"id" doc:"Service ID"`
	Date string `query:"date" doc:"Date to check: 'today', 'tomorrow', or YYYY-MM-DD"`
}

// AvailabilityOutput wraps the per-slot availability report.
type AvailabilityOutput struct {
	Body *service.AvailabilityResponse
}

// CreateBookingInput wraps the booking form for Huma.
type CreateBookingInput struct {
	Body service.CreateBookingRequest
}

// BookingOutput wraps a single booking.
type BookingOutput struct {
	Body *service.BookingView
}

// BookingListOutput wraps a list of bookings.
type BookingListOutput struct {
	Body []*service.BookingView
}

// BookingIDInput identifies a booking by path.
type BookingIDInput struct {
	ID int64 `path:"id" doc:"Booking ID"`
}

// RateBookingInput wraps the rating form for Huma.
type RateBookingInput struct {
	ID   int64 `path:"id" doc:"Booking ID"`
	Body service.RateBookingRequest
}

// DashboardOutput wraps the dashboard counters.
type DashboardOutput struct {
	Body *service.DashboardResponse
}

// === Handlers ===

func (s *Server) handleListServices(ctx context.Context, _ *struct{}) (*ServiceListOutput, error) {
	if _, err := s.RequireUser(ctx); err != nil {
		return nil, err
	}

	views, err := s.booking.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	return &ServiceListOutput{Body: views}, nil
}

func (s *Server) handleAvailability(ctx context.Context, input *AvailabilityInput) (*AvailabilityOutput, error) {
	if _, err := s.RequireUser(ctx); err != nil {
		return nil, err
	}

	resp, err := s.booking.Availability(ctx, input.ID, input.Date, time.Now())
	if err != nil {
		return nil, err
	}
	return &AvailabilityOutput{Body: resp}, nil
}

func (s *Server) handleCreateBooking(ctx context.Context, input *CreateBookingInput) (*BookingOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	view, err := s.booking.CreateBooking(ctx, user, &input.Body)
	if err != nil {
		return nil, err
	}
	return &BookingOutput{Body: view}, nil
}

func (s *Server) handleMyBookings(ctx context.Context, _ *struct{}) (*BookingListOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	views, err := s.booking.MyBookings(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &BookingListOutput{Body: views}, nil
}

func (s *Server) handleCancelBooking(ctx context.Context, input *BookingIDInput) (*BookingOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	view, err := s.booking.Cancel(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookingOutput{Body: view}, nil
}

func (s *Server) handleRateBooking(ctx context.Context, input *RateBookingInput) (*BookingOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	view, err := s.booking.Rate(ctx, user.ID, input.ID, &input.Body)
	if err != nil {
		return nil, err
	}
	return &BookingOutput{Body: view}, nil
}

func (s *Server) handleDashboard(ctx context.Context, _ *struct{}) (*DashboardOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.booking.Dashboard(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &DashboardOutput{Body: resp}, nil
}
