package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/store"
)

// ProviderService implements the provider-facing workflow: their
// profile, assigned bookings, status updates and availability toggles.
type ProviderService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewProviderService creates a new provider service.
func NewProviderService(store *store.Store, logger *slog.Logger) *ProviderService {
	return &ProviderService{store: store, logger: logger}
}

// OfferingView is one service a provider performs, with its availability
// toggle and running rating.
type OfferingView struct {
	ID          int64   `json:"id"`
	Service     string  `json:"service"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Available   bool    `json:"availability"`
	Rating      float64 `json:"rating"`
	RatingCount int64   `json:"rating_count"`
}

// ProfileResponse is the provider's own profile with the services they
// perform.
type ProfileResponse struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Services []*OfferingView `json:"services"`
}

// lookupProvider resolves the caller's provider profile. Accounts
// without one get a not-found error the way the original API does.
func (s *ProviderService) lookupProvider(ctx context.Context, userID int64) (*domain.Provider, error) {
	provider, err := s.store.GetProviderByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Service provider profile not found")
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}
	return provider, nil
}

// offeringViews loads the provider's offerings joined with their
// service rows.
func (s *ProviderService) offeringViews(ctx context.Context, providerID int64) ([]*OfferingView, error) {
	offerings, err := s.store.ListProviderOfferings(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}

	views := make([]*OfferingView, 0, len(offerings))
	for _, o := range offerings {
		svc, err := s.store.GetService(ctx, o.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("get service %d: %w", o.ServiceID, err)
		}
		views = append(views, &OfferingView{
			ID:          o.ID,
			Service:     svc.Name,
			Description: svc.Description,
			Price:       svc.Price(),
			Available:   o.Available,
			Rating:      o.Rating,
			RatingCount: o.RatingCount,
		})
	}
	return views, nil
}

// Profile returns the caller's provider profile and offerings.
func (s *ProviderService) Profile(ctx context.Context, user *domain.User) (*ProfileResponse, error) {
	provider, err := s.lookupProvider(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	services, err := s.offeringViews(ctx, provider.ID)
	if err != nil {
		return nil, err
	}

	return &ProfileResponse{
		ID:       provider.ID,
		Username: user.Username,
		Email:    user.Email,
		Phone:    provider.Phone,
		Services: services,
	}, nil
}

// Bookings returns every booking assigned to the caller's offerings,
// newest date first.
func (s *ProviderService) Bookings(ctx context.Context, userID int64) ([]*BookingView, error) {
	provider, err := s.lookupProvider(ctx, userID)
	if err != nil {
		return nil, err
	}

	details, err := s.store.ListProviderBookings(ctx, provider.ID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookingViews(details), nil
}

// UpdateBookingStatus moves one of the provider's bookings through its
// lifecycle. Providers walk forward one step at a time and may cancel
// only a Booked booking. The resident is notified of every change.
func (s *ProviderService) UpdateBookingStatus(ctx context.Context, userID, bookingID int64, newStatus string) (*BookingView, error) {
	provider, err := s.lookupProvider(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !domain.ValidBookingStatus(newStatus) {
		return nil, domainerrors.Validation("Invalid status. Must be one of: Booked, In Progress, Completed, Cancelled")
	}
	status := domain.BookingStatus(newStatus)

	detail, err := s.store.GetBookingDetail(ctx, bookingID)
	if err != nil || detail.ProviderID != provider.ID {
		return nil, domainerrors.NotFound("Booking not found or does not belong to you")
	}
	booking := detail.Booking

	if !domain.CanProviderTransition(booking.Status, status) {
		return nil, domainerrors.Validationf("Cannot change status from %s to %s", booking.Status, status)
	}

	oldStatus := booking.Status
	booking.Status = status
	booking.UpdatedAt = time.Now()
	if err := s.store.UpdateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	s.notifyStatusChange(ctx, booking, detail.ServiceName, status)

	s.logger.Info("booking status updated",
		"booking_id", booking.ID,
		"provider_id", provider.ID,
		"from", oldStatus,
		"to", status,
	)

	return bookingView(detail), nil
}

// notifyStatusChange tells the resident their booking moved. Best
// effort: a failed notification never fails the update.
func (s *ProviderService) notifyStatusChange(ctx context.Context, booking *domain.Booking, serviceName string, status domain.BookingStatus) {
	var message string
	switch status {
	case domain.StatusInProgress:
		message = fmt.Sprintf("Your %s service has started! The service provider is now working on your request.", serviceName)
	case domain.StatusCompleted:
		message = fmt.Sprintf("Great news! Your %s service has been completed successfully. Please rate your experience!", serviceName)
	case domain.StatusCancelled:
		message = fmt.Sprintf("Your %s booking has been cancelled.", serviceName)
	default:
		return
	}

	n := &domain.Notification{
		UserID:    booking.UserID,
		Message:   message,
		BookingID: &booking.ID,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		s.logger.Warn("create status notification", "booking_id", booking.ID, "error", err)
	}
}

// SetAvailability flips the availability toggle on one of the caller's
// offerings.
func (s *ProviderService) SetAvailability(ctx context.Context, userID, offeringID int64, available bool) (*OfferingView, error) {
	provider, err := s.lookupProvider(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetOfferingAvailability(ctx, offeringID, provider.ID, available); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Service not found or does not belong to you")
		}
		return nil, fmt.Errorf("set availability: %w", err)
	}

	offering, err := s.store.GetOffering(ctx, offeringID)
	if err != nil {
		return nil, fmt.Errorf("get offering: %w", err)
	}
	svc, err := s.store.GetService(ctx, offering.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}

	s.logger.Info("offering availability updated",
		"offering_id", offeringID,
		"provider_id", provider.ID,
		"available", available,
	)

	return &OfferingView{
		ID:          offering.ID,
		Service:     svc.Name,
		Description: svc.Description,
		Price:       svc.Price(),
		Available:   offering.Available,
		Rating:      offering.Rating,
		RatingCount: offering.RatingCount,
	}, nil
}
