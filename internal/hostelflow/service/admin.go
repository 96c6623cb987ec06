package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/store"
)

// defaultProviderPassword is assigned to provider accounts created by an
// admin. Providers are expected to change it on first login.
const defaultProviderPassword = "serviceprovider"

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// AdminService implements the admin surface: user management, the full
// booking ledger, and provider onboarding.
type AdminService struct {
	store    *store.Store
	sessions *SessionService
	logger   *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(store *store.Store, sessions *SessionService, logger *slog.Logger) *AdminService {
	return &AdminService{
		store:    store,
		sessions: sessions,
		logger:   logger,
	}
}

// ListUsers returns every resident account: providers and admins are
// managed elsewhere.
func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return users, nil
}

// DeleteUser removes a resident account and everything hanging off it.
// Provider and admin accounts are protected.
func (s *AdminService) DeleteUser(ctx context.Context, userID int64) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("User not found")
		}
		return fmt.Errorf("get user: %w", err)
	}

	if user.IsAdmin {
		return domainerrors.Forbidden("Cannot delete admin users")
	}
	if user.IsProvider {
		return domainerrors.Forbidden("Cannot delete service providers through this endpoint. Use service provider delete endpoint.")
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
		s.logger.Warn("revoke sessions for deleted user", "user_id", userID, "error", err)
	}

	s.logger.Info("user deleted", "user_id", userID, "username", user.Username)
	return nil
}

// ListBookings returns every booking in the system, optionally filtered
// by status.
func (s *AdminService) ListBookings(ctx context.Context, status string) ([]*BookingView, error) {
	if status != "" && !domain.ValidBookingStatus(status) {
		return nil, domainerrors.Validation("Invalid status. Must be one of: Booked, In Progress, Completed, Cancelled")
	}

	details, err := s.store.ListBookings(ctx, domain.BookingStatus(status))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookingViews(details), nil
}

// UpdateBookingStatus sets any booking to any status, bypassing the
// provider transition rules. The resident gets an admin-flavored
// notification.
func (s *AdminService) UpdateBookingStatus(ctx context.Context, bookingID int64, newStatus string) (*BookingView, error) {
	if !domain.ValidBookingStatus(newStatus) {
		return nil, domainerrors.Validation("Invalid status. Must be one of: Booked, In Progress, Completed, Cancelled")
	}
	status := domain.BookingStatus(newStatus)

	detail, err := s.store.GetBookingDetail(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Booking not found")
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	booking := detail.Booking

	oldStatus := booking.Status
	booking.Status = status
	booking.UpdatedAt = time.Now()
	if err := s.store.UpdateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	s.notifyAdminStatusChange(ctx, booking, detail.ServiceName, status)

	s.logger.Info("booking status updated by admin",
		"booking_id", booking.ID,
		"from", oldStatus,
		"to", status,
	)

	return bookingView(detail), nil
}

// notifyAdminStatusChange tells the resident an admin moved their
// booking. Best effort.
func (s *AdminService) notifyAdminStatusChange(ctx context.Context, booking *domain.Booking, serviceName string, status domain.BookingStatus) {
	var message string
	switch status {
	case domain.StatusInProgress:
		message = fmt.Sprintf("Your %s booking is now in progress.", serviceName)
	case domain.StatusCompleted:
		message = fmt.Sprintf("Your %s booking has been marked as completed by admin. Please rate your experience!", serviceName)
	case domain.StatusCancelled:
		message = fmt.Sprintf("Your %s booking has been cancelled by admin.", serviceName)
	case domain.StatusBooked:
		message = fmt.Sprintf("Your %s booking status has been updated to Booked.", serviceName)
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
		s.logger.Warn("create admin status notification", "booking_id", booking.ID, "error", err)
	}
}

// ProviderView is one provider in the admin listing, with their account
// and offerings.
type ProviderView struct {
	ID       int64           `json:"id"`
	UserID   int64           `json:"user_id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Services []*OfferingView `json:"services"`
}

// providerView assembles the admin view of one provider.
func (s *AdminService) providerView(ctx context.Context, provider *domain.Provider) (*ProviderView, error) {
	user, err := s.store.GetUser(ctx, provider.UserID)
	if err != nil {
		return nil, fmt.Errorf("get provider user: %w", err)
	}

	offerings, err := s.store.ListProviderOfferings(ctx, provider.ID)
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}

	services := make([]*OfferingView, 0, len(offerings))
	for _, o := range offerings {
		svc, err := s.store.GetService(ctx, o.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("get service %d: %w", o.ServiceID, err)
		}
		services = append(services, &OfferingView{
			ID:          o.ID,
			Service:     svc.Name,
			Description: svc.Description,
			Price:       svc.Price(),
			Available:   o.Available,
			Rating:      o.Rating,
			RatingCount: o.RatingCount,
		})
	}

	return &ProviderView{
		ID:       provider.ID,
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Phone:    provider.Phone,
		Services: services,
	}, nil
}

// ListProviders returns every provider with their account and offerings.
func (s *AdminService) ListProviders(ctx context.Context) ([]*ProviderView, error) {
	providers, err := s.store.ListProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}

	views := make([]*ProviderView, 0, len(providers))
	for _, p := range providers {
		view, err := s.providerView(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// CreateProviderRequest carries the provider onboarding form. Services
// lists the names of the services the provider performs; names the
// catalog doesn't know yet are created with canned descriptions and the
// default price.
type CreateProviderRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Services []string `json:"services"`
}

// CreateProvider onboards a provider: a user account with the default
// password, a provider profile, and one offering per service name.
func (s *AdminService) CreateProvider(ctx context.Context, req *CreateProviderRequest) (*ProviderView, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" {
		return nil, domainerrors.Validation("Name and email are required.")
	}

	passwordHash, err := auth.HashPassword(defaultProviderPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsProvider:   true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("Username or email already exists. Please choose another.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	provider := &domain.Provider{
		UserID:    user.ID,
		Phone:     strings.TrimSpace(req.Phone),
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateProvider(ctx, provider); err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	if err := s.addOfferings(ctx, provider.ID, req.Services); err != nil {
		return nil, err
	}

	s.logger.Info("provider created",
		"provider_id", provider.ID,
		"user_id", user.ID,
		"email", email,
		"services", len(req.Services),
	)

	return s.providerView(ctx, provider)
}

// addOfferings links the provider to each named service, creating
// catalog entries for names it doesn't know.
func (s *AdminService) addOfferings(ctx context.Context, providerID int64, names []string) error {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		svc, err := s.store.GetServiceByName(ctx, name)
		if errors.Is(err, domainerrors.ErrNotFound) {
			svc = &domain.Service{
				Name:        name,
				Description: domain.DefaultServiceDescription(name),
				PriceCents:  domain.DefaultPriceCents,
				CreatedAt:   time.Now(),
			}
			if err := s.store.CreateService(ctx, svc); err != nil {
				return fmt.Errorf("create service %q: %w", name, err)
			}
		} else if err != nil {
			return fmt.Errorf("get service %q: %w", name, err)
		}

		offering := &domain.Offering{
			ProviderID: providerID,
			ServiceID:  svc.ID,
			Available:  true,
		}
		if err := s.store.CreateOffering(ctx, offering); err != nil {
			if errors.Is(err, domainerrors.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("create offering for %q: %w", name, err)
		}
	}
	return nil
}

// UpdateProviderRequest carries the fields an admin may change on a
// provider. Nil fields are left alone; Services adds offerings for any
// names the provider doesn't perform yet.
type UpdateProviderRequest struct {
	Username *string  `json:"username,omitempty"`
	Email    *string  `json:"email,omitempty"`
	Phone    *string  `json:"phone,omitempty"`
	Services []string `json:"services,omitempty"`
}

// UpdateProvider edits a provider's account and offerings.
func (s *AdminService) UpdateProvider(ctx context.Context, providerID int64, req *UpdateProviderRequest) (*ProviderView, error) {
	provider, err := s.store.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Provider not found.")
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}

	if req.Username != nil || req.Email != nil {
		user, err := s.store.GetUser(ctx, provider.UserID)
		if err != nil {
			return nil, fmt.Errorf("get provider user: %w", err)
		}
		if req.Username != nil {
			user.Username = strings.TrimSpace(*req.Username)
		}
		if req.Email != nil {
			user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		}
		user.UpdatedAt = time.Now()
		if err := s.store.UpdateUser(ctx, user); err != nil {
			if errors.Is(err, domainerrors.ErrAlreadyExists) {
				return nil, domainerrors.AlreadyExists("Username or email already exists. Please choose another.")
			}
			return nil, fmt.Errorf("update provider user: %w", err)
		}
	}

	if req.Phone != nil {
		provider.Phone = strings.TrimSpace(*req.Phone)
		if err := s.store.UpdateProvider(ctx, provider); err != nil {
			return nil, fmt.Errorf("update provider: %w", err)
		}
	}

	if err := s.addOfferings(ctx, provider.ID, req.Services); err != nil {
		return nil, err
	}

	s.logger.Info("provider updated", "provider_id", provider.ID)

	return s.providerView(ctx, provider)
}

// DeleteProvider removes a provider entirely: the account, the profile,
// the offerings, and every booking and notification hanging off them.
func (s *AdminService) DeleteProvider(ctx context.Context, providerID int64) error {
	provider, err := s.store.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("Provider not found.")
		}
		return fmt.Errorf("get provider: %w", err)
	}

	// Deleting the account cascades through the provider profile and
	// its offerings.
	if err := s.store.DeleteUser(ctx, provider.UserID); err != nil {
		return fmt.Errorf("delete provider user: %w", err)
	}
	if err := s.sessions.RevokeAllForUser(ctx, provider.UserID); err != nil {
		s.logger.Warn("revoke sessions for deleted provider", "user_id", provider.UserID, "error", err)
	}

	s.logger.Info("provider deleted", "provider_id", providerID, "user_id", provider.UserID)
	return nil
}
