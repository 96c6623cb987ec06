package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/store"
	"github.com/Sanjay-nithin/campuscore-server/internal/validation"
)

// dateLayout is the wire format for booking dates.
const dateLayout = "2006-01-02"

// BookingService implements the resident-facing booking flow: browsing
// services, checking slot availability, booking, cancelling and rating.
type BookingService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookingService creates a new booking service.
func NewBookingService(store *store.Store, validator *validation.Validator, logger *slog.Logger) *BookingService {
	return &BookingService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// ServiceView is one hostel service in the public listing.
type ServiceView struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	ProviderCount int64   `json:"provider_count"`
}

// ListServices returns every service the hostel offers, with how many
// providers perform each.
func (s *BookingService) ListServices(ctx context.Context) ([]*ServiceView, error) {
	listings, err := s.store.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	views := make([]*ServiceView, 0, len(listings))
	for _, l := range listings {
		views = append(views, &ServiceView{
			ID:            l.Service.ID,
			Name:          l.Service.Name,
			Description:   l.Service.Description,
			Price:         l.Service.Price(),
			ProviderCount: l.ProviderCount,
		})
	}
	return views, nil
}

// AvailabilityResponse reports which slots are still bookable for a
// service on a date.
type AvailabilityResponse struct {
	ServiceID        int64    `json:"service_id"`
	Date             string   `json:"date"`
	TimeSlots        []string `json:"time_slots"`
	UnavailableSlots []string `json:"unavailable_slots"`
}

// resolveDate turns a date query value into a day. "today" and
// "tomorrow" are accepted alongside the plain layout.
func resolveDate(value string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	case "tomorrow":
		tomorrow := now.AddDate(0, 0, 1)
		return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC), nil
	default:
		day, err := time.Parse(dateLayout, strings.TrimSpace(value))
		if err != nil {
			return time.Time{}, domainerrors.Validation("Invalid date format")
		}
		return day, nil
	}
}

// Availability reports per-slot availability for one service on one day.
// A slot is unavailable when every available provider of the service
// already holds a live booking in it, or the day is today and the slot
// has ended.
func (s *BookingService) Availability(ctx context.Context, serviceID int64, dateStr string, now time.Time) (*AvailabilityResponse, error) {
	if _, err := s.store.GetService(ctx, serviceID); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Service not found")
		}
		return nil, fmt.Errorf("get service: %w", err)
	}

	day, err := resolveDate(dateStr, now)
	if err != nil {
		return nil, err
	}

	offerings, err := s.store.ListServiceOfferings(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	available := make(map[int64]bool, len(offerings))
	capacity := 0
	for _, o := range offerings {
		if o.Available {
			available[o.ID] = true
			capacity++
		}
	}

	claims, err := s.store.ListSlotClaims(ctx, serviceID, day)
	if err != nil {
		return nil, fmt.Errorf("list slot claims: %w", err)
	}
	claimed := make(map[string]int, len(domain.TimeSlots))
	for _, c := range claims {
		if available[c.OfferingID] {
			claimed[c.TimeSlot]++
		}
	}

	isToday := day.Format(dateLayout) == now.Format(dateLayout)
	unavailable := make([]string, 0, len(domain.TimeSlots))
	for _, slot := range domain.TimeSlots {
		if claimed[slot] >= capacity || (isToday && domain.SlotEnded(slot, now)) {
			unavailable = append(unavailable, slot)
		}
	}

	return &AvailabilityResponse{
		ServiceID:        serviceID,
		Date:             day.Format(dateLayout),
		TimeSlots:        domain.TimeSlots,
		UnavailableSlots: unavailable,
	}, nil
}

// CreateBookingRequest carries the booking form fields.
type CreateBookingRequest struct {
	ServiceID           int64  `json:"service_id" validate:"required"`
	Date                string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot            string `json:"time_slot" validate:"required,oneof=08:00-10:00 10:00-12:00 12:00-14:00 14:00-16:00 16:00-18:00"`
	SpecialInstructions string `json:"special_instructions"`
}

// BookingView is one booking as the API serves it, flattened across the
// resident, offering and service rows.
type BookingView struct {
	ID                  int64                `json:"id"`
	Service             string               `json:"service"`
	Price               float64              `json:"price"`
	Date                string               `json:"date"`
	TimeSlot            string               `json:"time_slot"`
	SpecialInstructions string               `json:"special_instructions"`
	Status              domain.BookingStatus `json:"status"`
	Comment             string               `json:"comment"`
	Username            string               `json:"username"`
	RoomNumber          string               `json:"room_number"`
	CreatedAt           time.Time            `json:"created_at"`
}

// bookingView flattens a joined booking row into the API shape.
func bookingView(d *store.BookingDetail) *BookingView {
	room := d.RoomNumber
	if room == "" {
		room = "N/A"
	}
	return &BookingView{
		ID:                  d.Booking.ID,
		Service:             d.ServiceName,
		Price:               float64(d.ServicePrice) / 100,
		Date:                d.Booking.DateString(),
		TimeSlot:            d.Booking.TimeSlot,
		SpecialInstructions: d.Booking.SpecialInstructions,
		Status:              d.Booking.Status,
		Comment:             d.Booking.Comment,
		Username:            d.Username,
		RoomNumber:          room,
		CreatedAt:           d.Booking.CreatedAt,
	}
}

// bookingViews maps a detail list into API shapes.
func bookingViews(details []*store.BookingDetail) []*BookingView {
	views := make([]*BookingView, 0, len(details))
	for _, d := range details {
		views = append(views, bookingView(d))
	}
	return views
}

// CreateBooking books a slot for the resident, auto-assigning the first
// provider of the service who is available and has no live booking in
// the slot. Returns a conflict error when every provider is taken.
func (s *BookingService) CreateBooking(ctx context.Context, user *domain.User, req *CreateBookingRequest) (*BookingView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	day, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, domainerrors.Validation("Invalid date format")
	}

	service, err := s.store.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Service not found")
		}
		return nil, fmt.Errorf("get service: %w", err)
	}

	offering, err := s.assignOffering(ctx, service.ID, day, req.TimeSlot)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	booking := &domain.Booking{
		UserID:              user.ID,
		OfferingID:          offering.ID,
		Date:                day,
		TimeSlot:            req.TimeSlot,
		SpecialInstructions: strings.TrimSpace(req.SpecialInstructions),
		Status:              domain.StatusBooked,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			// Someone grabbed the slot between assignment and insert.
			return nil, domainerrors.Conflict("This time slot was just taken. Please pick another.")
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.notifyProvider(ctx, user, service, offering, booking)

	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"user_id", user.ID,
		"service_id", service.ID,
		"offering_id", offering.ID,
		"date", booking.DateString(),
		"slot", booking.TimeSlot,
	)

	detail, err := s.store.GetBookingDetail(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return bookingView(detail), nil
}

// assignOffering picks the first available offering of the service with
// no live booking in the slot.
func (s *BookingService) assignOffering(ctx context.Context, serviceID int64, day time.Time, slot string) (*domain.Offering, error) {
	offerings, err := s.store.ListServiceOfferings(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}

	claims, err := s.store.ListSlotClaims(ctx, serviceID, day)
	if err != nil {
		return nil, fmt.Errorf("list slot claims: %w", err)
	}
	taken := make(map[int64]bool)
	for _, c := range claims {
		if c.TimeSlot == slot {
			taken[c.OfferingID] = true
		}
	}

	for _, o := range offerings {
		if o.Available && !taken[o.ID] {
			return o, nil
		}
	}
	return nil, domainerrors.Conflict("No available provider found for this service and time slot")
}

// notifyProvider tells the assigned provider about a fresh booking.
// Best effort: a failed notification never fails the booking.
func (s *BookingService) notifyProvider(ctx context.Context, user *domain.User, service *domain.Service, offering *domain.Offering, booking *domain.Booking) {
	provider, err := s.store.GetProvider(ctx, offering.ProviderID)
	if err != nil {
		s.logger.Warn("load provider for notification", "provider_id", offering.ProviderID, "error", err)
		return
	}

	message := fmt.Sprintf(
		"New booking received! %s has booked %s for %s at %s. Room: %s",
		user.Username, service.Name, booking.DateString(), booking.TimeSlot, user.RoomLabel(),
	)
	n := &domain.Notification{
		UserID:    provider.UserID,
		Message:   message,
		BookingID: &booking.ID,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		s.logger.Warn("create booking notification", "booking_id", booking.ID, "error", err)
	}
}

// MyBookings returns the resident's bookings, newest date first.
func (s *BookingService) MyBookings(ctx context.Context, userID int64) ([]*BookingView, error) {
	details, err := s.store.ListUserBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookingViews(details), nil
}

// Cancel cancels the resident's own booking. Only a booking still in the
// Booked state can be cancelled.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID int64) (*BookingView, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil || booking.UserID != userID {
		return nil, domainerrors.NotFound("Booking not found")
	}

	if booking.Status != domain.StatusBooked {
		return nil, domainerrors.Validation("Only booked services can be cancelled")
	}

	booking.Status = domain.StatusCancelled
	booking.UpdatedAt = time.Now()
	if err := s.store.UpdateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	s.logger.Info("booking cancelled", "booking_id", booking.ID, "user_id", userID)

	detail, err := s.store.GetBookingDetail(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return bookingView(detail), nil
}

// RateBookingRequest carries the resident's review of a completed
// booking.
type RateBookingRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

// Rate records the resident's rating for a completed booking: the
// comment lands on the booking, the score folds into the offering's
// running mean.
func (s *BookingService) Rate(ctx context.Context, userID, bookingID int64, req *RateBookingRequest) (*BookingView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil || booking.UserID != userID {
		return nil, domainerrors.NotFound("Booking not found")
	}

	if booking.Status != domain.StatusCompleted {
		return nil, domainerrors.Validation("Only completed services can be rated")
	}

	booking.Comment = strings.TrimSpace(req.Comment)
	booking.UpdatedAt = time.Now()
	if err := s.store.UpdateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	if err := s.store.AddOfferingRating(ctx, booking.OfferingID, req.Rating); err != nil {
		return nil, fmt.Errorf("add rating: %w", err)
	}

	s.logger.Info("booking rated", "booking_id", booking.ID, "user_id", userID, "rating", req.Rating)

	detail, err := s.store.GetBookingDetail(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return bookingView(detail), nil
}

// DashboardResponse is the resident's booking counters plus the size of
// the service catalog.
type DashboardResponse struct {
	UpcomingBookings int64 `json:"upcoming_bookings"`
	InProgress       int64 `json:"in_progress"`
	Completed        int64 `json:"completed"`
	PendingReview    int64 `json:"pending_review"`
	TotalBookings    int64 `json:"total_bookings"`
	TotalServices    int64 `json:"total_services"`
}

// Dashboard computes the resident's dashboard counters.
func (s *BookingService) Dashboard(ctx context.Context, userID int64) (*DashboardResponse, error) {
	stats, err := s.store.GetUserBookingStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("booking stats: %w", err)
	}

	totalServices, err := s.store.CountServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("count services: %w", err)
	}

	return &DashboardResponse{
		UpcomingBookings: stats.Booked,
		InProgress:       stats.InProgress,
		Completed:        stats.Completed,
		PendingReview:    stats.PendingReview,
		TotalBookings:    stats.Total,
		TotalServices:    totalServices,
	}, nil
}
