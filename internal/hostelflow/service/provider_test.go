package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
)

func TestProviderProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := env.providerService()
	ctx := context.Background()

	laundry := env.seedService(t, "Laundry")
	providerUser, provider, _ := env.seedProvider(t, "p1@example.com", "p1", laundry.ID)

	profile, err := svc.Profile(ctx, providerUser)
	require.NoError(t, err)
	assert.Equal(t, provider.ID, profile.ID)
	assert.Equal(t, "p1", profile.Username)
	assert.Equal(t, "555-0101", profile.Phone)
	require.Len(t, profile.Services, 1)
	assert.Equal(t, "Laundry", profile.Services[0].Service)
	assert.True(t, profile.Services[0].Available)
}

func TestProviderProfile_NoProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := env.providerService()

	resident := env.seedUser(t, "resident@example.com", "resident")

	_, err := svc.Profile(context.Background(), resident)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	assert.Contains(t, err.Error(), "Service provider profile not found")
}

func TestProviderBookings(t *testing.T) {
	env := newTestEnv(t)
	svc := env.providerService()
	ctx := context.Background()

	laundry := env.seedService(t, "Laundry")
	resident := env.seedUser(t, "resident@example.com", "resident")
	providerUser, _, offering := env.seedProvider(t, "p1@example.com", "p1", laundry.ID)
	otherUser, _, otherOffering := env.seedProvider(t, "p2@example.com", "p2", laundry.ID)

	env.seedBooking(t, resident.ID, offering.ID, "2026-09-10", "08:00-10:00")
	env.seedBooking(t, resident.ID, otherOffering.ID, "2026-09-10", "10:00-12:00")

	bookings, err := svc.Bookings(ctx, providerUser.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "08:00-10:00", bookings[0].TimeSlot)
	assert.Equal(t, "resident", bookings[0].Username)
	assert.Equal(t, "B-204", bookings[0].RoomNumber)

	other, err := svc.Bookings(ctx, otherUser.ID)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "10:00-12:00", other[0].TimeSlot)
}

func TestUpdateBookingStatus(t *testing.T) {
	env := newTestEnv(t)
	svc := env.providerService()
	ctx := context.Background()

	laundry := env.seedService(t, "Laundry")
	resident := env.seedUser(t, "resident@example.com", "resident")
	providerUser, _, offering := env.seedProvider(t, "p1@example.com", "p1", laundry.ID)

	booking := env.seedBooking(t, resident.ID, offering.ID, "2026-09-10", "08:00-10:00")

	view, err := svc.UpdateBookingStatus(ctx, providerUser.ID, booking.ID, "In Progress")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, view.Status)

	view, err = svc.UpdateBookingStatus(ctx, providerUser.ID, booking.ID, "Completed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, view.Status)

	// The resident heard about both transitions.
	notifications, err := env.store.ListUserNotifications(ctx, resident.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	messages := []string{notifications[0].Message, notifications[1].Message}
	assert.Contains(t, messages,
		"Your Laundry service has started! The service provider is now working on your request.")
	assert.Contains(t, messages,
		"Great news! Your Laundry service has been completed successfully. Please rate your experience!")
}

func TestUpdateBookingStatus_InvalidTransition(t *testing.T) {
	env := newTestEnv(t)
	svc := env.providerService()
	ctx := context.Background()

	laundry := env.seedService(t, "Laundry")
	resident := env.seedUser(t, "resident@example.com", "resident")
	providerUser, _, offering := env.seedProvider(t, "p1@example.com", "p1", laundry.ID)

	booking := env.seedBooking(t, resident.ID, offering.ID, "2026-09-10", "08:00-10:00")

	// Booked cannot jump straight to Completed.
	_, err := svc.UpdateBookingStatus(ctx, providerUser.ID, booking.ID, "Completed")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, err.Error(), "Cannot change status from Booked to Completed")

	_, err = svc.UpdateBookingStatus(ctx, providerUser.ID, booking.ID, "Delivered")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, err.Error(), "Invalid status")
}

func TestUpdateBookingStatus_CancelBooked(t *testing.T) {
	env := newTestEnv(t)
	svc := env.providerService()
	ctx := context.Background()

	laundry := env.seedService(t, "Laundry")
	resident := env.seedUser(t, "resident@example.com", "resident")
	providerUser, _, offering := env.seedProvider(t, "p1@example.com", "p1", laundry.ID)

	booking := env.seedBooking(t, resident.ID, offering.ID, "2026-09-10", "08:00-10:00")

	view, err := svc.UpdateBookingStatus(ctx, providerUser.ID, booking.ID, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, view.Status)

	notifications, err := env.store.ListUserNotifications(ctx, resident.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Your Laundry booking has been cancelled.", notifications[0].Message)
}

func TestUpdateBookingStatus_ForeignBooking(t *testing.T) {
	env := newTestEnv(t)
	svc := env.providerService()
	ctx := context.Background()

	laundry := env.seedService(t, "Laundry")
	resident := env.seedUser(t, "resident@example.com", "resident")
	_, _, offering := env.seedProvider(t, "p1@example.com", "p1", laundry.ID)
	otherUser, _, _ := env.seedProvider(t, "p2@example.com", "p2", laundry.ID)

	booking := env.seedBooking(t, resident.ID, offering.ID, "2026-09-10", "08:00-10:00")

	_, err := svc.UpdateBookingStatus(ctx, otherUser.ID, booking.ID, "In Progress")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	assert.Contains(t, err.Error(), "does not belong to you")
}

func TestSetAvailability(t *testing.T) {
	env := newTestEnv(t)
	svc := env.providerService()
	ctx := context.Background()

	laundry := env.seedService(t, "Laundry")
	providerUser, _, offering := env.seedProvider(t, "p1@example.com", "p1", laundry.ID)
	otherUser, _, _ := env.seedProvider(t, "p2@example.com", "p2", laundry.ID)

	view, err := svc.SetAvailability(ctx, providerUser.ID, offering.ID, false)
	require.NoError(t, err)
	assert.False(t, view.Available)
	assert.Equal(t, "Laundry", view.Service)

	// Another provider cannot flip it.
	_, err = svc.SetAvailability(ctx, otherUser.ID, offering.ID, true)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
