package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidTimeSlot(t *testing.T) {
	for _, slot := range TimeSlots {
		assert.True(t, ValidTimeSlot(slot), slot)
	}
	assert.False(t, ValidTimeSlot("06:00-08:00"))
	assert.False(t, ValidTimeSlot(""))
	assert.False(t, ValidTimeSlot("08:00 - 10:00"))
}

func TestSlotEnded(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		slot  string
		now   time.Time
		ended bool
	}{
		{"before start", "08:00-10:00", day.Add(7 * time.Hour), false},
		{"during slot", "08:00-10:00", day.Add(9 * time.Hour), false},
		{"exactly at end", "08:00-10:00", day.Add(10 * time.Hour), false},
		{"after end", "08:00-10:00", day.Add(10*time.Hour + time.Minute), true},
		{"evening slot midday", "16:00-18:00", day.Add(12 * time.Hour), false},
		{"evening slot ended", "16:00-18:00", day.Add(19 * time.Hour), true},
		{"malformed slot", "late", day.Add(23 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ended, SlotEnded(tt.slot, tt.now))
		})
	}
}

func TestCanProviderTransition(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{StatusBooked, StatusInProgress, true},
		{StatusBooked, StatusCancelled, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusBooked, StatusCompleted, false},
		{StatusInProgress, StatusCancelled, false},
		{StatusInProgress, StatusBooked, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusBooked, false},
		{StatusCancelled, StatusInProgress, false},
		{StatusBooked, StatusBooked, false},
		{StatusCompleted, StatusCompleted, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanProviderTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestOfferingAddRating(t *testing.T) {
	o := &Offering{}

	o.AddRating(4)
	assert.InDelta(t, 4.0, o.Rating, 1e-9)
	assert.EqualValues(t, 1, o.RatingCount)

	o.AddRating(2)
	assert.InDelta(t, 3.0, o.Rating, 1e-9)
	assert.EqualValues(t, 2, o.RatingCount)

	o.AddRating(5)
	assert.InDelta(t, 11.0/3, o.Rating, 1e-9)
	assert.EqualValues(t, 3, o.RatingCount)
}

func TestDefaultServiceDescription(t *testing.T) {
	assert.Equal(t,
		"Professional laundry services including washing, drying, and ironing.",
		DefaultServiceDescription("Laundry"))
	assert.Equal(t,
		"Complete room cleaning with dusting, mopping, and sanitization.",
		DefaultServiceDescription("Room Cleaning"))
	assert.Equal(t,
		"General service provided by the hostel.",
		DefaultServiceDescription("Pet Grooming"))
}

func TestIsPendingReview(t *testing.T) {
	b := &Booking{Status: StatusCompleted}
	assert.True(t, b.IsPendingReview())

	b.Comment = "great service"
	assert.False(t, b.IsPendingReview())

	assert.False(t, (&Booking{Status: StatusBooked}).IsPendingReview())
}

func TestUserRoomLabel(t *testing.T) {
	assert.Equal(t, "N/A", (&User{}).RoomLabel())
	assert.Equal(t, "B-214", (&User{RoomNumber: "B-214"}).RoomLabel())
}
