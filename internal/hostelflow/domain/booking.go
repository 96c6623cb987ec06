package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// TimeSlots lists the five fixed two-hour windows a booking can occupy,
// in day order. Bookings carry the slot verbatim as their time_slot.
var TimeSlots = []string{
	"08:00-10:00",
	"10:00-12:00",
	"12:00-14:00",
	"14:00-16:00",
	"16:00-18:00",
}

// ValidTimeSlot reports whether the string is one of the fixed slots.
func ValidTimeSlot(slot string) bool {
	return slices.Contains(TimeSlots, slot)
}

// SlotEnded reports whether the slot's end time has already passed at
// the given moment. Used to grey out slots when booking for today.
func SlotEnded(slot string, now time.Time) bool {
	_, end, ok := strings.Cut(slot, "-")
	if !ok {
		return false
	}
	hourStr, minStr, ok := strings.Cut(end, ":")
	if !ok {
		return false
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return false
	}
	minute, err := strconv.Atoi(minStr)
	if err != nil {
		return false
	}
	endAt := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	return now.After(endAt)
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

// Booking lifecycle states. A booking starts Booked; the provider moves
// it forward; either side can end up at Cancelled.
const (
	StatusBooked     BookingStatus = "Booked"
	StatusInProgress BookingStatus = "In Progress"
	StatusCompleted  BookingStatus = "Completed"
	StatusCancelled  BookingStatus = "Cancelled"
)

// BookingStatuses lists every valid status, in lifecycle order.
var BookingStatuses = []BookingStatus{
	StatusBooked,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// ValidBookingStatus reports whether the string names a known status.
func ValidBookingStatus(s string) bool {
	return slices.Contains(BookingStatuses, BookingStatus(s))
}

// CanProviderTransition reports whether a provider may move a booking
// from one status to another. Providers walk the booking forward one
// step at a time and may cancel only while it is still just Booked;
// admins bypass this check entirely.
func CanProviderTransition(from, to BookingStatus) bool {
	switch from {
	case StatusBooked:
		return to == StatusInProgress || to == StatusCancelled
	case StatusInProgress:
		return to == StatusCompleted
	default:
		return false
	}
}

// Booking is a resident's reservation of a provider's service for one
// time slot on one date.
type Booking struct {
	ID         int64 `json:"id"`
	UserID     int64 `json:"user_id"`
	OfferingID int64 `json:"offering_id"`

	// Date is the day of service, date-only.
	Date time.Time `json:"date"`

	// TimeSlot is one of TimeSlots.
	TimeSlot string `json:"time_slot"`

	SpecialInstructions string        `json:"special_instructions"`
	Status              BookingStatus `json:"status"`

	// Comment is the resident's review text, set when they rate a
	// completed booking. A Completed booking with an empty comment counts
	// as pending review on the dashboard.
	Comment string `json:"comment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DateString returns the booking date in the wire format.
func (b *Booking) DateString() string {
	return b.Date.Format("2006-01-02")
}

// IsPendingReview reports whether the booking is completed but not yet
// rated by the resident.
func (b *Booking) IsPendingReview() bool {
	return b.Status == StatusCompleted && b.Comment == ""
}
