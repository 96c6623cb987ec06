package domain

import "time"

// Notification is an in-app message for one user, usually tied to a
// booking whose state just changed.
type Notification struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`

	// BookingID links the notification to the booking it is about, when
	// there is one. Deleted bookings take their notifications with them.
	BookingID *int64 `json:"booking,omitempty"`

	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
