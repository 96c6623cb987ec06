// Package domain defines the HostelFlow entities: residents, the services
// the hostel offers, the providers who perform them, and the bookings and
// notifications that tie them together.
package domain

import "time"

// User represents a hostel resident, service provider, or admin account.
// Providers additionally own a Provider profile row.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	RoomNumber   string `json:"room_number"`
	PasswordHash string `json:"-"` // argon2id encoded, never serialized
	IsActive     bool   `json:"is_active"`
	IsAdmin      bool   `json:"is_admin"`
	IsProvider   bool   `json:"is_serviceprovider"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoomLabel returns the room number for display, or "N/A" for accounts
// without one (providers and admins don't live in the hostel).
func (u *User) RoomLabel() string {
	if u.RoomNumber == "" {
		return "N/A"
	}
	return u.RoomNumber
}

// IsStudent reports whether the account is a plain resident: not a
// provider and not an admin. Admin user listings and the protected
// delete check both key off this.
func (u *User) IsStudent() bool {
	return !u.IsProvider && !u.IsAdmin
}
