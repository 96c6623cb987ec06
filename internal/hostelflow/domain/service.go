package domain

import (
	"strings"
	"time"
)

// Service is something the hostel offers to residents: laundry, room
// cleaning, repairs. Residents book a service; a provider is assigned
// behind the scenes.
type Service struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// PriceCents stores the price in integer cents so arithmetic stays
	// exact; the API serializes it as a decimal amount.
	PriceCents int64 `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// DefaultPriceCents is the price assigned to services created implicitly
// when an admin registers a provider with a new service name.
const DefaultPriceCents = 10000 // 100.00

// Price returns the price as a decimal amount for serialization.
func (s *Service) Price() float64 {
	return float64(s.PriceCents) / 100
}

// Provider is the profile attached to a user account with the provider
// role. The account holds identity and credentials; this row holds what
// is specific to being a provider.
type Provider struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Phone  string `json:"phone"`

	CreatedAt time.Time `json:"created_at"`
}

// Offering links a provider to a service they perform, with a per-link
// availability toggle and the running rating residents have given them.
type Offering struct {
	ID         int64 `json:"id"`
	ProviderID int64 `json:"provider_id"`
	ServiceID  int64 `json:"service_id"`

	// Available gates auto-assignment: an unavailable offering is never
	// picked for a new booking and doesn't count toward slot capacity.
	Available bool `json:"availability"`

	// Rating is the running mean of resident ratings; RatingCount is how
	// many ratings went into it.
	Rating      float64 `json:"rating"`
	RatingCount int64   `json:"rating_count"`
}

// AddRating folds one more resident rating into the running mean.
func (o *Offering) AddRating(rating int) {
	total := o.Rating*float64(o.RatingCount) + float64(rating)
	o.RatingCount++
	o.Rating = total / float64(o.RatingCount)
}

// defaultDescriptions maps normalized service names onto the canned
// descriptions used when a provider signup creates a brand-new service.
var defaultDescriptions = map[string]string{
	"laundry":      "Professional laundry services including washing, drying, and ironing.",
	"roomcleaning": "Complete room cleaning with dusting, mopping, and sanitization.",
	"studyspaces":  "Well-maintained study spaces for focused and quiet study sessions.",
	"roomrepairs":  "On-demand maintenance and repair services for hostel rooms.",
	"techsupport":  "Technical assistance for your devices, connectivity, and software.",
}

// DefaultServiceDescription returns the canned description for a service
// name, matching case- and whitespace-insensitively.
func DefaultServiceDescription(name string) string {
	key := strings.ToLower(strings.Join(strings.Fields(name), ""))
	if desc, ok := defaultDescriptions[key]; ok {
		return desc
	}
	return "General service provided by the hostel."
}
