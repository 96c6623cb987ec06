// Package main provides a tool to seed a fresh HostelFlow database with
// demo data: an admin account, the standard hostel services, and a few
// providers with offerings so the booking flow works out of the box.
//
// Usage:
//
//	DB_PATH=~/campuscore/hostelflow.db go run ./cmd/seed
//	DB_PATH=~/campuscore/hostelflow.db go run ./cmd/seed --with-residents
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/store"
)

var withResidents = flag.Bool("with-residents", false, "Also create demo resident accounts")

var serviceNames = []string{
	"Laundry",
	"Room Cleaning",
	"Study Spaces",
	"Room Repairs",
	"Tech Support",
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/campuscore/hostelflow.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, err := store.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	admin := seedUser(ctx, s, &domain.User{
		Email:    "admin@hostelflow.local",
		Username: "admin",
		IsActive: true,
		IsAdmin:  true,
	}, "admin12345")
	fmt.Printf("Admin account ready: %s (id=%d)\n", admin.Email, admin.ID)

	services := make(map[string]*domain.Service, len(serviceNames))
	for _, name := range serviceNames {
		services[name] = seedService(ctx, s, name)
	}
	fmt.Printf("Seeded %d services\n", len(services))

	providers := []struct {
		username string
		email    string
		phone    string
		services []string
	}{
		{"fresh_fold", "laundry@hostelflow.local", "555-0101", []string{"Laundry"}},
		{"spark_clean", "cleaning@hostelflow.local", "555-0102", []string{"Room Cleaning", "Room Repairs"}},
		{"campus_tech", "tech@hostelflow.local", "555-0103", []string{"Tech Support"}},
	}

	for _, p := range providers {
		seedProvider(ctx, s, p.username, p.email, p.phone, p.services, services)
	}
	fmt.Printf("Seeded %d providers (default password %q)\n", len(providers), "serviceprovider")

	if *withResidents {
		for i := 1; i <= 3; i++ {
			u := seedUser(ctx, s, &domain.User{
				Email:      fmt.Sprintf("resident%d@hostelflow.local", i),
				Username:   fmt.Sprintf("resident%d", i),
				RoomNumber: fmt.Sprintf("A-%d0%d", i, i),
				IsActive:   true,
			}, "password123")
			fmt.Printf("Resident ready: %s\n", u.Email)
		}
	}

	fmt.Println("Done.")
}

// seedUser creates the account or returns the existing one with that email.
func seedUser(ctx context.Context, s *store.Store, u *domain.User, password string) *domain.User {
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	u.PasswordHash = hash

	err = s.CreateUser(ctx, u)
	if domainerrors.Is(err, domainerrors.ErrAlreadyExists) {
		existing, getErr := s.GetUserByEmail(ctx, strings.ToLower(u.Email))
		if getErr != nil {
			log.Fatalf("Failed to load existing user %s: %v", u.Email, getErr)
		}
		return existing
	}
	if err != nil {
		log.Fatalf("Failed to create user %s: %v", u.Email, err)
	}
	return u
}

func seedService(ctx context.Context, s *store.Store, name string) *domain.Service {
	svc := &domain.Service{
		Name:        name,
		Description: domain.DefaultServiceDescription(name),
		PriceCents:  domain.DefaultPriceCents,
	}
	err := s.CreateService(ctx, svc)
	if domainerrors.Is(err, domainerrors.ErrAlreadyExists) {
		existing, getErr := s.GetServiceByName(ctx, name)
		if getErr != nil {
			log.Fatalf("Failed to load existing service %s: %v", name, getErr)
		}
		return existing
	}
	if err != nil {
		log.Fatalf("Failed to create service %s: %v", name, err)
	}
	return svc
}

func seedProvider(ctx context.Context, s *store.Store, username, email, phone string, offered []string, services map[string]*domain.Service) {
	user := seedUser(ctx, s, &domain.User{
		Email:      email,
		Username:   username,
		IsActive:   true,
		IsProvider: true,
	}, "serviceprovider")

	provider, err := s.GetProviderByUserID(ctx, user.ID)
	if domainerrors.Is(err, domainerrors.ErrNotFound) {
		provider = &domain.Provider{UserID: user.ID, Phone: phone}
		if err := s.CreateProvider(ctx, provider); err != nil {
			log.Fatalf("Failed to create provider %s: %v", username, err)
		}
	} else if err != nil {
		log.Fatalf("Failed to look up provider %s: %v", username, err)
	}

	for _, name := range offered {
		svc, ok := services[name]
		if !ok {
			log.Fatalf("Unknown service %q for provider %s", name, username)
		}
		err := s.CreateOffering(ctx, &domain.Offering{
			ProviderID: provider.ID,
			ServiceID:  svc.ID,
			Available:  true,
		})
		if err != nil && !domainerrors.Is(err, domainerrors.ErrAlreadyExists) {
			log.Fatalf("Failed to create offering %s/%s: %v", username, name, err)
		}
	}
}
