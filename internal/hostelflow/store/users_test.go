package store

import (
	"context"
	"errors"
	"testing"
	"time"

	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
)

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeUser(t, s, "alice@test.dev")

	now := time.Now()
	dup := &domain.User{
		Email:        "ALICE@test.dev", // case differs, same account
		Username:     "alice2",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := s.CreateUser(ctx, dup)
	if !errors.Is(err, domainerrors.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetUserByEmailCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := makeUser(t, s, "bob@test.dev")

	got, err := s.GetUserByEmail(ctx, "  BOB@Test.Dev ")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("expected id %d, got %d", u.ID, got.ID)
	}
	if got.RoomNumber != "A-101" {
		t.Errorf("room number lost in round trip: %q", got.RoomNumber)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), 9999)
	if !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListStudentsExcludesProvidersAndAdmins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	student := makeUser(t, s, "carol@test.dev")

	admin := makeUser(t, s, "admin@test.dev")
	admin.IsAdmin = true
	if err := s.UpdateUser(ctx, admin); err != nil {
		t.Fatalf("mark admin: %v", err)
	}

	svc := makeService(t, s, "Laundry")
	makeProviderWithOffering(t, s, "prov@test.dev", svc.ID)

	students, err := s.ListStudents(ctx)
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	if len(students) != 1 {
		t.Fatalf("expected 1 student, got %d", len(students))
	}
	if students[0].ID != student.ID {
		t.Errorf("expected student %d, got %d", student.ID, students[0].ID)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := makeUser(t, s, "dave@test.dev")
	svc := makeService(t, s, "Room Cleaning")
	_, o := makeProviderWithOffering(t, s, "prov2@test.dev", svc.ID)
	b := makeBooking(t, s, u.ID, o.ID, "2026-04-01", "08:00-10:00")

	n := &domain.Notification{UserID: u.ID, Message: "hi", BookingID: &b.ID, CreatedAt: time.Now()}
	if err := s.CreateNotification(ctx, n); err != nil {
		t.Fatalf("create notification: %v", err)
	}

	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := s.GetBooking(ctx, b.ID); !errors.Is(err, domainerrors.ErrNotFound) {
		t.Errorf("booking should cascade on user delete, got %v", err)
	}
	notifications, err := s.ListUserNotifications(ctx, u.ID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifications) != 0 {
		t.Errorf("notifications should cascade, got %d", len(notifications))
	}
}
