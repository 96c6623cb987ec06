package store

import (
	"context"
	"testing"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
)

func TestCreateAndGetGenre(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := &domain.Genre{Name: "Science Fiction", Slug: "science-fiction"}
	if err := s.CreateGenre(ctx, g); err != nil {
		t.Fatalf("CreateGenre: %v", err)
	}
	if g.ID == 0 {
		t.Fatal("CreateGenre did not assign an id")
	}

	got, err := s.GetGenre(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGenre: %v", err)
	}
	if got.Name != "Science Fiction" || got.Slug != "science-fiction" {
		t.Errorf("got %+v", got)
	}
}

func TestCreateGenre_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateGenre(ctx, &domain.Genre{Name: "Horror", Slug: "horror"}); err != nil {
		t.Fatalf("CreateGenre: %v", err)
	}

	err := s.CreateGenre(ctx, &domain.Genre{Name: "Horror", Slug: "horror"})
	if !domainerrors.Is(err, domainerrors.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetOrCreateGenre(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g, created, err := s.GetOrCreateGenre(ctx, "Epic Fantasy")
	if err != nil {
		t.Fatalf("GetOrCreateGenre: %v", err)
	}
	if !created {
		t.Error("expected created=true on first call")
	}
	if g.Slug != "epic-fantasy" {
		t.Errorf("Slug: got %q, want epic-fantasy", g.Slug)
	}

	again, created, err := s.GetOrCreateGenre(ctx, "Epic Fantasy")
	if err != nil {
		t.Fatalf("GetOrCreateGenre (second): %v", err)
	}
	if created {
		t.Error("expected created=false on second call")
	}
	if again.ID != g.ID {
		t.Errorf("ID: got %d, want %d", again.ID, g.ID)
	}
}

func TestListGenres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Mystery", "Fantasy", "Science Fiction"} {
		if err := s.CreateGenre(ctx, &domain.Genre{Name: name, Slug: domain.Slugify(name)}); err != nil {
			t.Fatalf("CreateGenre %s: %v", name, err)
		}
	}

	all, err := s.ListGenres(ctx, "")
	if err != nil {
		t.Fatalf("ListGenres: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 genres, got %d", len(all))
	}
	// Alphabetical order.
	if all[0].Name != "Fantasy" || all[2].Name != "Science Fiction" {
		t.Errorf("unexpected order: %q, %q, %q", all[0].Name, all[1].Name, all[2].Name)
	}

	// Substring filter, case-insensitive.
	filtered, err := s.ListGenres(ctx, "SCI")
	if err != nil {
		t.Fatalf("ListGenres(q): %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Science Fiction" {
		t.Errorf("filtered: got %v", filtered)
	}

	count, err := s.CountGenres(ctx)
	if err != nil {
		t.Fatalf("CountGenres: %v", err)
	}
	if count != 3 {
		t.Errorf("CountGenres: got %d, want 3", count)
	}
}

func TestUpdateGenre(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := &domain.Genre{Name: "Scifi", Slug: "scifi"}
	if err := s.CreateGenre(ctx, g); err != nil {
		t.Fatalf("CreateGenre: %v", err)
	}

	g.Name = "Science Fiction"
	g.Slug = "science-fiction"
	if err := s.UpdateGenre(ctx, g); err != nil {
		t.Fatalf("UpdateGenre: %v", err)
	}

	got, err := s.GetGenre(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGenre: %v", err)
	}
	if got.Name != "Science Fiction" || got.Slug != "science-fiction" {
		t.Errorf("got %+v", got)
	}
}

func TestUpdateGenre_Collision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateGenre(ctx, &domain.Genre{Name: "Horror", Slug: "horror"}); err != nil {
		t.Fatalf("CreateGenre: %v", err)
	}
	g := &domain.Genre{Name: "Terror", Slug: "terror"}
	if err := s.CreateGenre(ctx, g); err != nil {
		t.Fatalf("CreateGenre: %v", err)
	}

	g.Name = "Horror"
	err := s.UpdateGenre(ctx, g)
	if !domainerrors.Is(err, domainerrors.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestDeleteGenre(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := &domain.Genre{Name: "Doomed", Slug: "doomed"}
	if err := s.CreateGenre(ctx, g); err != nil {
		t.Fatalf("CreateGenre: %v", err)
	}

	if err := s.DeleteGenre(ctx, g.ID); err != nil {
		t.Fatalf("DeleteGenre: %v", err)
	}

	_, err := s.GetGenre(ctx, g.ID)
	if !domainerrors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	err = s.DeleteGenre(ctx, g.ID)
	if !domainerrors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
