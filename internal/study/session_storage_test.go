package study_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/conorfennell/sm2deck/internal/domain"
	"github.com/conorfennell/sm2deck/internal/sm2"
	"github.com/conorfennell/sm2deck/internal/storage"
	"github.com/conorfennell/sm2deck/internal/study"
)

func TestSessionAgainstStorage(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(filepath.Join(t.TempDir(), "study.db"))
	if err != nil {
		t.Fatalf("Open() returned an unexpected error: %v", err)
	}
	defer db.Close()

	d, _ := domain.NewDeck("Chemistry", "")
	d, err = db.CreateDeck(ctx, d)
	if err != nil {
		t.Fatalf("CreateDeck() returned an unexpected error: %v", err)
	}

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, front := range []string{"H", "He", "Li"} {
		c, _ := domain.NewCard(d.ID, front, "element")
		if _, err := db.CreateCard(ctx, c, now); err != nil {
			t.Fatalf("CreateCard() returned an unexpected error: %v", err)
		}
	}

	s, err := study.Start(ctx, db, d.ID, now, nil)
	if err != nil {
		t.Fatalf("Start() returned an unexpected error: %v", err)
	}
	for !s.Done() {
		if _, err := s.Grade(ctx, sm2.Perfect, now); err != nil {
			t.Fatalf("Grade() returned an unexpected error: %v", err)
		}
	}

	again, err := study.Start(ctx, db, d.ID, now, nil)
	if err != nil {
		t.Fatalf("Start() returned an unexpected error: %v", err)
	}
	if again.Total() != 0 {
		t.Errorf("Expected nothing due right after a session, but got %d", again.Total())
	}

	tomorrow, err := study.Start(ctx, db, d.ID, now.AddDate(0, 0, 1), nil)
	if err != nil {
		t.Fatalf("Start() returned an unexpected error: %v", err)
	}
	if tomorrow.Total() != 3 {
		t.Errorf("Expected 3 cards due tomorrow, but got %d", tomorrow.Total())
	}
}
