package sync

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/conorfennell/sm2deck/internal/domain"
	"github.com/conorfennell/sm2deck/internal/sm2"
	"github.com/conorfennell/sm2deck/internal/storage"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestRunReconcilesLocalSource(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	opts := Options{ReposDir: t.TempDir(), Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	db, err := storage.Open(filepath.Join(t.TempDir(), "sync.db"))
	if err != nil {
		t.Fatalf("Open() returned an unexpected error: %v", err)
	}
	defer db.Close()

	deck, _ := domain.NewDeck("Notes", "")
	deck, err = db.CreateDeck(ctx, deck)
	if err != nil {
		t.Fatalf("CreateDeck() returned an unexpected error: %v", err)
	}

	notes := t.TempDir()
	writeFile(t, notes, "a.md", "Q: one\nA: 1\n---\nQ: two\nA: 2\n")
	writeFile(t, notes, "b.MD", "Q: three\nA: 3\n")
	writeFile(t, notes, "ignored.txt", "Q: nope\nA: no\n")
	if _, err := db.InsertSource(ctx, notes, SourceType(notes), deck.ID); err != nil {
		t.Fatalf("InsertSource() returned an unexpected error: %v", err)
	}

	report, err := Run(ctx, db, now, opts)
	if err != nil {
		t.Fatalf("Run() returned an unexpected error: %v", err)
	}
	if report.Sources != 1 || report.Added != 3 || report.Removed != 0 || len(report.Errors) != 0 {
		t.Fatalf("Unexpected first report %+v", report)
	}

	cards, err := db.ListCards(ctx, deck.ID)
	if err != nil {
		t.Fatalf("ListCards() returned an unexpected error: %v", err)
	}
	var kept domain.Card
	for _, c := range cards {
		if c.Front == "one" {
			kept = c
		}
	}
	if kept.ID == "" {
		t.Fatalf("Expected card 'one' to be imported, got %+v", cards)
	}
	if _, err := db.RecordReview(ctx, kept.ID, sm2.Perfect, now); err != nil {
		t.Fatalf("RecordReview() returned an unexpected error: %v", err)
	}

	// Re-running without changes must not duplicate anything.
	report, err = Run(ctx, db, now, opts)
	if err != nil {
		t.Fatalf("Run() returned an unexpected error: %v", err)
	}
	if report.Added != 0 || report.Removed != 0 {
		t.Errorf("Expected an idempotent re-run, but got %+v", report)
	}

	writeFile(t, notes, "a.md", "Q: one\nA: 1\n")
	report, err = Run(ctx, db, now, opts)
	if err != nil {
		t.Fatalf("Run() returned an unexpected error: %v", err)
	}
	if report.Added != 0 || report.Removed != 1 {
		t.Errorf("Expected one orphaned card removed, but got %+v", report)
	}

	state, err := db.GetScheduleState(ctx, kept.ID)
	if err != nil {
		t.Fatalf("GetScheduleState() returned an unexpected error: %v", err)
	}
	if state.Repetitions() != 1 {
		t.Errorf("Expected the surviving card to keep its schedule, but got %d repetitions", state.Repetitions())
	}

	sources, _ := db.GetAllSources(ctx)
	if sources[0].LastScanned == nil || !sources[0].LastScanned.Equal(now) {
		t.Errorf("Expected last scanned %v, but got %v", now, sources[0].LastScanned)
	}
}

func TestRunWithoutSources(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("Open() returned an unexpected error: %v", err)
	}
	defer db.Close()

	report, err := Run(context.Background(), db, time.Now(), Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("Run() returned an unexpected error: %v", err)
	}
	if report.Sources != 0 {
		t.Errorf("Expected no sources, but got %d", report.Sources)
	}
}

func TestSourceType(t *testing.T) {
	testCases := map[string]string{
		"/home/me/notes":              storage.SourceLocal,
		"notes":                       storage.SourceLocal,
		"git@github.com:me/cards.git": storage.SourceGit,
		"https://github.com/me/cards": storage.SourceGit,
		"/srv/mirrors/cards.git":      storage.SourceGit,
	}
	for path, want := range testCases {
		if got := SourceType(path); got != want {
			t.Errorf("SourceType(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestGitURLToLocalPath(t *testing.T) {
	testCases := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://github.com/me/cards.git", filepath.Join("repos", "github.com", "me", "cards"), false},
		{"git@github.com:me/cards.git", filepath.Join("repos", "github.com", "me", "cards"), false},
		{"not a url", "", true},
	}
	for _, tc := range testCases {
		got, err := gitURLToLocalPath("repos", tc.url)
		if tc.wantErr {
			if err == nil {
				t.Errorf("gitURLToLocalPath(%q) expected an error", tc.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("gitURLToLocalPath(%q) returned an unexpected error: %v", tc.url, err)
			continue
		}
		if got != tc.want {
			t.Errorf("gitURLToLocalPath(%q) = %s, want %s", tc.url, got, tc.want)
		}
	}
}

func TestRunKeepsCardsWhenAFileFailsToParse(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	opts := Options{ReposDir: t.TempDir(), Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	db, err := storage.Open(filepath.Join(t.TempDir(), "sync.db"))
	if err != nil {
		t.Fatalf("Open() returned an unexpected error: %v", err)
	}
	defer db.Close()

	deck, _ := domain.NewDeck("Notes", "")
	deck, err = db.CreateDeck(ctx, deck)
	if err != nil {
		t.Fatalf("CreateDeck() returned an unexpected error: %v", err)
	}
	notes := t.TempDir()
	writeFile(t, notes, "a.md", "Q: one\nA: 1\n")
	if _, err := db.InsertSource(ctx, notes, SourceType(notes), deck.ID); err != nil {
		t.Fatalf("InsertSource() returned an unexpected error: %v", err)
	}
	if _, err := Run(ctx, db, now, opts); err != nil {
		t.Fatalf("Run() returned an unexpected error: %v", err)
	}

	cards, err := db.ListCards(ctx, deck.ID)
	if err != nil || len(cards) != 1 {
		t.Fatalf("Expected 1 imported card, but got %d (err %v)", len(cards), err)
	}
	one := cards[0]
	for i := 0; i < 3; i++ {
		if _, err := db.RecordReview(ctx, one.ID, sm2.Good, now); err != nil {
			t.Fatalf("RecordReview() returned an unexpected error: %v", err)
		}
	}

	// A long line past the default scanner limit still parses.
	writeFile(t, notes, "a.md", "Q: one\nA: 1\n---\nQ: two\nA: "+strings.Repeat("x", 70000)+"\n")
	report, err := Run(ctx, db, now, opts)
	if err != nil {
		t.Fatalf("Run() returned an unexpected error: %v", err)
	}
	if report.Added != 1 || report.Removed != 0 || len(report.Errors) != 0 {
		t.Errorf("Expected one card added and none removed, but got %+v", report)
	}

	// A line past the parser limit fails the file; its cards must survive.
	writeFile(t, notes, "a.md", "Q: one\nA: 1\n---\nQ: three\nA: "+strings.Repeat("y", 5*1024*1024)+"\n")
	report, err = Run(ctx, db, now, opts)
	if err != nil {
		t.Fatalf("Run() returned an unexpected error: %v", err)
	}
	if report.Removed != 0 || len(report.Errors) != 1 {
		t.Errorf("Expected one parse error and nothing removed, but got %+v", report)
	}

	cards, err = db.ListCards(ctx, deck.ID)
	if err != nil {
		t.Fatalf("ListCards() returned an unexpected error: %v", err)
	}
	if len(cards) != 2 {
		t.Errorf("Expected 2 cards to survive, but got %d", len(cards))
	}
	state, err := db.GetScheduleState(ctx, one.ID)
	if err != nil {
		t.Fatalf("GetScheduleState() returned an unexpected error: %v", err)
	}
	if state.Repetitions() != 3 {
		t.Errorf("Expected the schedule to be kept with 3 repetitions, but got %d", state.Repetitions())
	}
	history, err := db.ReviewHistory(ctx, one.ID)
	if err != nil {
		t.Fatalf("ReviewHistory() returned an unexpected error: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("Expected 3 history entries, but got %d", len(history))
	}
}
