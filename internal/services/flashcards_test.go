package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"lingo-ai/internal/models"
	"lingo-ai/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "flashcards.csv"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	return st
}

func seedCard(t *testing.T, st *store.Store, word string, learned bool, createdAt string) {
	t.Helper()
	err := st.Add(models.Flashcard{
		Word:           word,
		TranslatedWord: word + "-vi",
		Pronunciation:  "/" + word + "/",
		Synonyms:       []string{},
		IsLearned:      learned,
		CreatedAt:      createdAt,
	})
	if err != nil {
		t.Fatalf("store.Add(%q): %v", word, err)
	}
}

func TestCreateFlashcard(t *testing.T) {
	ai, stub := newScriptedService(t, functionReply("create_flashcard",
		`{"word":"hello","translatedWord":"xin chào","pronunciation":"/həˈloʊ/","synonyms":["hi","hey"]}`))
	st := newTestStore(t)
	svc := NewFlashcardService(st, ai)

	card, err := svc.Create(context.Background(), "hello", "vietnamese")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if card.IsLearned {
		t.Error("Expected a new flashcard to start unlearned")
	}
	if _, err := time.Parse(time.RFC3339, card.CreatedAt); err != nil {
		t.Errorf("Expected RFC3339 createdAt, got %q", card.CreatedAt)
	}
	if stub.count() != 1 {
		t.Errorf("Expected 1 upstream request, got %d", stub.count())
	}

	stored, err := st.FindByWord("HELLO")
	if err != nil {
		t.Fatalf("FindByWord after create: %v", err)
	}
	if stored.TranslatedWord != "xin chào" {
		t.Errorf("Expected persisted translation 'xin chào', got %q", stored.TranslatedWord)
	}
}

func TestCreateFlashcardDuplicate(t *testing.T) {
	ai, stub := newScriptedService(t)
	st := newTestStore(t)
	seedCard(t, st, "hello", false, "2026-08-01T00:00:00Z")
	svc := NewFlashcardService(st, ai)

	_, err := svc.Create(context.Background(), "Hello", "vietnamese")
	if !errors.Is(err, ErrWordExists) {
		t.Fatalf("Expected ErrWordExists, got %v", err)
	}
	if stub.count() != 0 {
		t.Errorf("Expected no upstream requests for a duplicate word, got %d", stub.count())
	}
}

func TestCreateFlashcardWithoutTranslation(t *testing.T) {
	ai, _ := newScriptedService(t, functionReply("create_flashcard", `{"word":"hello"}`))
	st := newTestStore(t)
	svc := NewFlashcardService(st, ai)

	_, err := svc.Create(context.Background(), "hello", "vietnamese")
	if !errors.Is(err, ErrNoUsableResponse) {
		t.Fatalf("Expected ErrNoUsableResponse, got %v", err)
	}

	cards, err := st.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("Expected nothing persisted, got %d cards", len(cards))
	}
}

func TestAllNeverNil(t *testing.T) {
	svc := NewFlashcardService(newTestStore(t), nil)

	cards, err := svc.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if cards == nil {
		t.Fatal("Expected an empty slice, got nil")
	}
	if len(cards) != 0 {
		t.Fatalf("Expected no cards, got %d", len(cards))
	}
}

func TestLearnedFilters(t *testing.T) {
	st := newTestStore(t)
	seedCard(t, st, "hello", false, "2026-08-01T00:00:00Z")
	seedCard(t, st, "cat", true, "2026-08-01T00:00:00Z")
	seedCard(t, st, "house", false, "2026-08-02T00:00:00Z")
	svc := NewFlashcardService(st, nil)

	unlearned, err := svc.Unlearned()
	if err != nil {
		t.Fatalf("Unlearned: %v", err)
	}
	if len(unlearned) != 2 {
		t.Fatalf("Expected 2 unlearned cards, got %d", len(unlearned))
	}

	learned, err := svc.Learned()
	if err != nil {
		t.Fatalf("Learned: %v", err)
	}
	if len(learned) != 1 {
		t.Fatalf("Expected 1 learned card, got %d", len(learned))
	}
	if learned[0].Word != "cat" {
		t.Errorf("Expected learned card 'cat', got %q", learned[0].Word)
	}
}

func TestMarkLearned(t *testing.T) {
	st := newTestStore(t)
	seedCard(t, st, "hello", false, "2026-08-01T00:00:00Z")
	svc := NewFlashcardService(st, nil)

	card, err := svc.MarkLearned("hello", true)
	if err != nil {
		t.Fatalf("MarkLearned: %v", err)
	}
	if !card.IsLearned {
		t.Error("Expected card to be marked learned")
	}

	card, err = svc.MarkLearned("hello", false)
	if err != nil {
		t.Fatalf("MarkLearned back: %v", err)
	}
	if card.IsLearned {
		t.Error("Expected card to be marked unlearned again")
	}

	if _, err := svc.MarkLearned("ghost", true); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unknown word, got %v", err)
	}
}

func TestLearningStatistics(t *testing.T) {
	t.Run("NoCards", func(t *testing.T) {
		svc := NewFlashcardService(newTestStore(t), nil)

		stats, err := svc.LearningStatistics()
		if err != nil {
			t.Fatalf("LearningStatistics: %v", err)
		}
		if stats.TotalFlashcards != 0 {
			t.Errorf("Expected 0 total cards, got %d", stats.TotalFlashcards)
		}
		if stats.LearningRecommendation != "Start by creating your first flashcard!" {
			t.Errorf("Unexpected recommendation %q", stats.LearningRecommendation)
		}
	})

	t.Run("ProgressBands", func(t *testing.T) {
		bands := []struct {
			learned int
			want    string
		}{
			{0, "Keep practicing! Focus on reviewing your flashcards regularly."},
			{1, "Good progress! Try to review learned cards periodically to maintain retention."},
			{2, "Great work! You're making excellent progress. Keep it up!"},
			{3, "Outstanding! Consider adding more challenging vocabulary to continue growing."},
		}
		words := []string{"one", "two", "three", "four"}
		for _, tt := range bands {
			t.Run(fmt.Sprintf("%dOf4Learned", tt.learned), func(t *testing.T) {
				st := newTestStore(t)
				for i, w := range words {
					seedCard(t, st, w, i < tt.learned, "2026-08-01T00:00:00Z")
				}
				svc := NewFlashcardService(st, nil)

				stats, err := svc.LearningStatistics()
				if err != nil {
					t.Fatalf("LearningStatistics: %v", err)
				}
				if stats.LearningRecommendation != tt.want {
					t.Errorf("Expected recommendation %q, got %q", tt.want, stats.LearningRecommendation)
				}
			})
		}
	})

	t.Run("PacingAverages", func(t *testing.T) {
		st := newTestStore(t)
		seedCard(t, st, "one", true, "2026-08-01T00:00:00Z")
		seedCard(t, st, "two", false, "2026-08-01T08:00:00Z")
		seedCard(t, st, "three", false, "2026-08-02T00:00:00Z")
		seedCard(t, st, "four", false, "2026-08-02T12:00:00Z")
		svc := NewFlashcardService(st, nil)

		stats, err := svc.LearningStatistics()
		if err != nil {
			t.Fatalf("LearningStatistics: %v", err)
		}
		if stats.LearningProgressPercentage != 25.0 {
			t.Errorf("Expected 25.0%% progress, got %v", stats.LearningProgressPercentage)
		}
		if stats.EarliestCreationDate == nil || *stats.EarliestCreationDate != "2026-08-01T00:00:00Z" {
			t.Errorf("Unexpected earliest date %v", stats.EarliestCreationDate)
		}
		if stats.LatestCreationDate == nil || *stats.LatestCreationDate != "2026-08-02T12:00:00Z" {
			t.Errorf("Unexpected latest date %v", stats.LatestCreationDate)
		}
		// 36 hours between the ends of the range count as two days.
		if stats.AverageFlashcardsPerDay != 2.0 {
			t.Errorf("Expected 2.0 cards per day, got %v", stats.AverageFlashcardsPerDay)
		}
		if stats.AverageLearnedPerDay != 0.5 {
			t.Errorf("Expected 0.5 learned per day, got %v", stats.AverageLearnedPerDay)
		}
	})

	t.Run("UnparseableDatesSkipPacing", func(t *testing.T) {
		st := newTestStore(t)
		seedCard(t, st, "one", false, "yesterday")
		seedCard(t, st, "two", false, "today")
		svc := NewFlashcardService(st, nil)

		stats, err := svc.LearningStatistics()
		if err != nil {
			t.Fatalf("LearningStatistics: %v", err)
		}
		if stats.AverageFlashcardsPerDay != 0 || stats.AverageLearnedPerDay != 0 {
			t.Errorf("Expected zero pacing averages, got %v and %v",
				stats.AverageFlashcardsPerDay, stats.AverageLearnedPerDay)
		}
		if stats.LearningRecommendation == "" {
			t.Error("Expected a recommendation even without pacing data")
		}
	})
}
