package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lingo-ai/internal/models"
	"lingo-ai/internal/store"
)

// ErrWordExists is returned when creating a card for a word that already
// has one.
var ErrWordExists = errors.New("flashcard already exists")

// FlashcardService owns the flashcard lifecycle: AI generation on create,
// persistence, and learning statistics.
type FlashcardService struct {
	store *store.Store
	ai    *AIService
}

func NewFlashcardService(st *store.Store, ai *AIService) *FlashcardService {
	return &FlashcardService{store: st, ai: ai}
}

// Create generates a card for word through the AI pipeline and persists it.
// Duplicate words are rejected before any AI call is made.
func (s *FlashcardService) Create(ctx context.Context, word, targetLanguage string) (*models.Flashcard, error) {
	if _, err := s.store.FindByWord(word); err == nil {
		return nil, fmt.Errorf("flashcard for %q: %w", word, ErrWordExists)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	card, err := s.ai.GenerateFlashcard(ctx, word, targetLanguage)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(card.TranslatedWord) == "" {
		return nil, fmt.Errorf("flashcard for %q has no translation: %w", word, ErrNoUsableResponse)
	}

	card.IsLearned = false
	card.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.store.Add(*card); err != nil {
		return nil, err
	}
	return card, nil
}

// All returns the whole collection, never nil.
func (s *FlashcardService) All() ([]models.Flashcard, error) {
	cards, err := s.store.All()
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []models.Flashcard{}
	}
	return cards, nil
}

// Unlearned returns the cards still being studied.
func (s *FlashcardService) Unlearned() ([]models.Flashcard, error) {
	return s.filtered(false)
}

// Learned returns the cards marked as learned.
func (s *FlashcardService) Learned() ([]models.Flashcard, error) {
	return s.filtered(true)
}

func (s *FlashcardService) filtered(learned bool) ([]models.Flashcard, error) {
	cards, err := s.store.All()
	if err != nil {
		return nil, err
	}
	out := make([]models.Flashcard, 0, len(cards))
	for _, c := range cards {
		if c.IsLearned == learned {
			out = append(out, c)
		}
	}
	return out, nil
}

// Find returns the card for word, matching case-insensitively.
func (s *FlashcardService) Find(word string) (*models.Flashcard, error) {
	return s.store.FindByWord(word)
}

// Update applies a partial update to the card for word.
func (s *FlashcardService) Update(word string, upd models.FlashcardUpdate) (*models.Flashcard, error) {
	return s.store.Update(word, upd)
}

// Delete removes the card for word.
func (s *FlashcardService) Delete(word string) error {
	return s.store.Delete(word)
}

// MarkLearned flips the learned flag for word.
func (s *FlashcardService) MarkLearned(word string, learned bool) (*models.Flashcard, error) {
	return s.store.Update(word, models.FlashcardUpdate{IsLearned: &learned})
}

// ExportJSON renders the collection for download.
func (s *FlashcardService) ExportJSON() ([]byte, error) {
	return s.store.ExportJSON()
}

// ImportCSV loads cards from uploaded CSV content.
func (s *FlashcardService) ImportCSV(content string) (int, error) {
	return s.store.ImportCSV(content)
}

// LearningStatistics augments the raw store counts with pacing averages and
// a study recommendation.
func (s *FlashcardService) LearningStatistics() (models.Statistics, error) {
	stats, err := s.store.Statistics()
	if err != nil {
		return models.Statistics{}, err
	}

	if stats.TotalFlashcards == 0 {
		stats.LearningRecommendation = "Start by creating your first flashcard!"
		return stats, nil
	}

	if stats.EarliestCreationDate != nil && stats.LatestCreationDate != nil {
		if days, ok := daySpan(*stats.EarliestCreationDate, *stats.LatestCreationDate); ok {
			stats.AverageFlashcardsPerDay = round1(float64(stats.TotalFlashcards) / float64(days))
			stats.AverageLearnedPerDay = round1(float64(stats.LearnedFlashcards) / float64(days))
		}
	}

	switch progress := stats.LearningProgressPercentage; {
	case progress < 25:
		stats.LearningRecommendation = "Keep practicing! Focus on reviewing your flashcards regularly."
	case progress < 50:
		stats.LearningRecommendation = "Good progress! Try to review learned cards periodically to maintain retention."
	case progress < 75:
		stats.LearningRecommendation = "Great work! You're making excellent progress. Keep it up!"
	default:
		stats.LearningRecommendation = "Outstanding! Consider adding more challenging vocabulary to continue growing."
	}
	return stats, nil
}

// daySpan counts the inclusive number of days between two ISO timestamps.
// Unparseable timestamps report ok=false and leave the averages at zero.
func daySpan(earliest, latest string) (int, bool) {
	start, err1 := parseISOTime(earliest)
	end, err2 := parseISOTime(latest)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return days, true
}

func parseISOTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
