// Package store persists flashcards in a CSV file. CSV is the exchange
// format the learner owns: the file can be edited by hand, carried between
// installations, or re-imported after an export.
package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"lingo-ai/internal/models"
)

// ErrNotFound is returned when no flashcard matches the requested word.
var ErrNotFound = errors.New("flashcard not found")

var header = []string{"word", "translatedWord", "pronunciation", "synonyms", "isLearned", "createdAt"}

// Store is a mutex-guarded CSV-backed flashcard repository. Reads load the
// whole file; updates rewrite it. Collections are small enough that this
// stays cheap and keeps the file consistent without extra bookkeeping.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open returns a store for path, creating the file with its header when it
// does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.writeAll(nil); err != nil {
			return nil, fmt.Errorf("create flashcards file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat flashcards file: %w", err)
	}
	return s, nil
}

// All returns every readable card. Rows that fail to parse are skipped so
// one damaged line never takes the whole collection down.
func (s *Store) All() ([]models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// FindByWord matches case-insensitively.
func (s *Store) FindByWord(word string) (*models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for i := range cards {
		if strings.EqualFold(cards[i].Word, word) {
			card := cards[i]
			return &card, nil
		}
	}
	return nil, ErrNotFound
}

// Add appends one card to the file.
func (s *Store) Add(card models.Flashcard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendAll([]models.Flashcard{card})
}

// Update applies the non-nil fields of upd to the card for word and returns
// the updated card.
func (s *Store) Update(word string, upd models.FlashcardUpdate) (*models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for i := range cards {
		if !strings.EqualFold(cards[i].Word, word) {
			continue
		}
		if upd.TranslatedWord != nil {
			cards[i].TranslatedWord = *upd.TranslatedWord
		}
		if upd.Pronunciation != nil {
			cards[i].Pronunciation = *upd.Pronunciation
		}
		if upd.Synonyms != nil {
			cards[i].Synonyms = *upd.Synonyms
		}
		if upd.IsLearned != nil {
			cards[i].IsLearned = *upd.IsLearned
		}
		if err := s.writeAll(cards); err != nil {
			return nil, err
		}
		card := cards[i]
		return &card, nil
	}
	return nil, ErrNotFound
}

// Delete removes the card for word.
func (s *Store) Delete(word string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards, err := s.readAll()
	if err != nil {
		return err
	}
	kept := make([]models.Flashcard, 0, len(cards))
	found := false
	for _, c := range cards {
		if strings.EqualFold(c.Word, word) {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return ErrNotFound
	}
	return s.writeAll(kept)
}

// Statistics computes collection counts and the creation-date range. Dates
// compare as ISO strings, so imported rows with odd but ordered timestamps
// still produce a sensible range.
func (s *Store) Statistics() (models.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards, err := s.readAll()
	if err != nil {
		return models.Statistics{}, err
	}

	stats := models.Statistics{TotalFlashcards: len(cards)}
	for _, c := range cards {
		if c.IsLearned {
			stats.LearnedFlashcards++
		}
	}
	stats.UnlearnedFlashcards = stats.TotalFlashcards - stats.LearnedFlashcards
	if stats.TotalFlashcards > 0 {
		ratio := float64(stats.LearnedFlashcards) / float64(stats.TotalFlashcards)
		stats.LearningProgressPercentage = math.Round(ratio*1000) / 10
	}

	for _, c := range cards {
		if c.CreatedAt == "" {
			continue
		}
		if stats.EarliestCreationDate == nil || c.CreatedAt < *stats.EarliestCreationDate {
			v := c.CreatedAt
			stats.EarliestCreationDate = &v
		}
		if stats.LatestCreationDate == nil || c.CreatedAt > *stats.LatestCreationDate {
			v := c.CreatedAt
			stats.LatestCreationDate = &v
		}
	}
	return stats, nil
}

// ExportJSON renders the whole collection as an indented JSON array.
func (s *Store) ExportJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards, err := s.readAll()
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []models.Flashcard{}
	}
	return json.MarshalIndent(cards, "", "  ")
}

// ImportCSV appends rows from an uploaded CSV document and returns how many
// were imported. The first four header columns are required; isLearned and
// createdAt are optional. Rows with an empty word are skipped rather than
// failing the whole import.
func (s *Store) ImportCSV(content string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	headerRow, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	idx := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		idx[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"word", "translatedWord", "pronunciation", "synonyms"} {
		if _, ok := idx[required]; !ok {
			return 0, fmt.Errorf("csv is missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var cards []models.Flashcard
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}
		word := strings.TrimSpace(field(row, "word"))
		if word == "" {
			continue
		}
		card := models.Flashcard{
			Word:           word,
			TranslatedWord: field(row, "translatedWord"),
			Pronunciation:  field(row, "pronunciation"),
			Synonyms:       splitSynonyms(field(row, "synonyms")),
			IsLearned:      field(row, "isLearned") == "true",
			CreatedAt:      field(row, "createdAt"),
		}
		if card.CreatedAt == "" {
			card.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		}
		cards = append(cards, card)
	}
	if len(cards) == 0 {
		return 0, nil
	}
	if err := s.appendAll(cards); err != nil {
		return 0, err
	}
	return len(cards), nil
}

func (s *Store) readAll() ([]models.Flashcard, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open flashcards file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	first := true
	var cards []models.Flashcard
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}
		if first {
			first = false
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "word") {
				continue
			}
		}
		card, ok := rowToCard(row)
		if !ok {
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (s *Store) writeAll(cards []models.Flashcard) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create flashcards file: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range cards {
		if err := w.Write(cardToRow(c)); err != nil {
			f.Close()
			return fmt.Errorf("write flashcard row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush flashcards file: %w", err)
	}
	return f.Close()
}

func (s *Store) appendAll(cards []models.Flashcard) error {
	_, statErr := os.Stat(s.path)
	newFile := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open flashcards file: %w", err)
	}
	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(header); err != nil {
			f.Close()
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	for _, c := range cards {
		if err := w.Write(cardToRow(c)); err != nil {
			f.Close()
			return fmt.Errorf("write flashcard row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush flashcards file: %w", err)
	}
	return f.Close()
}

func rowToCard(row []string) (models.Flashcard, bool) {
	if len(row) < 6 {
		return models.Flashcard{}, false
	}
	word := strings.TrimSpace(row[0])
	if word == "" {
		return models.Flashcard{}, false
	}
	return models.Flashcard{
		Word:           word,
		TranslatedWord: row[1],
		Pronunciation:  row[2],
		Synonyms:       splitSynonyms(row[3]),
		IsLearned:      row[4] == "true",
		CreatedAt:      row[5],
	}, true
}

func cardToRow(c models.Flashcard) []string {
	return []string{
		c.Word,
		c.TranslatedWord,
		c.Pronunciation,
		strings.Join(c.Synonyms, ";"),
		fmt.Sprintf("%t", c.IsLearned),
		c.CreatedAt,
	}
}

func splitSynonyms(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
