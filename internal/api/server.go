package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"lingo-ai/internal/models"
	"lingo-ai/internal/services"
	"lingo-ai/internal/store"
)

type Server struct {
	router           *chi.Mux
	flashcards       *services.FlashcardService
	ai               *services.AIService
	apiKeyConfigured bool
}

func NewServer(flashcards *services.FlashcardService, ai *services.AIService, corsOrigins []string, apiKeyConfigured bool) *Server {
	s := &Server{
		router:           chi.NewRouter(),
		flashcards:       flashcards,
		ai:               ai,
		apiKeyConfigured: apiKeyConfigured,
	}
	s.routes(corsOrigins)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(corsOrigins []string) {
	s.router.Use(requestLogger)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/flashcards", func(r chi.Router) {
		r.Post("/", s.handleCreateFlashcard)
		r.Get("/", s.handleListFlashcards)
		r.Get("/unlearned", s.handleListUnlearned)
		r.Get("/learned", s.handleListLearned)
		r.Get("/statistics", s.handleStatistics)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Put("/{word}/learned", s.handleMarkLearned)
		r.Put("/{word}", s.handleUpdateFlashcard)
		r.Delete("/{word}", s.handleDeleteFlashcard)
	})

	s.router.Post("/grammar-check", s.handleGrammarCheck)
	s.router.Post("/enhance-text", s.handleEnhanceText)
	s.router.Post("/humanize-text", s.handleHumanizeText)
	s.router.Post("/ai-probability", s.handleAIProbability)
	s.router.Post("/chat", s.handleChat)
	s.router.Post("/analyze-text", s.handleAnalyzeText)
}

// requestLogger tags every request with an ID (generated unless the
// client supplied X-Request-ID) and logs method, path and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s (%s)", r.Method, r.URL.Path, id, time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"apiKeyConfigured": s.apiKeyConfigured,
	})
}

func (s *Server) handleCreateFlashcard(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Word           string `json:"word"`
		TargetLanguage string `json:"targetLanguage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	word, err := validateWord(payload.Word)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	lang, err := validateLanguage(payload.TargetLanguage)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	card, err := s.flashcards.Create(r.Context(), word, lang)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleListFlashcards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.flashcards.All()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleListUnlearned(w http.ResponseWriter, r *http.Request) {
	cards, err := s.flashcards.Unlearned()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleListLearned(w http.ResponseWriter, r *http.Request) {
	cards, err := s.flashcards.Learned()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.flashcards.LearningStatistics()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.flashcards.ExportJSON()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CSVContent string `json:"csvContent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	content, err := validateText(payload.CSVContent, 10, 1000000, "csvContent")
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	imported, err := s.flashcards.ImportCSV(content)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": imported})
}

func (s *Server) handleMarkLearned(w http.ResponseWriter, r *http.Request) {
	word, err := validateWord(chi.URLParam(r, "word"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	// Absent body means "mark as learned".
	var payload struct {
		IsLearned *bool `json:"isLearned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	learned := true
	if payload.IsLearned != nil {
		learned = *payload.IsLearned
	}

	card, err := s.flashcards.MarkLearned(word, learned)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleUpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	word, err := validateWord(chi.URLParam(r, "word"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var payload models.FlashcardUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if payload.TranslatedWord != nil {
		translated, err := validateText(*payload.TranslatedWord, 1, 200, "translatedWord")
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		payload.TranslatedWord = &translated
	}

	card, err := s.flashcards.Update(word, payload)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	word, err := validateWord(chi.URLParam(r, "word"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := s.flashcards.Delete(word); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Flashcard '" + word + "' deleted successfully",
	})
}

func (s *Server) handleGrammarCheck(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeTextPayload(w, r)
	if !ok {
		return
	}

	result, err := s.ai.CheckGrammar(r.Context(), text)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEnhanceText(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
		Task string `json:"task"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	text, err := validateText(payload.Text, 1, 5000, "text")
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	task, err := validateTask(payload.Task)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	enhanced, err := s.ai.EnhanceText(r.Context(), text, task)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"enhancedText": enhanced})
}

func (s *Server) handleHumanizeText(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeTextPayload(w, r)
	if !ok {
		return
	}

	humanized, err := s.ai.HumanizeText(r.Context(), text)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"humanizedText": humanized})
}

func (s *Server) handleAIProbability(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeTextPayload(w, r)
	if !ok {
		return
	}

	probability, err := s.ai.CheckAIProbability(r.Context(), text)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"probability": probability})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	messages, err := validateChatMessages(payload.Messages)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	reply, err := s.ai.ChatWithAI(r.Context(), messages)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeTextPayload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, services.AnalyzeTextComplexity(text))
}

// decodeTextPayload reads the common {"text": ...} request body and
// validates it. A false return means the response has been written.
func (s *Server) decodeTextPayload(w http.ResponseWriter, r *http.Request) (string, bool) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return "", false
	}

	text, err := validateText(payload.Text, 1, 5000, "text")
	if err != nil {
		s.writeServiceError(w, err)
		return "", false
	}
	return text, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrWordExists):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
