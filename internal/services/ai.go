package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"lingo-ai/internal/aiclient"
	"lingo-ai/internal/models"
	"lingo-ai/internal/prompts"
)

// ErrNoUsableResponse means the upstream answered but no extraction tier
// produced anything parseable. It is distinct from transport failures, which
// surface as *aiclient.Failure.
var ErrNoUsableResponse = errors.New("ai response contained no usable result")

// AIService runs the per-task pipelines against the completion client. Each
// task walks the same ladder: structured function payload where the prompt
// declares one, then free-text parsing, then (for flashcards and grammar)
// one simplified re-prompt. A structured success never re-prompts.
type AIService struct {
	client *aiclient.Client
}

func NewAIService(client *aiclient.Client) *AIService {
	return &AIService{client: client}
}

func request(spec prompts.Spec) aiclient.Request {
	return aiclient.Request{
		Messages:      spec.Messages,
		Functions:     spec.Functions,
		ForceFunction: spec.ForceFunction,
	}
}

type flashcardPayload struct {
	Word           string   `json:"word"`
	TranslatedWord string   `json:"translatedWord"`
	Pronunciation  string   `json:"pronunciation"`
	Synonyms       []string `json:"synonyms"`
}

// toCard applies the structured-payload defaults: a missing word falls back
// to the input word and the synonym list is capped at three entries.
func (p flashcardPayload) toCard(word string) models.Flashcard {
	card := models.Flashcard{
		Word:           p.Word,
		TranslatedWord: p.TranslatedWord,
		Pronunciation:  p.Pronunciation,
		Synonyms:       p.Synonyms,
	}
	if card.Word == "" {
		card.Word = word
	}
	if card.Synonyms == nil {
		card.Synonyms = []string{}
	}
	if len(card.Synonyms) > 3 {
		card.Synonyms = card.Synonyms[:3]
	}
	return card
}

type grammarPayload struct {
	CorrectedText string   `json:"correctedText"`
	Errors        []string `json:"errors"`
}

func (p grammarPayload) toResult(original string) models.GrammarResult {
	result := models.GrammarResult{CorrectedText: p.CorrectedText, Errors: p.Errors}
	if result.CorrectedText == "" {
		result.CorrectedText = original
	}
	if len(result.Errors) == 0 {
		result.Errors = []string{"No grammar errors found"}
	}
	return result
}

// GenerateFlashcard asks the model for a structured flashcard. When the
// model answers with neither a function payload nor parseable text, one
// stripped-down re-prompt gives plain-text-only models a second chance.
func (s *AIService) GenerateFlashcard(ctx context.Context, word, targetLanguage string) (*models.Flashcard, error) {
	resp, err := s.client.Complete(ctx, request(prompts.Flashcard(word, targetLanguage)))
	if err != nil {
		return nil, fmt.Errorf("generate flashcard for %q: %w", word, err)
	}

	var payload flashcardPayload
	if aiclient.FunctionArguments(resp, &payload) {
		card := payload.toCard(word)
		return &card, nil
	}

	if card, ok := flashcardFromText(resp, word); ok {
		log.Printf("flashcard for %q recovered from free text", word)
		return card, nil
	}

	log.Printf("flashcard for %q had no parseable reply, sending simplified prompt", word)
	resp, err = s.client.Complete(ctx, request(prompts.FlashcardSimplified(word, targetLanguage)))
	if err != nil {
		return nil, fmt.Errorf("generate flashcard for %q: %w", word, err)
	}
	if card, ok := flashcardFromText(resp, word); ok {
		return card, nil
	}
	return nil, fmt.Errorf("generate flashcard for %q: %w", word, ErrNoUsableResponse)
}

func flashcardFromText(resp *openai.ChatCompletionResponse, word string) (*models.Flashcard, bool) {
	text, ok := aiclient.TextContent(resp)
	if !ok {
		return nil, false
	}
	card, ok := parseFlashcardText(text, word)
	if !ok {
		return nil, false
	}
	return &card, true
}

// CheckGrammar runs the grammar pipeline over text.
func (s *AIService) CheckGrammar(ctx context.Context, text string) (*models.GrammarResult, error) {
	resp, err := s.client.Complete(ctx, request(prompts.GrammarCheck(text)))
	if err != nil {
		return nil, fmt.Errorf("check grammar: %w", err)
	}

	var payload grammarPayload
	if aiclient.FunctionArguments(resp, &payload) {
		result := payload.toResult(text)
		return &result, nil
	}

	if result, ok := grammarFromText(resp, text); ok {
		log.Printf("grammar check recovered from free text")
		return result, nil
	}

	log.Printf("grammar check had no parseable reply, sending simplified prompt")
	resp, err = s.client.Complete(ctx, request(prompts.GrammarCheckSimplified(text)))
	if err != nil {
		return nil, fmt.Errorf("check grammar: %w", err)
	}
	if result, ok := grammarFromText(resp, text); ok {
		return result, nil
	}
	return nil, fmt.Errorf("check grammar: %w", ErrNoUsableResponse)
}

func grammarFromText(resp *openai.ChatCompletionResponse, original string) (*models.GrammarResult, bool) {
	text, ok := aiclient.TextContent(resp)
	if !ok {
		return nil, false
	}
	result, ok := parseGrammarText(text, original)
	if !ok {
		return nil, false
	}
	return &result, true
}

// EnhanceText rewrites text according to task (rewrite, paraphrase or
// enhance) and returns the trimmed reply.
func (s *AIService) EnhanceText(ctx context.Context, text, task string) (string, error) {
	resp, err := s.client.Complete(ctx, request(prompts.TextEnhancement(text, task)))
	if err != nil {
		return "", fmt.Errorf("enhance text: %w", err)
	}
	out, _ := aiclient.TextContent(resp)
	if out = strings.TrimSpace(out); out == "" {
		return "", fmt.Errorf("enhance text: %w", ErrNoUsableResponse)
	}
	return out, nil
}

// HumanizeText rewrites AI-sounding text into a natural register.
func (s *AIService) HumanizeText(ctx context.Context, text string) (string, error) {
	resp, err := s.client.Complete(ctx, request(prompts.Humanization(text)))
	if err != nil {
		return "", fmt.Errorf("humanize text: %w", err)
	}
	out, _ := aiclient.TextContent(resp)
	if out = strings.TrimSpace(out); out == "" {
		return "", fmt.Errorf("humanize text: %w", ErrNoUsableResponse)
	}
	return out, nil
}

// CheckAIProbability scores how likely text is AI-generated, 0 to 100. A
// reply with text but no number scores the neutral 50; no text at all is an
// exhausted pipeline.
func (s *AIService) CheckAIProbability(ctx context.Context, text string) (int, error) {
	resp, err := s.client.Complete(ctx, request(prompts.AIDetection(text)))
	if err != nil {
		return 0, fmt.Errorf("check ai probability: %w", err)
	}
	out, _ := aiclient.TextContent(resp)
	if strings.TrimSpace(out) == "" {
		return 0, fmt.Errorf("check ai probability: %w", ErrNoUsableResponse)
	}
	return parseProbability(out), nil
}

// ChatWithAI answers the latest message of a tutoring conversation.
func (s *AIService) ChatWithAI(ctx context.Context, messages []models.ChatMessage) (string, error) {
	resp, err := s.client.Complete(ctx, request(prompts.LanguageChat(messages)))
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	reply, _ := aiclient.TextContent(resp)
	if reply = strings.TrimSpace(reply); reply == "" {
		return "", fmt.Errorf("chat: %w", ErrNoUsableResponse)
	}
	return reply, nil
}
