package services

import (
	"math"
	"strings"
	"unicode/utf8"

	"lingo-ai/internal/models"
)

// AnalyzeTextComplexity scores a text without calling the AI. Sentence
// boundaries are approximated by terminal punctuation counts; word lengths
// are measured in runes so Vietnamese diacritics count once.
func AnalyzeTextComplexity(text string) models.TextAnalysis {
	words := strings.Fields(text)
	wordCount := len(words)

	sentenceCount := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
	if sentenceCount == 0 {
		sentenceCount = 1
	}

	totalRunes := 0
	for _, w := range words {
		totalRunes += utf8.RuneCountInString(strings.Trim(w, ".,!?;:"))
	}
	avgWordLen := 0.0
	if wordCount > 0 {
		avgWordLen = float64(totalRunes) / float64(wordCount)
	}
	avgSentenceLen := float64(wordCount) / float64(sentenceCount)

	level, score := "Advanced", 3
	switch {
	case avgWordLen < 4 && avgSentenceLen < 10:
		level, score = "Beginner", 1
	case avgWordLen < 6 && avgSentenceLen < 15:
		level, score = "Intermediate", 2
	}

	return models.TextAnalysis{
		WordCount:             wordCount,
		SentenceCount:         sentenceCount,
		AverageWordLength:     round1(avgWordLen),
		AverageSentenceLength: round1(avgSentenceLen),
		ComplexityLevel:       level,
		DifficultyScore:       score,
		ReadingTimeMinutes:    round1(float64(wordCount) / 200.0),
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
