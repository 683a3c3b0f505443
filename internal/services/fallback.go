package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"lingo-ai/internal/models"
)

// Free-text recovery for replies where the model ignored the function
// schema. Parsing is best effort by design: it never returns an error, and
// only blank input yields no result.

var translationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btranslation\s*[:\-]\s*([^\n]+)`),
	regexp.MustCompile(`(?i)\btranslated(?:\s+word)?\s*[:\-]\s*([^\n]+)`),
	regexp.MustCompile(`(?i)\bmeans\s*[:\-]\s*([^\n]+)`),
	regexp.MustCompile(`(?i)\bmeaning\s*[:\-]\s*([^\n]+)`),
	regexp.MustCompile(`(?i)\bdefinition\s*[:\-]\s*([^\n]+)`),
}

var pronunciationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bpronunciation\s*[:\-]\s*([^\n]+)`),
	regexp.MustCompile(`(?i)\bpronounced\s*[:\-]\s*([^\n]+)`),
}

var (
	ipaSlashPattern   = regexp.MustCompile(`/[^/\n]+/`)
	ipaBracketPattern = regexp.MustCompile(`\[[^\]\n]+\]`)
)

var synonymPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bsynonyms?\s*[:\-]\s*([^\n]+)`),
	regexp.MustCompile(`(?i)\bsimilar(?:\s+words?)?\s*[:\-]\s*([^\n]+)`),
	regexp.MustCompile(`(?i)\brelated\s+words?\s*[:\-]\s*([^\n]+)`),
}

// Correction captures stop before an errors label that shares the line.
var correctionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcorrected(?:\s+(?:text|version|sentence))?\s*[:\-]\s*([^\n]+?)\s*(?:\berrors?\s*[:\-][^\n]*)?(?:\n|$)`),
	regexp.MustCompile(`(?i)\bcorrection\s*[:\-]\s*([^\n]+?)\s*(?:\berrors?\s*[:\-][^\n]*)?(?:\n|$)`),
	regexp.MustCompile(`(?i)\bfixed(?:\s+text)?\s*[:\-]\s*([^\n]+?)\s*(?:\berrors?\s*[:\-][^\n]*)?(?:\n|$)`),
}

var errorListPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:grammar\s+)?errors?(?:\s+found)?\s*[:\-]\s*([^\n]+)`),
	regexp.MustCompile(`(?i)\bmistakes?\s*[:\-]\s*([^\n]+)`),
	regexp.MustCompile(`(?i)\bissues?\s*[:\-]\s*([^\n]+)`),
}

var (
	sentencePattern       = regexp.MustCompile(`[A-Z][^.!?\n]*[.!?]`)
	errorIndicatorPattern = regexp.MustCompile(`(?i)\b(?:errors?|mistakes?|issues?|incorrect|wrong|grammar|fix|fixed|corrections?|corrected)\b`)
	listSeparatorPattern  = regexp.MustCompile(`[,;]`)
	integerPattern        = regexp.MustCompile(`-?\d+`)
)

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return trimLabelValue(m[1])
		}
	}
	return ""
}

func trimLabelValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`“”‘’")
	return strings.TrimSpace(s)
}

func splitListItems(raw string) []string {
	var items []string
	for _, part := range listSeparatorPattern.Split(raw, -1) {
		part = trimLabelValue(part)
		if lower := strings.ToLower(part); strings.HasPrefix(lower, "and ") {
			part = strings.TrimSpace(part[4:])
		}
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

// parseFlashcardText recovers flashcard fields from a free-text reply.
// Missing pieces get the documented fallback values so a degraded reply
// still becomes a usable card. Only blank input yields no result.
func parseFlashcardText(raw, word string) (models.Flashcard, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return models.Flashcard{}, false
	}

	translation := firstMatch(translationPatterns, text)
	if translation == "" {
		// No label anywhere: take the first short line that is not just the
		// model echoing the word back.
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || utf8.RuneCountInString(line) >= 50 {
				continue
			}
			if strings.HasPrefix(strings.ToLower(line), strings.ToLower(word)) {
				continue
			}
			translation = trimLabelValue(line)
			break
		}
	}
	if translation == "" {
		translation = "Translation not available"
	}

	pronunciation := firstMatch(pronunciationPatterns, text)
	if pronunciation == "" {
		pronunciation = ipaSlashPattern.FindString(text)
	}
	if pronunciation == "" {
		pronunciation = ipaBracketPattern.FindString(text)
	}
	if pronunciation == "" {
		pronunciation = "/" + word + "/"
	}

	var synonyms []string
	if list := firstMatch(synonymPatterns, text); list != "" {
		for _, item := range splitListItems(list) {
			if utf8.RuneCountInString(item) > 1 {
				synonyms = append(synonyms, item)
			}
			if len(synonyms) == 3 {
				break
			}
		}
	}
	if len(synonyms) == 0 {
		synonyms = []string{"similar1", "similar2", "similar3"}
	}

	return models.Flashcard{
		Word:           word,
		TranslatedWord: translation,
		Pronunciation:  pronunciation,
		Synonyms:       synonyms,
	}, true
}

// parseGrammarText recovers a grammar result from a free-text reply. The
// correction defaults to the original input; the error list defaults to the
// no-errors sentinel when the correction matches the input, and to a
// generic corrections-applied note otherwise.
func parseGrammarText(raw, original string) (models.GrammarResult, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return models.GrammarResult{}, false
	}

	corrected := firstMatch(correctionPatterns, text)
	if corrected == "" {
		for _, sentence := range sentencePattern.FindAllString(text, -1) {
			if errorIndicatorPattern.MatchString(sentence) {
				continue
			}
			corrected = trimLabelValue(sentence)
			break
		}
	}
	if corrected == "" {
		corrected = original
	}

	var errs []string
	if list := firstMatch(errorListPatterns, text); list != "" {
		for _, item := range splitListItems(list) {
			if utf8.RuneCountInString(item) > 3 {
				errs = append(errs, item)
			}
		}
	}
	if len(errs) == 0 {
		if strings.EqualFold(strings.TrimSpace(corrected), strings.TrimSpace(original)) {
			errs = []string{"No grammar errors found"}
		} else {
			errs = []string{"Grammar corrections applied"}
		}
	}

	return models.GrammarResult{CorrectedText: corrected, Errors: errs}, true
}

// parseProbability finds the first integer in a reply and clamps it to
// [0,100]. Replies without any integer score the neutral 50.
func parseProbability(raw string) int {
	m := integerPattern.FindString(raw)
	if m == "" {
		return 50
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 50
	}
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
