package api

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"lingo-ai/internal/models"
)

// ValidationError reports rejected request input. Handlers map it to
// HTTP 400 with the message as the response body.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalidInput(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// suspiciousPatterns flag injection attempts in free-form text fields.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script[^>]*>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:text/html`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)exec\s*\(`),
}

// wordPattern accepts English and Vietnamese letters plus spaces,
// hyphens and apostrophes.
var wordPattern = regexp.MustCompile(`^[a-zA-ZàáảãạăắằẳẵặâấầẩẫậèéẻẽẹêếềểễệìíỉĩịòóỏõọôốồổỗộơớờởỡợùúủũụưứừửữựỳýỷỹỵđĐ\s\-']+$`)

func containsSuspiciousContent(text string) bool {
	for _, p := range suspiciousPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// validateText trims the value and enforces length bounds and a content
// safety check. Lengths are measured in runes so multi-byte Vietnamese
// text is not penalized.
func validateText(text string, minLen, maxLen int, field string) (string, error) {
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	if n < minLen {
		return "", invalidInput(field, "%s must be at least %d characters long", field, minLen)
	}
	if n > maxLen {
		return "", invalidInput(field, "%s must be no more than %d characters long", field, maxLen)
	}
	if containsSuspiciousContent(text) {
		return "", invalidInput(field, "%s contains potentially unsafe content", field)
	}
	return text, nil
}

func validateWord(word string) (string, error) {
	word, err := validateText(word, 1, 100, "word")
	if err != nil {
		return "", err
	}
	if !wordPattern.MatchString(word) {
		return "", invalidInput("word", "Word contains invalid characters. Only letters, spaces, hyphens, and apostrophes are allowed.")
	}
	return word, nil
}

var allowedLanguages = []string{"en", "english", "vi", "vietnamese", "auto"}

func validateLanguage(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "auto", nil
	}
	for _, allowed := range allowedLanguages {
		if code == allowed {
			return code, nil
		}
	}
	return "", invalidInput("target_language",
		"Language code '%s' is not supported. Allowed values: %s",
		code, strings.Join(allowedLanguages, ", "))
}

var allowedTasks = []string{"rewrite", "paraphrase", "enhance"}

func validateTask(task string) (string, error) {
	task = strings.ToLower(strings.TrimSpace(task))
	for _, allowed := range allowedTasks {
		if task == allowed {
			return task, nil
		}
	}
	return "", invalidInput("task",
		"Task '%s' is not supported. Allowed values: %s",
		task, strings.Join(allowedTasks, ", "))
}

var allowedRoles = []string{"user", "assistant", "system"}

// validateChatMessages checks the conversation history before it is
// handed to the AI client. Role and content are required on every entry.
func validateChatMessages(messages []models.ChatMessage) ([]models.ChatMessage, error) {
	if len(messages) == 0 {
		return nil, invalidInput("messages", "Messages list cannot be empty")
	}
	if len(messages) > 50 {
		return nil, invalidInput("messages", "Too many messages in conversation (max 50)")
	}

	validated := make([]models.ChatMessage, 0, len(messages))
	for i, msg := range messages {
		roleOK := false
		for _, allowed := range allowedRoles {
			if msg.Role == allowed {
				roleOK = true
				break
			}
		}
		if !roleOK {
			return nil, invalidInput(fmt.Sprintf("messages[%d].role", i),
				"Invalid role '%s' at message %d. Allowed roles: %s",
				msg.Role, i, strings.Join(allowedRoles, ", "))
		}
		content, err := validateText(msg.Content, 1, 2000, fmt.Sprintf("messages[%d].content", i))
		if err != nil {
			return nil, err
		}
		validated = append(validated, models.ChatMessage{Role: msg.Role, Content: content})
	}
	return validated, nil
}
