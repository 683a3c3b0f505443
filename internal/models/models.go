package models

// Flashcard is one vocabulary card a learner owns. CreatedAt is stored as an
// ISO-8601 string so that rows imported from older exports survive untouched.
type Flashcard struct {
	Word           string   `json:"word"`
	TranslatedWord string   `json:"translatedWord"`
	Pronunciation  string   `json:"pronunciation"`
	Synonyms       []string `json:"synonyms"`
	IsLearned      bool     `json:"isLearned"`
	CreatedAt      string   `json:"createdAt"`
}

// FlashcardUpdate carries a partial update. Nil fields are left untouched.
type FlashcardUpdate struct {
	TranslatedWord *string   `json:"translatedWord"`
	Pronunciation  *string   `json:"pronunciation"`
	Synonyms       *[]string `json:"synonyms"`
	IsLearned      *bool     `json:"isLearned"`
}

// GrammarResult is the outcome of a grammar check.
type GrammarResult struct {
	CorrectedText string   `json:"correctedText"`
	Errors        []string `json:"errors"`
}

// ChatMessage is one turn of a tutoring conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TextAnalysis describes the complexity of a piece of text.
type TextAnalysis struct {
	WordCount             int     `json:"word_count"`
	SentenceCount         int     `json:"sentence_count"`
	AverageWordLength     float64 `json:"average_word_length"`
	AverageSentenceLength float64 `json:"average_sentence_length"`
	ComplexityLevel       string  `json:"complexity_level"`
	DifficultyScore       int     `json:"difficulty_score"`
	ReadingTimeMinutes    float64 `json:"reading_time_minutes"`
}

// Statistics summarizes the learner's flashcard collection. The store fills
// the counts and date range; the flashcard service adds the per-day averages
// and the recommendation.
type Statistics struct {
	TotalFlashcards            int     `json:"total_flashcards"`
	LearnedFlashcards          int     `json:"learned_flashcards"`
	UnlearnedFlashcards        int     `json:"unlearned_flashcards"`
	LearningProgressPercentage float64 `json:"learning_progress_percentage"`
	EarliestCreationDate       *string `json:"earliest_creation_date"`
	LatestCreationDate         *string `json:"latest_creation_date"`
	AverageFlashcardsPerDay    float64 `json:"average_flashcards_per_day"`
	AverageLearnedPerDay       float64 `json:"average_learned_per_day"`
	LearningRecommendation     string  `json:"learning_recommendation"`
}
