package domain

// Choice is one selectable answer for a question.
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question models an MCQ question; CorrectAnswer references one of Choices.
type Question struct {
	ID            string   `json:"id"`
	QuestionText  string   `json:"questionText"`
	Choices       []Choice `json:"choices"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// VocabularyItem is a reading aid attached to a passage.
type VocabularyItem struct {
	Kanji   string `json:"kanji,omitempty"`
	Kana    string `json:"kana,omitempty"`
	Reading string `json:"reading,omitempty"`
	Meaning string `json:"meaning,omitempty"`
}

// Passage is a reading text plus its ordered question set.
type Passage struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Category      string           `json:"category"`
	Difficulty    int              `json:"difficulty"` // 1..5
	EstimatedTime int              `json:"estimatedTime"`
	Text          string           `json:"passage"`
	Vocabulary    []VocabularyItem `json:"vocabulary,omitempty"`
	Questions     []Question       `json:"questions"`
}

// Submission maps a question ID to the selected choice ID.
// A missing key means the question was left unanswered.
type Submission map[string]string

// QuestionResult is the per-question grading detail within a ScoreResult.
type QuestionResult struct {
	QuestionID    string  `json:"questionId"`
	Selected      *string `json:"selected"` // nil when unanswered
	CorrectAnswer string  `json:"correctAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
}

// ScoreResult summarizes one graded attempt.
// Breakdown preserves question order and CorrectCount equals the number of
// entries with IsCorrect set.
type ScoreResult struct {
	CorrectCount   int              `json:"correctCount"`
	TotalQuestions int              `json:"totalQuestions"`
	Breakdown      []QuestionResult `json:"breakdown"`
}

// SessionRecord is one immutable ledger entry for a completed attempt.
type SessionRecord struct {
	ID               string `json:"id"`
	PassageID        string `json:"passageId"`
	Category         string `json:"category,omitempty"`
	TotalQuestions   int    `json:"totalQuestions"`
	CorrectAnswers   int    `json:"correctAnswers"`
	TimeSpentMinutes int    `json:"timeSpentMinutes"`
	Date             string `json:"date"` // YYYY-MM-DD
}

// Ledger is the durable aggregate progress record.
// Running sums mirror the session log; StreakDays counts consecutive
// calendar days with at least one recorded session.
type Ledger struct {
	Sessions         []SessionRecord `json:"sessions"`
	TotalQuestions   int             `json:"totalQuestions"`
	TotalCorrect     int             `json:"totalCorrect"`
	TotalTimeMinutes int             `json:"totalTimeMinutes"`
	LastStudyDate    string          `json:"lastStudyDate,omitempty"`
	StreakDays       int             `json:"streakDays"`
}

// CategoryStat aggregates attempts within one passage category.
type CategoryStat struct {
	Attempts int `json:"attempts"`
	Correct  int `json:"correct"`
}

// HistoryEntry is a chronological view of one recorded session.
type HistoryEntry struct {
	PassageID string `json:"passageId"`
	Timestamp string `json:"timestamp"`
	Total     int    `json:"total"`
	Correct   int    `json:"correct"`
}

// Stats is the read-side view derived from the ledger.
type Stats struct {
	CompletedCount   int                     `json:"completedCount"`
	Accuracy         int                     `json:"accuracy"` // percentage, rounded
	TotalTimeMinutes int                     `json:"totalTimeMinutes"`
	StreakDays       int                     `json:"streakDays"`
	TotalAttempts    int                     `json:"totalAttempts"`
	CorrectAnswers   int                     `json:"correctAnswers"`
	ByCategory       map[string]CategoryStat `json:"byCategory"`
	History          []HistoryEntry          `json:"history"`
}

// PassageSummary is the metadata index entry for a passage.
type PassageSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	Difficulty    int    `json:"difficulty"`
	EstimatedTime int    `json:"estimatedTime"`
	FilePath      string `json:"filePath,omitempty"`
}

// CategoryCount reports how many passages exist per category.
type CategoryCount struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Count int    `json:"count"`
}

// ContentIndex is the catalog of available passages and categories.
type ContentIndex struct {
	Passages   []PassageSummary `json:"passages"`
	Categories []CategoryCount  `json:"categories"`
}
