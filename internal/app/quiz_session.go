package app

import (
	"context"
	"math"
	"time"

	"dokkai-practice-service/internal/domain"
)

// Explanation pairs a question with its explanation text.
type Explanation struct {
	QuestionID  string `json:"questionId"`
	Explanation string `json:"explanation"`
}

// SubmitOutcome bundles the graded result with the refreshed stats view.
type SubmitOutcome struct {
	Score domain.ScoreResult `json:"score"`
	Stats domain.Stats       `json:"stats"`
}

// QuizSession binds one passage to one in-progress attempt. It moves from
// loaded to submitted exactly once; explanations become available only
// after grading. A new passage means a new QuizSession.
type QuizSession struct {
	passage   domain.Passage
	progress  *ProgressStore
	clock     func() time.Time
	startedAt time.Time
	submitted bool
	result    domain.ScoreResult
}

// NewQuizSession starts an attempt for the passage. Passages without
// questions cannot be meaningfully graded and are refused.
func NewQuizSession(passage domain.Passage, progress *ProgressStore) (*QuizSession, error) {
	return newQuizSessionWithClock(passage, progress, time.Now)
}

// NewQuizSessionWithClock is test-only for deterministic elapsed time.
func NewQuizSessionWithClock(passage domain.Passage, progress *ProgressStore, clock func() time.Time) (*QuizSession, error) {
	return newQuizSessionWithClock(passage, progress, clock)
}

func newQuizSessionWithClock(passage domain.Passage, progress *ProgressStore, clock func() time.Time) (*QuizSession, error) {
	if len(passage.Questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return &QuizSession{
		passage:   passage,
		progress:  progress,
		clock:     clock,
		startedAt: clock(),
	}, nil
}

// Passage returns the bound passage.
func (q *QuizSession) Passage() domain.Passage {
	return q.passage
}

// Submit grades the submission, records the attempt in the progress ledger,
// and returns the breakdown together with the updated stats. A second call
// is rejected with ErrAlreadySubmitted and leaves the ledger untouched.
func (q *QuizSession) Submit(ctx context.Context, submission domain.Submission) (SubmitOutcome, error) {
	if q.submitted {
		return SubmitOutcome{}, domain.ErrAlreadySubmitted
	}

	result := Score(q.passage, submission)

	// A sub-minute attempt still counts as one minute of study time.
	elapsed := q.clock().Sub(q.startedAt)
	minutes := int(math.Round(elapsed.Minutes()))
	if minutes < 1 {
		minutes = 1
	}

	ledger, err := q.progress.RecordSession(ctx, SessionInput{
		PassageID:        q.passage.ID,
		Category:         q.passage.Category,
		TotalQuestions:   result.TotalQuestions,
		CorrectAnswers:   result.CorrectCount,
		TimeSpentMinutes: minutes,
	})
	if err != nil {
		return SubmitOutcome{}, err
	}

	q.submitted = true
	q.result = result
	return SubmitOutcome{Score: result, Stats: statsFromLedger(ledger)}, nil
}

// Result returns the graded breakdown once the attempt has been submitted.
func (q *QuizSession) Result() (domain.ScoreResult, error) {
	if !q.submitted {
		return domain.ScoreResult{}, domain.ErrNotSubmitted
	}
	return q.result, nil
}

// Explanations reveals the per-question explanation text. It is valid only
// after Submit and has no effect on scoring or the ledger.
func (q *QuizSession) Explanations() ([]Explanation, error) {
	if !q.submitted {
		return nil, domain.ErrNotSubmitted
	}
	explanations := make([]Explanation, 0, len(q.passage.Questions))
	for _, question := range q.passage.Questions {
		explanations = append(explanations, Explanation{
			QuestionID:  question.ID,
			Explanation: question.Explanation,
		})
	}
	return explanations, nil
}
