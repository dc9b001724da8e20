package app

import "dokkai-practice-service/internal/domain"

// Score grades a submission against a passage's answer key.
// It is pure: neither input is mutated, and the breakdown follows the
// passage's question order. A question missing from the submission counts
// as unanswered and therefore incorrect.
func Score(passage domain.Passage, submission domain.Submission) domain.ScoreResult {
	breakdown := make([]domain.QuestionResult, 0, len(passage.Questions))
	correctCount := 0

	for _, question := range passage.Questions {
		var selected *string
		if choiceID, ok := submission[question.ID]; ok {
			value := choiceID
			selected = &value
		}

		isCorrect := selected != nil && *selected == question.CorrectAnswer
		if isCorrect {
			correctCount++
		}

		breakdown = append(breakdown, domain.QuestionResult{
			QuestionID:    question.ID,
			Selected:      selected,
			CorrectAnswer: question.CorrectAnswer,
			IsCorrect:     isCorrect,
		})
	}

	return domain.ScoreResult{
		CorrectCount:   correctCount,
		TotalQuestions: len(passage.Questions),
		Breakdown:      breakdown,
	}
}
