package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dokkai-practice-service/internal/app"
	"dokkai-practice-service/internal/domain"
	"dokkai-practice-service/internal/infra/memory"
)

func TestSubmitGradesAndRecords(t *testing.T) {
	ctx := context.Background()
	now := date(2025, 3, 10)
	progress := app.NewProgressStoreWithClock(memory.NewKVStore(), func() time.Time { return now })
	session, err := app.NewQuizSessionWithClock(threeQuestionPassage(), progress, func() time.Time { return now })
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	now = now.Add(7 * time.Minute)
	outcome, err := session.Submit(ctx, domain.Submission{"q1": "a", "q2": "c", "q3": "a"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if outcome.Score.CorrectCount != 2 || outcome.Score.TotalQuestions != 3 {
		t.Fatalf("unexpected score: %+v", outcome.Score)
	}
	if outcome.Stats.CompletedCount != 1 || outcome.Stats.StreakDays != 1 {
		t.Fatalf("unexpected stats: %+v", outcome.Stats)
	}
	if outcome.Stats.TotalTimeMinutes != 7 {
		t.Fatalf("expected 7 minutes recorded, got %d", outcome.Stats.TotalTimeMinutes)
	}
	// The passage category flows through to the rollup.
	if got := outcome.Stats.ByCategory["essay"]; got.Attempts != 3 {
		t.Fatalf("expected essay bucket with 3 attempts, got %+v", got)
	}
}

func TestSubMinuteAttemptCountsAsOneMinute(t *testing.T) {
	ctx := context.Background()
	now := date(2025, 3, 10)
	progress := app.NewProgressStoreWithClock(memory.NewKVStore(), func() time.Time { return now })
	session, _ := app.NewQuizSessionWithClock(threeQuestionPassage(), progress, func() time.Time { return now })

	now = now.Add(10 * time.Second)
	outcome, err := session.Submit(ctx, domain.Submission{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Stats.TotalTimeMinutes != 1 {
		t.Fatalf("expected floor of 1 minute, got %d", outcome.Stats.TotalTimeMinutes)
	}
}

func TestDuplicateSubmitRejected(t *testing.T) {
	ctx := context.Background()
	progress := app.NewProgressStore(memory.NewKVStore())
	session, _ := app.NewQuizSession(threeQuestionPassage(), progress)

	if _, err := session.Submit(ctx, domain.Submission{"q1": "a"}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := session.Submit(ctx, domain.Submission{"q1": "a"}); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}

	// The rejected call must not have touched the ledger.
	stats, _ := progress.Stats(ctx)
	if stats.CompletedCount != 1 {
		t.Fatalf("expected exactly 1 session, got %d", stats.CompletedCount)
	}
}

func TestExplanationsOnlyAfterSubmit(t *testing.T) {
	ctx := context.Background()
	progress := app.NewProgressStore(memory.NewKVStore())
	session, _ := app.NewQuizSession(threeQuestionPassage(), progress)

	if _, err := session.Explanations(); !errors.Is(err, domain.ErrNotSubmitted) {
		t.Fatalf("expected ErrNotSubmitted, got %v", err)
	}

	_, _ = session.Submit(ctx, domain.Submission{})
	explanations, err := session.Explanations()
	if err != nil {
		t.Fatalf("explanations: %v", err)
	}
	if len(explanations) != 3 || explanations[1].Explanation != "second" {
		t.Fatalf("unexpected explanations: %+v", explanations)
	}

	// Revealing explanations never changes the ledger.
	stats, _ := progress.Stats(ctx)
	if stats.CompletedCount != 1 {
		t.Fatalf("expected 1 session after explanations, got %d", stats.CompletedCount)
	}
}

func TestZeroQuestionPassageRefused(t *testing.T) {
	progress := app.NewProgressStore(memory.NewKVStore())
	if _, err := app.NewQuizSession(domain.Passage{ID: "empty"}, progress); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestStartSessionUnknownPassage(t *testing.T) {
	ctx := context.Background()
	loader := memory.NewStaticPassageLoader(map[string]domain.Passage{
		"p1": threeQuestionPassage(),
	})
	service := app.NewPracticeService(
		memory.NewPassageRepository(loader, time.Minute),
		loader,
		app.NewProgressStore(memory.NewKVStore()),
	)

	if _, err := service.StartSession(ctx, "missing"); !errors.Is(err, domain.ErrPassageNotFound) {
		t.Fatalf("expected ErrPassageNotFound, got %v", err)
	}

	// A failed load leaves the ledger untouched.
	stats, _ := service.Stats(ctx)
	if stats.CompletedCount != 0 {
		t.Fatalf("expected empty ledger, got %+v", stats)
	}
}
