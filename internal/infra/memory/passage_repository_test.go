package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"dokkai-practice-service/internal/domain"
)

func TestPassageRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		PassageLoader: NewStaticPassageLoader(map[string]domain.Passage{
			"passage-1": samplePassage(),
		}),
	}
	repo := NewPassageRepository(loader, time.Minute)

	if _, err := repo.GetPassage(context.Background(), "passage-1"); err != nil {
		t.Fatalf("get passage: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetPassage(context.Background(), "passage-1"); err != nil {
		t.Fatalf("get passage 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestStaticLoaderUnknownPassage(t *testing.T) {
	loader := NewStaticPassageLoader(map[string]domain.Passage{})
	if _, err := loader.LoadPassage(context.Background(), "nope"); !errors.Is(err, domain.ErrPassageNotFound) {
		t.Fatalf("expected ErrPassageNotFound, got %v", err)
	}
}

func TestStaticLoaderContentIndex(t *testing.T) {
	loader := NewStaticPassageLoader(map[string]domain.Passage{
		"passage-1": samplePassage(),
	})

	index, err := loader.ContentIndex(context.Background())
	if err != nil {
		t.Fatalf("content index: %v", err)
	}
	if len(index.Passages) != 1 || index.Passages[0].ID != "passage-1" {
		t.Fatalf("unexpected index: %+v", index)
	}
	if len(index.Categories) != 1 || index.Categories[0].Count != 1 {
		t.Fatalf("unexpected categories: %+v", index.Categories)
	}
}

type countingLoader struct {
	PassageLoader
	calls int
}

func (l *countingLoader) LoadPassage(ctx context.Context, passageID string) (domain.Passage, error) {
	l.calls++
	return l.PassageLoader.LoadPassage(ctx, passageID)
}

func samplePassage() domain.Passage {
	return domain.Passage{
		ID:       "passage-1",
		Title:    "Sample",
		Category: "essay",
		Questions: []domain.Question{
			{
				ID:           "q1",
				QuestionText: "Pick the right choice",
				Choices: []domain.Choice{
					{ID: "a", Text: "Wrong"},
					{ID: "b", Text: "Right"},
				},
				CorrectAnswer: "b",
				Explanation:   "b is correct",
			},
		},
	}
}
