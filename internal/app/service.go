package app

import (
	"context"

	"dokkai-practice-service/internal/domain"
)

// PassageRepository loads passage content (from cache/backing store).
type PassageRepository interface {
	GetPassage(ctx context.Context, passageID string) (domain.Passage, error)
}

// MetadataSource serves the catalog of available passages and categories.
type MetadataSource interface {
	ContentIndex(ctx context.Context) (domain.ContentIndex, error)
}

// PracticeService is the composition root of the core: it starts attempts
// and exposes the progress ledger's read and reset operations.
type PracticeService struct {
	passages PassageRepository
	metadata MetadataSource
	progress *ProgressStore
}

func NewPracticeService(passages PassageRepository, metadata MetadataSource, progress *ProgressStore) *PracticeService {
	return &PracticeService{passages: passages, metadata: metadata, progress: progress}
}

// StartSession begins a fresh attempt for the passage. Load failures surface
// to the caller and never touch the ledger.
func (s *PracticeService) StartSession(ctx context.Context, passageID string) (*QuizSession, error) {
	passage, err := s.passages.GetPassage(ctx, passageID)
	if err != nil {
		return nil, err
	}
	return NewQuizSession(passage, s.progress)
}

// ContentIndex returns the passage catalog.
func (s *PracticeService) ContentIndex(ctx context.Context) (domain.ContentIndex, error) {
	return s.metadata.ContentIndex(ctx)
}

// Stats returns the current ledger-derived statistics view.
func (s *PracticeService) Stats(ctx context.Context) (domain.Stats, error) {
	return s.progress.Stats(ctx)
}

// ResetProgress wipes the ledger back to its defaults.
func (s *PracticeService) ResetProgress(ctx context.Context) error {
	return s.progress.Clear(ctx)
}
