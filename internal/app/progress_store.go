package app

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"strconv"
	"sync"
	"time"

	"dokkai-practice-service/internal/domain"
)

// ProgressKey is the single storage key holding the serialized ledger.
const ProgressKey = "dokkai:progress"

const dateLayout = "2006-01-02"

// KeyValueStore abstracts the durable key-value persistence for the ledger
// (in-memory, Redis, etc).
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SessionInput carries the figures for one completed attempt.
type SessionInput struct {
	PassageID        string
	Category         string
	TotalQuestions   int
	CorrectAnswers   int
	TimeSpentMinutes int
}

// ProgressStore owns the durable progress ledger: an append-only session log
// plus derived running totals and the calendar-day streak. All writes go
// through RecordSession or Clear; the mutex keeps each load-modify-save
// cycle atomic with respect to other callers.
type ProgressStore struct {
	kv    KeyValueStore
	clock func() time.Time
	mu    sync.Mutex
}

func NewProgressStore(kv KeyValueStore) *ProgressStore {
	return NewProgressStoreWithClock(kv, time.Now)
}

// NewProgressStoreWithClock allows deterministic dates in tests.
func NewProgressStoreWithClock(kv KeyValueStore, clock func() time.Time) *ProgressStore {
	return &ProgressStore{kv: kv, clock: clock}
}

// RecordSession appends exactly one session to the ledger, updates the
// running sums and the streak, persists the result, and returns it.
func (s *ProgressStore) RecordSession(ctx context.Context, in SessionInput) (domain.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.loadLocked(ctx)
	now := s.clock().UTC()
	sessionDate := now.Format(dateLayout)

	ledger.Sessions = append(ledger.Sessions, domain.SessionRecord{
		ID:               in.PassageID + "-" + strconv.FormatInt(now.UnixNano(), 10),
		PassageID:        in.PassageID,
		Category:         in.Category,
		TotalQuestions:   in.TotalQuestions,
		CorrectAnswers:   in.CorrectAnswers,
		TimeSpentMinutes: in.TimeSpentMinutes,
		Date:             sessionDate,
	})

	ledger.TotalQuestions += in.TotalQuestions
	ledger.TotalCorrect += in.CorrectAnswers
	ledger.TotalTimeMinutes += in.TimeSpentMinutes

	switch {
	case ledger.LastStudyDate == "":
		ledger.StreakDays = 1
		ledger.LastStudyDate = sessionDate
	case ledger.LastStudyDate == sessionDate:
		// same-day repeat, streak unchanged
	default:
		diffDays := daysBetween(ledger.LastStudyDate, sessionDate)
		switch {
		case diffDays == 1:
			ledger.StreakDays++
		case diffDays > 1:
			ledger.StreakDays = 1
		default:
			// Backdated session (clock moved backwards): keep the streak and
			// the later LastStudyDate rather than rewinding the ledger.
			return ledger, s.saveLocked(ctx, ledger)
		}
		ledger.LastStudyDate = sessionDate
	}

	return ledger, s.saveLocked(ctx, ledger)
}

// Stats derives the read-side view from the current ledger. It never mutates.
func (s *ProgressStore) Stats(ctx context.Context) (domain.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return statsFromLedger(s.loadLocked(ctx)), nil
}

// Clear resets the ledger to its zeroed defaults. Irreversible.
func (s *ProgressStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Delete(ctx, ProgressKey)
}

// loadLocked reads the persisted ledger, substituting the zero ledger when
// the key is absent or the stored value is corrupt. Callers hold s.mu.
func (s *ProgressStore) loadLocked(ctx context.Context) domain.Ledger {
	raw, ok, err := s.kv.Get(ctx, ProgressKey)
	if err != nil {
		log.Printf("progress: load failed, starting from empty ledger: %v", err)
		return domain.Ledger{}
	}
	if !ok {
		return domain.Ledger{}
	}
	var ledger domain.Ledger
	if err := json.Unmarshal([]byte(raw), &ledger); err != nil {
		log.Printf("progress: stored ledger is corrupt, resetting: %v", err)
		return domain.Ledger{}
	}
	return ledger
}

func (s *ProgressStore) saveLocked(ctx context.Context, ledger domain.Ledger) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, ProgressKey, string(data))
}

func statsFromLedger(ledger domain.Ledger) domain.Stats {
	accuracy := 0
	if ledger.TotalQuestions > 0 {
		accuracy = int(math.Round(float64(ledger.TotalCorrect) / float64(ledger.TotalQuestions) * 100))
	}

	byCategory := make(map[string]domain.CategoryStat)
	history := make([]domain.HistoryEntry, 0, len(ledger.Sessions))
	for _, session := range ledger.Sessions {
		category := session.Category
		if category == "" {
			category = "general"
		}
		stat := byCategory[category]
		stat.Attempts += session.TotalQuestions
		stat.Correct += session.CorrectAnswers
		byCategory[category] = stat

		history = append(history, domain.HistoryEntry{
			PassageID: session.PassageID,
			Timestamp: session.Date,
			Total:     session.TotalQuestions,
			Correct:   session.CorrectAnswers,
		})
	}

	return domain.Stats{
		CompletedCount:   len(ledger.Sessions),
		Accuracy:         accuracy,
		TotalTimeMinutes: ledger.TotalTimeMinutes,
		StreakDays:       ledger.StreakDays,
		TotalAttempts:    ledger.TotalQuestions,
		CorrectAnswers:   ledger.TotalCorrect,
		ByCategory:       byCategory,
		History:          history,
	}
}

// daysBetween computes the whole-day calendar difference between two
// YYYY-MM-DD dates. Both parse to UTC midnight, so the division is exact.
func daysBetween(from, to string) int {
	a, errA := time.Parse(dateLayout, from)
	b, errB := time.Parse(dateLayout, to)
	if errA != nil || errB != nil {
		return 0
	}
	return int(b.Sub(a) / (24 * time.Hour))
}
