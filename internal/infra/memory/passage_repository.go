package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"dokkai-practice-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// PassageLoader fetches passage content from a backing store (files, DB).
type PassageLoader interface {
	LoadPassage(ctx context.Context, passageID string) (domain.Passage, error)
}

// PassageRepository caches passages with TTL to avoid repeated loader hits.
type PassageRepository struct {
	loader PassageLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedPassage
}

type cachedPassage struct {
	passage   domain.Passage
	expiresAt time.Time
}

func NewPassageRepository(loader PassageLoader, ttl time.Duration) *PassageRepository {
	return &PassageRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPassage),
	}
}

func (r *PassageRepository) GetPassage(ctx context.Context, passageID string) (domain.Passage, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[passageID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.passage, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(passageID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[passageID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.passage, nil
		}
		r.mu.RUnlock()

		passage, err := r.loader.LoadPassage(ctx, passageID)
		if err != nil {
			return domain.Passage{}, err
		}

		r.mu.Lock()
		r.cache[passageID] = cachedPassage{
			passage:   passage,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return passage, nil
	})
	if err != nil {
		return domain.Passage{}, err
	}
	return result.(domain.Passage), nil
}

func (r *PassageRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticPassageLoader is a loader backed by an in-memory map (tests/demos).
type StaticPassageLoader struct {
	passages map[string]domain.Passage
}

func NewStaticPassageLoader(passages map[string]domain.Passage) *StaticPassageLoader {
	return &StaticPassageLoader{passages: passages}
}

func (l *StaticPassageLoader) LoadPassage(_ context.Context, passageID string) (domain.Passage, error) {
	if passage, ok := l.passages[passageID]; ok {
		return passage, nil
	}
	return domain.Passage{}, domain.ErrPassageNotFound
}

// ContentIndex derives a catalog from the static passage set so the loader
// can double as an app.MetadataSource in tests and demos.
func (l *StaticPassageLoader) ContentIndex(_ context.Context) (domain.ContentIndex, error) {
	index := domain.ContentIndex{}
	counts := make(map[string]int)
	for _, passage := range l.passages {
		index.Passages = append(index.Passages, domain.PassageSummary{
			ID:            passage.ID,
			Title:         passage.Title,
			Category:      passage.Category,
			Difficulty:    passage.Difficulty,
			EstimatedTime: passage.EstimatedTime,
		})
		counts[passage.Category]++
	}
	for id, count := range counts {
		index.Categories = append(index.Categories, domain.CategoryCount{ID: id, Count: count})
	}
	return index, nil
}
