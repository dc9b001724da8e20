package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"dokkai-practice-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PassageLoader fetches passage content from a backing store (files, DB).
type PassageLoader interface {
	LoadPassage(ctx context.Context, passageID string) (domain.Passage, error)
}

// PassageRepository caches full passages in Redis (one JSON value per
// passage under passage:{id}) and falls back to a loader on cache miss.
// Grading and explanation reveal need the complete question set, so the
// whole passage is cached rather than a stripped answer key.
type PassageRepository struct {
	client *redis.Client
	loader PassageLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewPassageRepository(client *redis.Client, loader PassageLoader, ttl time.Duration) *PassageRepository {
	return &PassageRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *PassageRepository) GetPassage(ctx context.Context, passageID string) (domain.Passage, error) {
	key := r.passageKey(passageID)

	if passage, ok := r.cachedPassage(ctx, key); ok {
		return passage, nil
	}

	result, err, _ := r.sf.Do(passageID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if passage, ok := r.cachedPassage(ctx, key); ok {
			return passage, nil
		}

		passage, err := r.loader.LoadPassage(ctx, passageID)
		if err != nil {
			return domain.Passage{}, err
		}

		if data, err := json.Marshal(passage); err == nil {
			// best-effort cache fill
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return passage, nil
	})
	if err != nil {
		return domain.Passage{}, err
	}
	return result.(domain.Passage), nil
}

func (r *PassageRepository) cachedPassage(ctx context.Context, key string) (domain.Passage, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Passage{}, false
	}
	var passage domain.Passage
	if err := json.Unmarshal(raw, &passage); err != nil {
		return domain.Passage{}, false
	}
	return passage, true
}

func (r *PassageRepository) passageKey(passageID string) string {
	return "passage:" + passageID
}

func (r *PassageRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
