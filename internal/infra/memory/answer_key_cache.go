package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-service/internal/app"
	"quiz-service/internal/domain"
)

// AnswerKeyCache caches answer keys in process with TTL to avoid repeated store hits.
type AnswerKeyCache struct {
	loader app.AnswerKeyLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[int64]cachedKey
	// generation is bumped by Invalidate; loads started under an older
	// generation are returned but not cached.
	generation map[int64]uint64
}

type cachedKey struct {
	key       domain.AnswerKey
	expiresAt time.Time
}

func NewAnswerKeyCache(loader app.AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		loader:     loader,
		ttl:        ttl,
		clock:      time.Now,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:      make(map[int64]cachedKey),
		generation: make(map[int64]uint64),
	}
}

func (c *AnswerKeyCache) GetAnswerKey(ctx context.Context, quizID int64) (domain.AnswerKey, error) {
	if key, ok := c.lookup(quizID); ok {
		return key, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(quizID, 10), func() (interface{}, error) {
		if key, ok := c.lookup(quizID); ok {
			return key, nil
		}

		c.mu.RLock()
		gen := c.generation[quizID]
		c.mu.RUnlock()

		key, err := c.loader.LoadAnswerKey(ctx, quizID)
		if err != nil {
			return domain.AnswerKey{}, err
		}

		ttl := c.ttlWithJitter()
		c.mu.Lock()
		if ttl > 0 && c.generation[quizID] == gen {
			c.cache[quizID] = cachedKey{key: key, expiresAt: c.clock().Add(ttl)}
		}
		c.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return result.(domain.AnswerKey), nil
}

// Invalidate drops the cached key for a quiz.
func (c *AnswerKeyCache) Invalidate(_ context.Context, quizID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, quizID)
	c.generation[quizID]++
	c.sf.Forget(strconv.FormatInt(quizID, 10))
	return nil
}

func (c *AnswerKeyCache) lookup(quizID int64) (domain.AnswerKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[quizID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.AnswerKey{}, false
	}
	return entry.key, true
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
