package redis

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-service/internal/app"
	"quiz-service/internal/domain"
)

const (
	loadedField    = "loaded"
	questionPrefix = "q:"
)

// AnswerKeyCache caches answer keys in Redis (one hash per quiz) and falls back to a loader on miss.
// Layout:
//
//	HSET quiz:{quizID}:answers loaded 1 q:{questionID} {correctOptionID or ""}
//	INCR quiz:{quizID}:generation   (bumped by Invalidate)
type AnswerKeyCache struct {
	client *redis.Client
	loader app.AnswerKeyLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewAnswerKeyCache(client *redis.Client, loader app.AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) GetAnswerKey(ctx context.Context, quizID int64) (domain.AnswerKey, error) {
	if key, ok := c.lookup(ctx, quizID); ok {
		return key, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(quizID, 10), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if key, ok := c.lookup(ctx, quizID); ok {
			return key, nil
		}

		// a missing generation reads as ""
		gen, _ := c.client.Get(ctx, c.generationKey(quizID)).Result()

		key, err := c.loader.LoadAnswerKey(ctx, quizID)
		if err != nil {
			return domain.AnswerKey{}, err
		}
		_ = c.store(ctx, quizID, gen, key)
		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return result.(domain.AnswerKey), nil
}

// Invalidate drops the cached key and bumps the quiz's generation; loads that
// began under the old generation are not written back.
func (c *AnswerKeyCache) Invalidate(ctx context.Context, quizID int64) error {
	c.sf.Forget(strconv.FormatInt(quizID, 10))
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.generationKey(quizID))
		pipe.Del(ctx, c.answersKey(quizID))
		return nil
	})
	return err
}

func (c *AnswerKeyCache) lookup(ctx context.Context, quizID int64) (domain.AnswerKey, bool) {
	fields, err := c.client.HGetAll(ctx, c.answersKey(quizID)).Result()
	if err != nil || fields[loadedField] == "" {
		return domain.AnswerKey{}, false
	}
	return decodeAnswerKey(quizID, fields)
}

func (c *AnswerKeyCache) store(ctx context.Context, quizID int64, gen string, key domain.AnswerKey) error {
	genKey := c.generationKey(quizID)
	answersKey := c.answersKey(quizID)
	ttl := c.ttlWithJitter()
	if ttl <= 0 {
		return nil
	}

	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, answersKey)
			pipe.HSet(ctx, answersKey, encodeAnswerKey(key))
			pipe.Expire(ctx, answersKey, ttl)
			return nil
		})
		return err
	}, genKey)
}

func (c *AnswerKeyCache) answersKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":answers"
}

func (c *AnswerKeyCache) generationKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":generation"
}

func encodeAnswerKey(key domain.AnswerKey) map[string]interface{} {
	fields := make(map[string]interface{}, len(key.QuestionIDs)+1)
	fields[loadedField] = "1"
	for _, questionID := range key.QuestionIDs {
		value := ""
		if optionID, ok := key.CorrectOption(questionID); ok {
			value = strconv.FormatInt(optionID, 10)
		}
		fields[questionPrefix+strconv.FormatInt(questionID, 10)] = value
	}
	return fields
}

func decodeAnswerKey(quizID int64, fields map[string]string) (domain.AnswerKey, bool) {
	key := domain.AnswerKey{QuizID: quizID, QuestionIDs: []int64{}, Correct: make(map[int64]int64)}
	for field, value := range fields {
		if !strings.HasPrefix(field, questionPrefix) {
			continue
		}
		questionID, err := strconv.ParseInt(strings.TrimPrefix(field, questionPrefix), 10, 64)
		if err != nil {
			return domain.AnswerKey{}, false
		}
		key.QuestionIDs = append(key.QuestionIDs, questionID)
		if value == "" {
			continue
		}
		optionID, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return domain.AnswerKey{}, false
		}
		key.Correct[questionID] = optionID
	}
	sort.Slice(key.QuestionIDs, func(i, j int) bool { return key.QuestionIDs[i] < key.QuestionIDs[j] })
	return key, true
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
