package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"quiz-service/internal/domain"
)

type countingLoader struct {
	calls atomic.Int32
	delay time.Duration
	key   domain.AnswerKey
	err   error
}

func (l *countingLoader) LoadAnswerKey(_ context.Context, quizID int64) (domain.AnswerKey, error) {
	l.calls.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.err != nil {
		return domain.AnswerKey{}, l.err
	}
	key := l.key
	key.QuizID = quizID
	return key, nil
}

func sampleKey() domain.AnswerKey {
	return domain.AnswerKey{QuestionIDs: []int64{10, 11}, Correct: map[int64]int64{10: 100}}
}

func TestAnswerKeyCacheReadThrough(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{key: sampleKey()}
	cache := NewAnswerKeyCache(loader, time.Minute)

	for i := 0; i < 3; i++ {
		key, err := cache.GetAnswerKey(ctx, 1)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if key.TotalQuestions() != 2 {
			t.Fatalf("expected 2 questions, got %d", key.TotalQuestions())
		}
	}
	if got := loader.calls.Load(); got != 1 {
		t.Fatalf("expected 1 load, got %d", got)
	}

	if err := cache.Invalidate(ctx, 1); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := cache.GetAnswerKey(ctx, 1); err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if got := loader.calls.Load(); got != 2 {
		t.Fatalf("expected reload after invalidate, got %d loads", got)
	}
}

func TestAnswerKeyCacheExpires(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{key: sampleKey()}
	cache := NewAnswerKeyCache(loader, time.Minute)
	now := time.Date(2024, 11, 22, 0, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	if _, err := cache.GetAnswerKey(ctx, 1); err != nil {
		t.Fatalf("get: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := cache.GetAnswerKey(ctx, 1); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := loader.calls.Load(); got != 2 {
		t.Fatalf("expected expiry to force a reload, got %d loads", got)
	}
}

func TestAnswerKeyCacheCoalescesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{key: sampleKey(), delay: 50 * time.Millisecond}
	cache := NewAnswerKeyCache(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.GetAnswerKey(ctx, 1); err != nil {
				t.Errorf("get: %v", err)
			}
		}()
	}
	wg.Wait()
	if got := loader.calls.Load(); got != 1 {
		t.Fatalf("expected a single load, got %d", got)
	}
}

func TestAnswerKeyCacheDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{err: domain.ErrQuizNotFound}
	cache := NewAnswerKeyCache(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.GetAnswerKey(ctx, 9); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("expected quiz not found, got %v", err)
		}
	}
	if got := loader.calls.Load(); got != 2 {
		t.Fatalf("expected every miss to hit the loader, got %d", got)
	}
}

func TestStoreLoadAnswerKeyPicksLowestCorrectOption(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	quiz, _ := store.CreateQuiz(ctx, domain.Quiz{Title: "Keys"})
	q, err := store.CreateQuestion(ctx, quiz.ID, domain.NewQuestion{
		QuestionText: "Pick",
		Options: []domain.OptionInput{
			{OptionText: "a"},
			{OptionText: "b", IsCorrect: true},
			{OptionText: "c", IsCorrect: true},
		},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	key, err := store.LoadAnswerKey(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	correct, ok := key.CorrectOption(q.ID)
	if !ok || correct != q.Options[1].ID {
		t.Fatalf("expected option %d, got %d (ok=%v)", q.Options[1].ID, correct, ok)
	}
	if _, err := store.LoadAnswerKey(ctx, quiz.ID+100); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}
