package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-service/internal/app"
	"quiz-service/internal/domain"
	"quiz-service/internal/infra/memory"
	"quiz-service/internal/logger"
)

func TestAnswerKeyCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store, quizID, question := seededStore(t)
	loader := &countingLoader{AnswerKeyLoader: store}
	cache := NewAnswerKeyCache(newClient(mr), loader, time.Minute)

	key, err := cache.GetAnswerKey(ctx, quizID)
	if err != nil {
		t.Fatalf("get answer key: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	correct, ok := key.CorrectOption(question.ID)
	if !ok || correct != question.Options[1].ID {
		t.Fatalf("unexpected correct option %d (ok=%v)", correct, ok)
	}

	// Second call should hit redis.
	cached, err := cache.GetAnswerKey(ctx, quizID)
	if err != nil {
		t.Fatalf("get cached: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.TotalQuestions() != 2 {
		t.Fatalf("expected 2 questions from cache, got %d", cached.TotalQuestions())
	}
	if _, ok := cached.CorrectOption(question.ID + 100); ok {
		t.Fatalf("unexpected correct option for unknown question")
	}

	if !mr.Exists(answersKeyFor(quizID)) {
		t.Fatalf("expected answers hash in redis")
	}
	if ttl := mr.TTL(answersKeyFor(quizID)); ttl < time.Minute || ttl > 66*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}
}

func TestAnswerKeyCacheInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store, quizID, _ := seededStore(t)
	loader := &countingLoader{AnswerKeyLoader: store}
	cache := NewAnswerKeyCache(newClient(mr), loader, time.Minute)

	if _, err := cache.GetAnswerKey(ctx, quizID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := cache.Invalidate(ctx, quizID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists(answersKeyFor(quizID)) {
		t.Fatalf("expected answers hash removed")
	}
	if _, err := cache.GetAnswerKey(ctx, quizID); err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, calls=%d", loader.calls)
	}
}

func TestAnswerKeyCacheSkipsStaleWrite(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	cache := NewAnswerKeyCache(newClient(mr), nil, time.Minute)
	key := domain.AnswerKey{QuizID: 5, QuestionIDs: []int64{1}, Correct: map[int64]int64{1: 2}}

	// A load that started before an invalidation must not be written back.
	if err := cache.Invalidate(ctx, 5); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if err := cache.store(ctx, 5, "", key); err != nil {
		t.Fatalf("store: %v", err)
	}
	if mr.Exists(answersKeyFor(5)) {
		t.Fatalf("stale generation should not be cached")
	}

	if err := cache.store(ctx, 5, "1", key); err != nil {
		t.Fatalf("store: %v", err)
	}
	if !mr.Exists(answersKeyFor(5)) {
		t.Fatalf("current generation should be cached")
	}
}

func TestAnswerKeyCachePropagatesLoaderErrors(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewAnswerKeyCache(newClient(mr), memory.NewStore(), time.Minute)
	if _, err := cache.GetAnswerKey(context.Background(), 404); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if mr.Exists(answersKeyFor(404)) {
		t.Fatalf("errors must not be cached")
	}
}

func TestAnswerKeyEncodingKeepsQuestionsWithoutCorrectOption(t *testing.T) {
	key := domain.AnswerKey{QuizID: 3, QuestionIDs: []int64{7, 8}, Correct: map[int64]int64{8: 80}}
	fields := make(map[string]string)
	for k, v := range encodeAnswerKey(key) {
		fields[k] = v.(string)
	}
	decoded, ok := decodeAnswerKey(3, fields)
	if !ok {
		t.Fatalf("decode failed")
	}
	if decoded.TotalQuestions() != 2 || decoded.QuestionIDs[0] != 7 {
		t.Fatalf("unexpected questions %v", decoded.QuestionIDs)
	}
	if _, ok := decoded.CorrectOption(7); ok {
		t.Fatalf("question 7 has no correct option")
	}
	if got, _ := decoded.CorrectOption(8); got != 80 {
		t.Fatalf("expected 80, got %d", got)
	}
}

type countingLoader struct {
	app.AnswerKeyLoader
	calls int
}

func (l *countingLoader) LoadAnswerKey(ctx context.Context, quizID int64) (domain.AnswerKey, error) {
	l.calls++
	return l.AnswerKeyLoader.LoadAnswerKey(ctx, quizID)
}

// seededStore holds one quiz with two questions; the first has option b correct.
func seededStore(t *testing.T) (*memory.Store, int64, domain.Question) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	quiz, err := store.CreateQuiz(ctx, domain.Quiz{Title: "Cached"})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	first, err := store.CreateQuestion(ctx, quiz.ID, domain.NewQuestion{
		QuestionText: "What is 2 + 2?",
		Options: []domain.OptionInput{
			{OptionText: "3"},
			{OptionText: "4", IsCorrect: true},
		},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	if _, err := store.CreateQuestion(ctx, quiz.ID, domain.NewQuestion{
		QuestionText: "What is 3 + 3?",
		Options:      []domain.OptionInput{{OptionText: "6", IsCorrect: true}},
	}); err != nil {
		t.Fatalf("create question: %v", err)
	}
	return store, quiz.ID, first
}

func answersKeyFor(quizID int64) string {
	return (&AnswerKeyCache{}).answersKey(quizID)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestAnswerKeyCacheEmptyQuiz(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := memory.NewStore()
	quiz, err := store.CreateQuiz(ctx, domain.Quiz{Title: "Empty"})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	loader := &countingLoader{AnswerKeyLoader: store}
	cache := NewAnswerKeyCache(newClient(mr), loader, time.Minute)

	for i := 0; i < 2; i++ {
		key, err := cache.GetAnswerKey(ctx, quiz.ID)
		if err != nil {
			t.Fatalf("get answer key: %v", err)
		}
		if key.TotalQuestions() != 0 {
			t.Fatalf("expected no questions, got %d", key.TotalQuestions())
		}
	}
	if loader.calls != 1 {
		t.Fatalf("expected empty key served from redis, loader calls=%d", loader.calls)
	}
	keys, err := mr.HKeys(answersKeyFor(quiz.ID))
	if err != nil || len(keys) != 1 || keys[0] != loadedField {
		t.Fatalf("expected only the loaded marker, got %v (err=%v)", keys, err)
	}

	fields := make(map[string]string)
	for k, v := range encodeAnswerKey(domain.AnswerKey{QuizID: quiz.ID}) {
		fields[k] = v.(string)
	}
	decoded, ok := decodeAnswerKey(quiz.ID, fields)
	if !ok || decoded.TotalQuestions() != 0 {
		t.Fatalf("unexpected decoded key %+v (ok=%v)", decoded, ok)
	}
}

func TestAddQuestionFailsWhileRedisIsDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	log := logger.Nop()
	store, quizID, first := seededStore(t)
	cache := NewAnswerKeyCache(newClient(mr), store, 10*time.Minute)
	questions := app.NewQuestionService(store, store, cache, log)
	attempts := app.NewAttemptService(store, cache, store, app.NewLeaderboardHub(), log)

	if _, err := attempts.SubmitAttempt(ctx, domain.Submission{QuizID: quizID, StudentName: "Warm"}); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if !mr.Exists(answersKeyFor(quizID)) {
		t.Fatalf("expected cached key")
	}

	third := domain.NewQuestion{
		QuestionText: "What is 4 + 4?",
		Options:      []domain.OptionInput{{OptionText: "8", IsCorrect: true}},
	}
	mr.SetError("LOADING transient")
	if _, err := questions.AddQuestion(ctx, quizID, third); err == nil {
		t.Fatalf("expected add question to fail while redis is down")
	}
	mr.SetError("")

	listed, err := questions.ListQuestions(ctx, quizID)
	if err != nil || len(listed) != 2 {
		t.Fatalf("expected the failed add to leave 2 questions, got %d (err=%v)", len(listed), err)
	}

	added, err := questions.AddQuestion(ctx, quizID, third)
	if err != nil {
		t.Fatalf("retry add question: %v", err)
	}
	listed = append(listed, added)

	var answers []domain.Answer
	for _, q := range listed {
		for _, o := range q.Options {
			if o.IsCorrect {
				answers = append(answers, domain.Answer{QuestionID: q.ID, SelectedOptionID: o.ID})
			}
		}
	}
	attempt, err := attempts.SubmitAttempt(ctx, domain.Submission{QuizID: quizID, StudentName: "Alice", Answers: answers})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if attempt.Score != 3 || attempt.TotalQuestions != 3 {
		t.Fatalf("expected 3/3, got %d/%d", attempt.Score, attempt.TotalQuestions)
	}
	if listed[0].ID != first.ID {
		t.Fatalf("unexpected question order")
	}
}
