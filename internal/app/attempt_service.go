package app

import (
	"context"
	"time"

	"quiz-service/internal/domain"
	"quiz-service/internal/logger"
)

// TimeTakenUntracked is reported for attempts; completion time is the only timing recorded.
const TimeTakenUntracked = "N/A"

// AttemptService grades submissions and serves attempt history.
type AttemptService struct {
	quizzes  QuizRepository
	keys     AnswerKeyRepository
	attempts AttemptRepository
	hub      *LeaderboardHub
	log      *logger.Logger
	now      func() time.Time
}

func NewAttemptService(quizzes QuizRepository, keys AnswerKeyRepository, attempts AttemptRepository, hub *LeaderboardHub, log *logger.Logger) *AttemptService {
	return NewAttemptServiceWithClock(quizzes, keys, attempts, hub, log, time.Now)
}

// NewAttemptServiceWithClock allows deterministic completion timestamps in tests.
func NewAttemptServiceWithClock(quizzes QuizRepository, keys AnswerKeyRepository, attempts AttemptRepository, hub *LeaderboardHub, log *logger.Logger, now func() time.Time) *AttemptService {
	return &AttemptService{
		quizzes:  quizzes,
		keys:     keys,
		attempts: attempts,
		hub:      hub,
		log:      log,
		now:      now,
	}
}

// SubmitAttempt grades the submission against the quiz's current answer key
// and persists one attempt record.
func (s *AttemptService) SubmitAttempt(ctx context.Context, sub domain.Submission) (domain.Attempt, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, sub.QuizID)
	if err != nil {
		return domain.Attempt{}, err
	}

	key, err := s.keys.GetAnswerKey(ctx, quiz.ID)
	if err != nil {
		return domain.Attempt{}, err
	}

	attempt, err := s.attempts.CreateAttempt(ctx, domain.Attempt{
		QuizID:         quiz.ID,
		StudentName:    sub.StudentName,
		Score:          grade(key, sub.Answers),
		TotalQuestions: key.TotalQuestions(),
		CompletedAt:    s.now(),
	})
	if err != nil {
		return domain.Attempt{}, err
	}
	attempt.QuizTitle = quiz.Title

	s.log.Info("attempt graded",
		"quiz_id", quiz.ID,
		"attempt_id", attempt.ID,
		"score", attempt.Score,
		"total", attempt.TotalQuestions,
	)
	s.publish(ctx, quiz.ID)
	return attempt, nil
}

// ListAttempts returns the attempts of one quiz.
func (s *AttemptService) ListAttempts(ctx context.Context, quizID int64) ([]domain.Attempt, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.attempts.ListAttemptsByQuiz(ctx, quizID)
}

// ListAllAttempts returns every attempt across quizzes.
func (s *AttemptService) ListAllAttempts(ctx context.Context) ([]domain.Attempt, error) {
	return s.attempts.ListAttempts(ctx)
}

// Leaderboard ranks the students who attempted a quiz.
func (s *AttemptService) Leaderboard(ctx context.Context, quizID int64) (domain.Leaderboard, error) {
	attempts, err := s.ListAttempts(ctx, quizID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return buildLeaderboard(quizID, attempts, s.now()), nil
}

// Subscribe returns a channel that receives leaderboard updates for a quiz,
// starting with the current standings. The caller must invoke cancel.
func (s *AttemptService) Subscribe(ctx context.Context, quizID int64) (<-chan domain.Leaderboard, func(), error) {
	return s.hub.SubscribeWith(quizID, func() (domain.Leaderboard, error) {
		return s.Leaderboard(ctx, quizID)
	})
}

func (s *AttemptService) publish(ctx context.Context, quizID int64) {
	err := s.hub.Refresh(quizID, func() (domain.Leaderboard, error) {
		return s.Leaderboard(ctx, quizID)
	})
	if err != nil {
		s.log.Warn("leaderboard refresh failed", "quiz_id", quizID, "error", err)
	}
}

// grade counts correct answers. Each question is scored at most once and the
// last answer submitted for a question is the one that counts. Answers for
// questions outside the key, or for questions without a correct option,
// score nothing.
func grade(key domain.AnswerKey, answers []domain.Answer) int {
	selected := make(map[int64]int64, len(answers))
	for _, answer := range answers {
		selected[answer.QuestionID] = answer.SelectedOptionID
	}

	score := 0
	for questionID, optionID := range selected {
		correct, ok := key.CorrectOption(questionID)
		if ok && correct == optionID {
			score++
		}
	}
	return score
}
