package app

import (
	"context"
	"fmt"
	"time"

	"quiz-service/internal/domain"
	"quiz-service/internal/logger"
)

// QuizService contains the quiz CRUD use cases.
type QuizService struct {
	quizzes QuizRepository
	keys    AnswerKeyRepository
	log     *logger.Logger
	now     func() time.Time
}

func NewQuizService(quizzes QuizRepository, keys AnswerKeyRepository, log *logger.Logger) *QuizService {
	return &QuizService{quizzes: quizzes, keys: keys, log: log, now: time.Now}
}

func (s *QuizService) Create(ctx context.Context, in domain.QuizInput) (domain.Quiz, error) {
	now := s.now()
	quiz, err := s.quizzes.CreateQuiz(ctx, domain.Quiz{
		Title:       in.Title,
		Description: in.Description,
		TimeLimit:   in.TimeLimit,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	s.log.Info("quiz created", "quiz_id", quiz.ID)
	return quiz, nil
}

func (s *QuizService) List(ctx context.Context) ([]domain.Quiz, error) {
	return s.quizzes.ListQuizzes(ctx)
}

func (s *QuizService) Get(ctx context.Context, id int64) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, id)
}

// Update replaces the quiz's title, description and time limit.
func (s *QuizService) Update(ctx context.Context, id int64, in domain.QuizInput) (domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.Title = in.Title
	quiz.Description = in.Description
	quiz.TimeLimit = in.TimeLimit
	quiz.UpdatedAt = s.now()
	return s.quizzes.UpdateQuiz(ctx, quiz)
}

// Delete removes the quiz with its questions, options and attempts.
func (s *QuizService) Delete(ctx context.Context, id int64) error {
	err := withInvalidation(ctx, s.keys, id, func() error {
		return s.quizzes.DeleteQuiz(ctx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("quiz deleted", "quiz_id", id)
	return nil
}

// withInvalidation runs a write that changes a quiz's answer key between two
// invalidations of the cached key. A failed invalidation fails the call; when
// the second one fails the write has already been applied.
func withInvalidation(ctx context.Context, keys AnswerKeyRepository, quizID int64, write func() error) error {
	if err := keys.Invalidate(ctx, quizID); err != nil {
		return fmt.Errorf("invalidate answer key for quiz %d: %w", quizID, err)
	}
	if err := write(); err != nil {
		return err
	}
	if err := keys.Invalidate(ctx, quizID); err != nil {
		return fmt.Errorf("invalidate answer key for quiz %d: %w", quizID, err)
	}
	return nil
}
