package app

import (
	"context"
	"fmt"

	"quiz-service/internal/domain"
	"quiz-service/internal/logger"
)

// QuestionService authors questions and their options.
type QuestionService struct {
	quizzes   QuizRepository
	questions QuestionRepository
	keys      AnswerKeyRepository
	log       *logger.Logger
}

func NewQuestionService(quizzes QuizRepository, questions QuestionRepository, keys AnswerKeyRepository, log *logger.Logger) *QuestionService {
	return &QuestionService{quizzes: quizzes, questions: questions, keys: keys, log: log}
}

// AddQuestion attaches a question to a quiz. The option set must contain
// exactly one correct option; this is the only place the rule is checked.
func (s *QuestionService) AddQuestion(ctx context.Context, quizID int64, in domain.NewQuestion) (domain.Question, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return domain.Question{}, err
	}
	if in.CorrectCount() != 1 {
		return domain.Question{}, domain.NewValidationError(domain.MsgExactlyOneCorrect)
	}

	var question domain.Question
	err := withInvalidation(ctx, s.keys, quizID, func() error {
		var err error
		question, err = s.questions.CreateQuestion(ctx, quizID, in)
		return err
	})
	if err != nil {
		return domain.Question{}, err
	}
	s.log.Info("question added", "quiz_id", quizID, "question_id", question.ID, "options", len(question.Options))
	return question, nil
}

// ListQuestions returns the quiz's questions with their options.
func (s *QuestionService) ListQuestions(ctx context.Context, quizID int64) ([]domain.Question, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.questions.ListQuestions(ctx, quizID)
}

func (s *QuestionService) GetQuestion(ctx context.Context, id int64) (domain.Question, error) {
	return s.questions.GetQuestion(ctx, id)
}

// DeleteQuestion removes a question and its options.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id int64) error {
	question, err := s.questions.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	return withInvalidation(ctx, s.keys, question.QuizID, func() error {
		return s.questions.DeleteQuestion(ctx, id)
	})
}

// OptionService gives direct CRUD access to single options. Updates are not
// re-validated against the exactly-one-correct rule.
type OptionService struct {
	questions QuestionRepository
	options   OptionRepository
	keys      AnswerKeyRepository
	log       *logger.Logger
}

func NewOptionService(questions QuestionRepository, options OptionRepository, keys AnswerKeyRepository, log *logger.Logger) *OptionService {
	return &OptionService{questions: questions, options: options, keys: keys, log: log}
}

func (s *OptionService) Get(ctx context.Context, id int64) (domain.Option, error) {
	return s.options.GetOption(ctx, id)
}

func (s *OptionService) Update(ctx context.Context, id int64, in domain.OptionInput) (domain.Option, error) {
	option, err := s.options.GetOption(ctx, id)
	if err != nil {
		return domain.Option{}, err
	}
	quizID, err := s.quizOf(ctx, option.QuestionID)
	if err != nil {
		return domain.Option{}, err
	}
	option.OptionText = in.OptionText
	option.IsCorrect = in.IsCorrect

	var updated domain.Option
	err = withInvalidation(ctx, s.keys, quizID, func() error {
		var err error
		updated, err = s.options.UpdateOption(ctx, option)
		return err
	})
	if err != nil {
		return domain.Option{}, err
	}
	s.log.Info("option updated", "quiz_id", quizID, "option_id", id, "is_correct", updated.IsCorrect)
	return updated, nil
}

func (s *OptionService) Delete(ctx context.Context, id int64) error {
	option, err := s.options.GetOption(ctx, id)
	if err != nil {
		return err
	}
	quizID, err := s.quizOf(ctx, option.QuestionID)
	if err != nil {
		return err
	}
	return withInvalidation(ctx, s.keys, quizID, func() error {
		return s.options.DeleteOption(ctx, id)
	})
}

func (s *OptionService) quizOf(ctx context.Context, questionID int64) (int64, error) {
	question, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return 0, fmt.Errorf("resolve quiz of question %d: %w", questionID, err)
	}
	return question.QuizID, nil
}
