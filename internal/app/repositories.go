package app

import (
	"context"

	"quiz-service/internal/domain"
)

// QuizRepository persists quiz metadata. DeleteQuiz cascades to questions, options and attempts.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	GetQuiz(ctx context.Context, id int64) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	UpdateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	DeleteQuiz(ctx context.Context, id int64) error
	CountQuizzes(ctx context.Context) (int, error)
}

// QuestionRepository persists questions together with their options.
type QuestionRepository interface {
	// CreateQuestion stores the question and all of its options in one atomic write.
	CreateQuestion(ctx context.Context, quizID int64, question domain.NewQuestion) (domain.Question, error)
	GetQuestion(ctx context.Context, id int64) (domain.Question, error)
	ListQuestions(ctx context.Context, quizID int64) ([]domain.Question, error)
	DeleteQuestion(ctx context.Context, id int64) error
}

// OptionRepository gives direct access to single options.
type OptionRepository interface {
	GetOption(ctx context.Context, id int64) (domain.Option, error)
	UpdateOption(ctx context.Context, option domain.Option) (domain.Option, error)
	DeleteOption(ctx context.Context, id int64) error
}

// AttemptRepository stores write-once attempts. Reads fill in QuizTitle.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error)
	ListAttemptsByQuiz(ctx context.Context, quizID int64) ([]domain.Attempt, error)
	ListAttempts(ctx context.Context) ([]domain.Attempt, error)
}

// StudentRepository stores accounts. CreateStudent maps uniqueness violations to
// domain.ErrUsernameTaken / domain.ErrEmailTaken.
type StudentRepository interface {
	CreateStudent(ctx context.Context, student domain.Student) (domain.Student, error)
	FindStudentByUsername(ctx context.Context, username string) (domain.Student, bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListStudents(ctx context.Context) ([]domain.Student, error)
}

// AnswerKeyLoader builds a quiz's answer key from the backing store.
type AnswerKeyLoader interface {
	LoadAnswerKey(ctx context.Context, quizID int64) (domain.AnswerKey, error)
}

// AnswerKeyRepository serves answer keys to the grading workflow (usually cached).
// Invalidate is called before and after any write that changes a quiz's questions or options.
type AnswerKeyRepository interface {
	GetAnswerKey(ctx context.Context, quizID int64) (domain.AnswerKey, error)
	Invalidate(ctx context.Context, quizID int64) error
}
