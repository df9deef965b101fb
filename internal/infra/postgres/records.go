package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"quiz-service/internal/domain"
)

type quizRecord struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description,notnull"`
	TimeLimit   int       `bun:"time_limit,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

func newQuizRecord(q domain.Quiz) *quizRecord {
	return &quizRecord{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		TimeLimit:   q.TimeLimit,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}

func (r *quizRecord) toDomain() domain.Quiz {
	return domain.Quiz{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		TimeLimit:   r.TimeLimit,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type questionRecord struct {
	bun.BaseModel `bun:"table:questions,alias:qn"`

	ID           int64           `bun:"id,pk,autoincrement"`
	QuizID       int64           `bun:"quiz_id,notnull"`
	QuestionText string          `bun:"question_text,notnull"`
	QuestionType string          `bun:"question_type,notnull"`
	Options      []*optionRecord `bun:"rel:has-many,join:id=question_id"`
}

func (r *questionRecord) toDomain() domain.Question {
	q := domain.Question{
		ID:           r.ID,
		QuizID:       r.QuizID,
		QuestionText: r.QuestionText,
		QuestionType: r.QuestionType,
		Options:      make([]domain.Option, 0, len(r.Options)),
	}
	for _, opt := range r.Options {
		q.Options = append(q.Options, opt.toDomain())
	}
	return q
}

type optionRecord struct {
	bun.BaseModel `bun:"table:options,alias:op"`

	ID         int64  `bun:"id,pk,autoincrement"`
	QuestionID int64  `bun:"question_id,notnull"`
	OptionText string `bun:"option_text,notnull"`
	IsCorrect  bool   `bun:"is_correct,notnull"`
}

func (r *optionRecord) toDomain() domain.Option {
	return domain.Option{
		ID:         r.ID,
		QuestionID: r.QuestionID,
		OptionText: r.OptionText,
		IsCorrect:  r.IsCorrect,
	}
}

type attemptRecord struct {
	bun.BaseModel `bun:"table:quiz_attempts,alias:qa"`

	ID             int64       `bun:"id,pk,autoincrement"`
	QuizID         int64       `bun:"quiz_id,notnull"`
	StudentName    string      `bun:"student_name,notnull"`
	Score          int         `bun:"score,notnull"`
	TotalQuestions int         `bun:"total_questions,notnull"`
	CompletedAt    time.Time   `bun:"completed_at,notnull"`
	Quiz           *quizRecord `bun:"rel:belongs-to,join:quiz_id=id"`
}

func (r *attemptRecord) toDomain() domain.Attempt {
	a := domain.Attempt{
		ID:             r.ID,
		QuizID:         r.QuizID,
		StudentName:    r.StudentName,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		CompletedAt:    r.CompletedAt,
	}
	if r.Quiz != nil {
		a.QuizTitle = r.Quiz.Title
	}
	return a
}

type studentRecord struct {
	bun.BaseModel `bun:"table:students,alias:st"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Username string `bun:"username,notnull"`
	Email    string `bun:"email,nullzero"`
	Password string `bun:"password,notnull"`
}

func (r *studentRecord) toDomain() domain.Student {
	return domain.Student{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.Password,
	}
}
