package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-service/internal/domain"
)

// Store implements the app repositories on top of bun. Cascading deletes
// are enforced by the schema's foreign keys.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// Quizzes

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	rec := newQuizRecord(quiz)
	if _, err := s.db.NewInsert().Model(rec).Returning("*").Exec(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *Store) GetQuiz(ctx context.Context, id int64) (domain.Quiz, error) {
	rec := new(quizRecord)
	err := s.db.NewSelect().Model(rec).Where("qz.id = ?", id).Scan(ctx)
	if err != nil {
		return domain.Quiz{}, notFound(err, domain.ErrQuizNotFound, "select quiz")
	}
	return rec.toDomain(), nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var recs []*quizRecord
	if err := s.db.NewSelect().Model(&recs).Order("qz.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select quizzes: %w", err)
	}
	out := make([]domain.Quiz, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

func (s *Store) UpdateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	rec := newQuizRecord(quiz)
	res, err := s.db.NewUpdate().
		Model(rec).
		Column("title", "description", "time_limit", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("update quiz: %w", err)
	}
	if err := requireRows(res, domain.ErrQuizNotFound); err != nil {
		return domain.Quiz{}, err
	}
	return s.GetQuiz(ctx, quiz.ID)
}

func (s *Store) DeleteQuiz(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*quizRecord)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return requireRows(res, domain.ErrQuizNotFound)
}

func (s *Store) CountQuizzes(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().Model((*quizRecord)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count quizzes: %w", err)
	}
	return n, nil
}

// Questions

func (s *Store) CreateQuestion(ctx context.Context, quizID int64, in domain.NewQuestion) (domain.Question, error) {
	rec := &questionRecord{
		QuizID:       quizID,
		QuestionText: in.QuestionText,
		QuestionType: in.QuestionType,
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*quizRecord)(nil)).Where("qz.id = ?", quizID).Exists(ctx)
		if err != nil {
			return fmt.Errorf("check quiz: %w", err)
		}
		if !exists {
			return domain.ErrQuizNotFound
		}
		if _, err := tx.NewInsert().Model(rec).Returning("*").Exec(ctx); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}

		rec.Options = make([]*optionRecord, 0, len(in.Options))
		for _, opt := range in.Options {
			rec.Options = append(rec.Options, &optionRecord{
				QuestionID: rec.ID,
				OptionText: opt.OptionText,
				IsCorrect:  opt.IsCorrect,
			})
		}
		if len(rec.Options) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rec.Options).Returning("*").Exec(ctx); err != nil {
			return fmt.Errorf("insert options: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return rec.toDomain(), nil
}

func (s *Store) GetQuestion(ctx context.Context, id int64) (domain.Question, error) {
	rec := new(questionRecord)
	err := s.db.NewSelect().
		Model(rec).
		Relation("Options", orderOptions).
		Where("qn.id = ?", id).
		Scan(ctx)
	if err != nil {
		return domain.Question{}, notFound(err, domain.ErrQuestionNotFound, "select question")
	}
	return rec.toDomain(), nil
}

func (s *Store) ListQuestions(ctx context.Context, quizID int64) ([]domain.Question, error) {
	var recs []*questionRecord
	err := s.db.NewSelect().
		Model(&recs).
		Relation("Options", orderOptions).
		Where("qn.quiz_id = ?", quizID).
		Order("qn.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	out := make([]domain.Question, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*questionRecord)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return requireRows(res, domain.ErrQuestionNotFound)
}

func orderOptions(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("op.id ASC")
}

// Options

func (s *Store) GetOption(ctx context.Context, id int64) (domain.Option, error) {
	rec := new(optionRecord)
	if err := s.db.NewSelect().Model(rec).Where("op.id = ?", id).Scan(ctx); err != nil {
		return domain.Option{}, notFound(err, domain.ErrOptionNotFound, "select option")
	}
	return rec.toDomain(), nil
}

func (s *Store) UpdateOption(ctx context.Context, option domain.Option) (domain.Option, error) {
	rec := &optionRecord{
		ID:         option.ID,
		QuestionID: option.QuestionID,
		OptionText: option.OptionText,
		IsCorrect:  option.IsCorrect,
	}
	res, err := s.db.NewUpdate().
		Model(rec).
		Column("option_text", "is_correct").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Option{}, fmt.Errorf("update option: %w", err)
	}
	if err := requireRows(res, domain.ErrOptionNotFound); err != nil {
		return domain.Option{}, err
	}
	return s.GetOption(ctx, option.ID)
}

func (s *Store) DeleteOption(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*optionRecord)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete option: %w", err)
	}
	return requireRows(res, domain.ErrOptionNotFound)
}

// Attempts

func (s *Store) CreateAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	rec := &attemptRecord{
		QuizID:         attempt.QuizID,
		StudentName:    attempt.StudentName,
		Score:          attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		CompletedAt:    attempt.CompletedAt,
	}
	if _, err := s.db.NewInsert().Model(rec).Returning("*").Exec(ctx); err != nil {
		if isForeignKeyViolation(err) {
			return domain.Attempt{}, domain.ErrQuizNotFound
		}
		return domain.Attempt{}, fmt.Errorf("insert attempt: %w", err)
	}
	out := rec.toDomain()
	out.QuizTitle = attempt.QuizTitle
	return out, nil
}

func (s *Store) ListAttemptsByQuiz(ctx context.Context, quizID int64) ([]domain.Attempt, error) {
	return s.listAttempts(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("qa.quiz_id = ?", quizID)
	})
}

func (s *Store) ListAttempts(ctx context.Context) ([]domain.Attempt, error) {
	return s.listAttempts(ctx, func(q *bun.SelectQuery) *bun.SelectQuery { return q })
}

func (s *Store) listAttempts(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]domain.Attempt, error) {
	var recs []*attemptRecord
	q := s.db.NewSelect().Model(&recs).Relation("Quiz").Order("qa.id ASC")
	if err := filter(q).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select attempts: %w", err)
	}
	out := make([]domain.Attempt, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

// Students

func (s *Store) CreateStudent(ctx context.Context, student domain.Student) (domain.Student, error) {
	rec := &studentRecord{
		Username: student.Username,
		Email:    student.Email,
		Password: student.PasswordHash,
	}
	if _, err := s.db.NewInsert().Model(rec).Returning("*").Exec(ctx); err != nil {
		if taken := uniqueViolation(err); taken != nil {
			return domain.Student{}, taken
		}
		return domain.Student{}, fmt.Errorf("insert student: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *Store) FindStudentByUsername(ctx context.Context, username string) (domain.Student, bool, error) {
	rec := new(studentRecord)
	err := s.db.NewSelect().Model(rec).Where("st.username = ?", username).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Student{}, false, nil
	}
	if err != nil {
		return domain.Student{}, false, fmt.Errorf("select student: %w", err)
	}
	return rec.toDomain(), true, nil
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	ok, err := s.db.NewSelect().Model((*studentRecord)(nil)).Where("st.username = ?", username).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return ok, nil
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	ok, err := s.db.NewSelect().Model((*studentRecord)(nil)).Where("st.email = ?", email).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return ok, nil
}

func (s *Store) ListStudents(ctx context.Context) ([]domain.Student, error) {
	var recs []*studentRecord
	if err := s.db.NewSelect().Model(&recs).Order("st.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select students: %w", err)
	}
	out := make([]domain.Student, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

func notFound(err, sentinel error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireRows(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel
	}
	return nil
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// uniqueViolation maps the students table's unique constraints to domain errors.
func uniqueViolation(err error) error {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) || pgErr.Field('C') != codeUniqueViolation {
		return nil
	}
	switch pgErr.Field('n') {
	case "students_username_key":
		return domain.ErrUsernameTaken
	case "students_email_key":
		return domain.ErrEmailTaken
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == codeForeignKeyViolation
}
