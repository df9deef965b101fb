package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-service/internal/domain"
)

// answerKeyQuery lists a quiz's questions with the lowest-id option flagged correct (NULL when none).
const answerKeyQuery = `
SELECT q.id,
       (SELECT o.id
          FROM options o
         WHERE o.question_id = q.id AND o.is_correct
         ORDER BY o.id
         LIMIT 1)
  FROM questions q
 WHERE q.quiz_id = $1
 ORDER BY q.id`

// AnswerKeyLoader loads answer keys straight from Postgres.
type AnswerKeyLoader struct {
	pool *pgxpool.Pool
}

func NewAnswerKeyLoader(pool *pgxpool.Pool) *AnswerKeyLoader {
	return &AnswerKeyLoader{pool: pool}
}

func (l *AnswerKeyLoader) LoadAnswerKey(ctx context.Context, quizID int64) (domain.AnswerKey, error) {
	var exists bool
	if err := l.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quizzes WHERE id = $1)`, quizID).Scan(&exists); err != nil {
		return domain.AnswerKey{}, fmt.Errorf("load quiz: %w", err)
	}
	if !exists {
		return domain.AnswerKey{}, domain.ErrQuizNotFound
	}

	rows, err := l.pool.Query(ctx, answerKeyQuery, quizID)
	if err != nil {
		return domain.AnswerKey{}, fmt.Errorf("load answer key: %w", err)
	}
	defer rows.Close()

	key := domain.AnswerKey{QuizID: quizID, QuestionIDs: []int64{}, Correct: make(map[int64]int64)}
	for rows.Next() {
		var questionID int64
		var correct *int64
		if err := rows.Scan(&questionID, &correct); err != nil {
			return domain.AnswerKey{}, fmt.Errorf("scan answer key: %w", err)
		}
		key.QuestionIDs = append(key.QuestionIDs, questionID)
		if correct != nil {
			key.Correct[questionID] = *correct
		}
	}
	if err := rows.Err(); err != nil {
		return domain.AnswerKey{}, fmt.Errorf("read answer key: %w", err)
	}
	return key, nil
}
