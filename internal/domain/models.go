package domain

import "time"

// Quiz is a named collection of questions with a time limit in minutes.
type Quiz struct {
	ID          int64
	Title       string
	Description string
	TimeLimit   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// QuizInput carries the mutable quiz fields for create and update.
type QuizInput struct {
	Title       string
	Description string
	TimeLimit   int
}

// Question is a single prompt within a quiz.
type Question struct {
	ID           int64
	QuizID       int64
	QuestionText string
	QuestionType string
	Options      []Option
}

// Option is one selectable answer to a question.
type Option struct {
	ID         int64
	QuestionID int64
	OptionText string
	IsCorrect  bool
}

// OptionInput carries the mutable option fields.
type OptionInput struct {
	OptionText string
	IsCorrect  bool
}

// NewQuestion is a question to be authored together with its options.
type NewQuestion struct {
	QuestionText string
	QuestionType string
	Options      []OptionInput
}

// CorrectCount returns how many options are flagged correct.
func (q NewQuestion) CorrectCount() int {
	n := 0
	for _, opt := range q.Options {
		if opt.IsCorrect {
			n++
		}
	}
	return n
}

// Attempt is an immutable record of one graded submission.
type Attempt struct {
	ID             int64
	QuizID         int64
	QuizTitle      string
	StudentName    string
	Score          int
	TotalQuestions int
	CompletedAt    time.Time
}

// Answer is a single (question, selected option) pair from a submission.
type Answer struct {
	QuestionID       int64
	SelectedOptionID int64
}

// Submission is the input of the grading workflow.
type Submission struct {
	QuizID      int64
	StudentName string
	Answers     []Answer
}

// AnswerKey is the grading view of a quiz: its question ids and, for each
// question with at least one option flagged correct, the authoritative one.
type AnswerKey struct {
	QuizID      int64
	QuestionIDs []int64
	Correct     map[int64]int64
}

// TotalQuestions is the grading denominator.
func (k AnswerKey) TotalQuestions() int {
	return len(k.QuestionIDs)
}

// CorrectOption returns the authoritative correct option of a question.
func (k AnswerKey) CorrectOption(questionID int64) (int64, bool) {
	id, ok := k.Correct[questionID]
	return id, ok
}

// Student is a registered account. PasswordHash is never exposed on the wire.
type Student struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
}

// StudentInput carries registration or migration data with a plaintext password.
type StudentInput struct {
	Username string
	Email    string
	Password string
}

// LeaderboardEntry aggregates the attempts of one student name on a quiz.
type LeaderboardEntry struct {
	StudentName     string    `json:"studentName"`
	BestScore       int       `json:"bestScore"`
	TotalQuestions  int       `json:"totalQuestions"`
	Attempts        int       `json:"attempts"`
	LastCompletedAt time.Time `json:"lastCompletedAt"`
	BestScoreAt     time.Time `json:"-"`
}

// Leaderboard captures the ordered scoreboard for a quiz.
type Leaderboard struct {
	QuizID    int64              `json:"quizId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
