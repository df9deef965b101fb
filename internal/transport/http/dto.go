package http

import (
	"strconv"
	"time"

	"quiz-service/internal/app"
	"quiz-service/internal/domain"
)

// Wire shapes. Binding tags are validated by gin; messages live in validation.go.

type quizRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"required,max=255"`
	TimeLimit   *int   `json:"timeLimit" binding:"required,min=3"`
}

func (r quizRequest) toInput() domain.QuizInput {
	return domain.QuizInput{
		Title:       r.Title,
		Description: r.Description,
		TimeLimit:   *r.TimeLimit,
	}
}

type quizResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TimeLimit   int       `json:"timeLimit"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newQuizResponse(q domain.Quiz) quizResponse {
	return quizResponse{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		TimeLimit:   q.TimeLimit,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}

type optionRequest struct {
	OptionText string `json:"optionText" binding:"required,min=1,max=200"`
	IsCorrect  *bool  `json:"isCorrect" binding:"required"`
}

func (r optionRequest) toInput() domain.OptionInput {
	return domain.OptionInput{OptionText: r.OptionText, IsCorrect: *r.IsCorrect}
}

type questionRequest struct {
	QuestionText string          `json:"questionText" binding:"required,min=5,max=500"`
	QuestionType string          `json:"questionType" binding:"required"`
	Options      []optionRequest `json:"options" binding:"required,dive"`
}

func (r questionRequest) toInput() domain.NewQuestion {
	in := domain.NewQuestion{
		QuestionText: r.QuestionText,
		QuestionType: r.QuestionType,
		Options:      make([]domain.OptionInput, 0, len(r.Options)),
	}
	for _, opt := range r.Options {
		in.Options = append(in.Options, opt.toInput())
	}
	return in
}

type optionResponse struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"questionId"`
	OptionText string `json:"optionText"`
	IsCorrect  bool   `json:"isCorrect"`
}

func newOptionResponse(o domain.Option) optionResponse {
	return optionResponse{
		ID:         o.ID,
		QuestionID: o.QuestionID,
		OptionText: o.OptionText,
		IsCorrect:  o.IsCorrect,
	}
}

type questionResponse struct {
	ID           int64            `json:"id"`
	QuizID       int64            `json:"quizId"`
	QuestionText string           `json:"questionText"`
	QuestionType string           `json:"questionType"`
	Options      []optionResponse `json:"options"`
}

func newQuestionResponse(q domain.Question) questionResponse {
	resp := questionResponse{
		ID:           q.ID,
		QuizID:       q.QuizID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Options:      make([]optionResponse, 0, len(q.Options)),
	}
	for _, opt := range q.Options {
		resp.Options = append(resp.Options, newOptionResponse(opt))
	}
	return resp
}

type answerRequest struct {
	QuestionID       *int64 `json:"questionId" binding:"required"`
	SelectedOptionID *int64 `json:"selectedOptionId" binding:"required"`
}

type attemptRequest struct {
	QuizID      *int64          `json:"quizId" binding:"required"`
	StudentName string          `json:"studentName" binding:"required,min=3,max=100"`
	Answers     []answerRequest `json:"answers" binding:"dive"`
}

func (r attemptRequest) toSubmission() domain.Submission {
	sub := domain.Submission{
		QuizID:      *r.QuizID,
		StudentName: r.StudentName,
		Answers:     make([]domain.Answer, 0, len(r.Answers)),
	}
	for _, a := range r.Answers {
		sub.Answers = append(sub.Answers, domain.Answer{
			QuestionID:       *a.QuestionID,
			SelectedOptionID: *a.SelectedOptionID,
		})
	}
	return sub
}

type attemptResponse struct {
	ID             int64     `json:"id"`
	QuizID         int64     `json:"quizId"`
	StudentName    string    `json:"studentName"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CompletedAt    time.Time `json:"completedAt"`
	QuizTitle      string    `json:"quizTitle"`
	StudentID      string    `json:"studentId"`
	TimeTaken      string    `json:"timeTaken"`
}

func newAttemptResponse(a domain.Attempt) attemptResponse {
	return attemptResponse{
		ID:             a.ID,
		QuizID:         a.QuizID,
		StudentName:    a.StudentName,
		Score:          a.Score,
		TotalQuestions: a.TotalQuestions,
		CompletedAt:    a.CompletedAt,
		QuizTitle:      a.QuizTitle,
		StudentID:      strconv.FormatInt(a.ID, 10),
		TimeTaken:      app.TimeTakenUntracked,
	}
}

func newAttemptResponses(attempts []domain.Attempt) []attemptResponse {
	out := make([]attemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, newAttemptResponse(a))
	}
	return out
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type migrateRecord struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type studentResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

func newStudentResponse(s domain.Student) studentResponse {
	return studentResponse{ID: s.ID, Username: s.Username, Email: s.Email}
}

type accountResponse struct {
	studentResponse
	Message string `json:"message"`
}
