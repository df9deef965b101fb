package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-service/internal/app"
	"quiz-service/internal/domain"
	"quiz-service/internal/logger"
)

type StudentHandler struct {
	students *app.StudentService
	log      *logger.Logger
}

func NewStudentHandler(students *app.StudentService, log *logger.Logger) *StudentHandler {
	return &StudentHandler{students: students, log: log}
}

func (h *StudentHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	student, err := h.students.Register(c.Request.Context(), domain.StudentInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, accountResponse{studentResponse: newStudentResponse(student), Message: "Registration successful"})
}

func (h *StudentHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	student, err := h.students.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, accountResponse{studentResponse: newStudentResponse(student), Message: "Login successful"})
}

func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newStudentResponses(students))
}

// Migrate imports client-held accounts and returns the ones created.
func (h *StudentHandler) Migrate(c *gin.Context) {
	var records []migrateRecord
	if err := bindJSON(c, &records); err != nil {
		writeError(c, h.log, err)
		return
	}
	batch := make([]domain.StudentInput, 0, len(records))
	for _, r := range records {
		batch = append(batch, domain.StudentInput{Username: r.Username, Email: r.Email, Password: r.Password})
	}
	saved, err := h.students.Migrate(c.Request.Context(), batch)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newStudentResponses(saved))
}

func newStudentResponses(students []domain.Student) []studentResponse {
	out := make([]studentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, newStudentResponse(s))
	}
	return out
}
