package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-service/internal/app"
	"quiz-service/internal/logger"
)

type QuizHandler struct {
	quizzes *app.QuizService
	log     *logger.Logger
}

func NewQuizHandler(quizzes *app.QuizService, log *logger.Logger) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, log: log}
}

func (h *QuizHandler) Create(c *gin.Context) {
	var req quizRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	quiz, err := h.quizzes.Create(c.Request.Context(), req.toInput())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, newQuizResponse(quiz))
}

func (h *QuizHandler) List(c *gin.Context) {
	quizzes, err := h.quizzes.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	out := make([]quizResponse, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, newQuizResponse(q))
	}
	c.JSON(http.StatusOK, out)
}

func (h *QuizHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	quiz, err := h.quizzes.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newQuizResponse(quiz))
}

func (h *QuizHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	var req quizRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	quiz, err := h.quizzes.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newQuizResponse(quiz))
}

func (h *QuizHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := h.quizzes.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
