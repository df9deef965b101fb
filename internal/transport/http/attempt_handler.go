package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-service/internal/app"
	"quiz-service/internal/logger"
)

type AttemptHandler struct {
	attempts *app.AttemptService
	log      *logger.Logger
}

func NewAttemptHandler(attempts *app.AttemptService, log *logger.Logger) *AttemptHandler {
	return &AttemptHandler{attempts: attempts, log: log}
}

func (h *AttemptHandler) Submit(c *gin.Context) {
	var req attemptRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	attempt, err := h.attempts.SubmitAttempt(c.Request.Context(), req.toSubmission())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, newAttemptResponse(attempt))
}

func (h *AttemptHandler) ListByQuiz(c *gin.Context) {
	quizID, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	attempts, err := h.attempts.ListAttempts(c.Request.Context(), quizID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newAttemptResponses(attempts))
}

// Results lists every attempt across quizzes.
func (h *AttemptHandler) Results(c *gin.Context) {
	attempts, err := h.attempts.ListAllAttempts(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newAttemptResponses(attempts))
}

func (h *AttemptHandler) Leaderboard(c *gin.Context) {
	quizID, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	lb, err := h.attempts.Leaderboard(c.Request.Context(), quizID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lb)
}
