package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-service/internal/app"
	"quiz-service/internal/logger"
)

// QuestionHandler serves questions and their options.
type QuestionHandler struct {
	questions *app.QuestionService
	options   *app.OptionService
	log       *logger.Logger
}

func NewQuestionHandler(questions *app.QuestionService, options *app.OptionService, log *logger.Logger) *QuestionHandler {
	return &QuestionHandler{questions: questions, options: options, log: log}
}

func (h *QuestionHandler) Add(c *gin.Context) {
	quizID, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	var req questionRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	question, err := h.questions.AddQuestion(c.Request.Context(), quizID, req.toInput())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, newQuestionResponse(question))
}

func (h *QuestionHandler) List(c *gin.Context) {
	quizID, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	questions, err := h.questions.ListQuestions(c.Request.Context(), quizID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	out := make([]questionResponse, 0, len(questions))
	for _, q := range questions {
		out = append(out, newQuestionResponse(q))
	}
	c.JSON(http.StatusOK, out)
}

func (h *QuestionHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	question, err := h.questions.GetQuestion(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newQuestionResponse(question))
}

func (h *QuestionHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := h.questions.DeleteQuestion(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuestionHandler) GetOption(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	option, err := h.options.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newOptionResponse(option))
}

func (h *QuestionHandler) UpdateOption(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	var req optionRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	option, err := h.options.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newOptionResponse(option))
}

func (h *QuestionHandler) DeleteOption(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := h.options.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
