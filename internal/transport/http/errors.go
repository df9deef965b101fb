package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"quiz-service/internal/domain"
	"quiz-service/internal/logger"
)

const (
	msgUnexpected = "An unexpected error occurred."
	msgMalformed  = "Malformed request body."
	msgInvalidID  = "Invalid id."
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Status int      `json:"status"`
	Errors []string `json:"errors"`
}

// errorMessages holds the client-facing text for domain sentinels.
var errorMessages = []struct {
	err    error
	status int
	msg    string
}{
	{domain.ErrQuizNotFound, http.StatusNotFound, "Quiz not found"},
	{domain.ErrQuestionNotFound, http.StatusNotFound, "Question not found"},
	{domain.ErrOptionNotFound, http.StatusNotFound, "Option not found"},
	{domain.ErrUsernameTaken, http.StatusBadRequest, "Username already exists"},
	{domain.ErrEmailTaken, http.StatusBadRequest, "Email already exists"},
	{domain.ErrInvalidCredentials, http.StatusBadRequest, "Invalid credentials"},
}

func respondError(c *gin.Context, status int, messages ...string) {
	c.AbortWithStatusJSON(status, errorResponse{Status: status, Errors: messages})
}

// writeError translates service errors into HTTP responses. Unknown errors
// are logged and reported without detail.
func writeError(c *gin.Context, log *logger.Logger, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		respondError(c, http.StatusBadRequest, verr.Messages...)
		return
	}
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			respondError(c, m.status, m.msg)
			return
		}
	}
	log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, msgUnexpected)
}

// bindJSON decodes and validates the request body into dst.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return domain.NewValidationError(validationMessages(verrs)...)
	}
	return domain.NewValidationError(msgMalformed)
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(msgInvalidID)
	}
	return id, nil
}
