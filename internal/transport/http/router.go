package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"quiz-service/internal/logger"
)

type RouterConfig struct {
	Log             *logger.Logger
	QuizHandler     *QuizHandler
	QuestionHandler *QuestionHandler
	AttemptHandler  *AttemptHandler
	StudentHandler  *StudentHandler
	WSHandler       *WSHandler
	// TracingService enables otelgin spans under this service name when set.
	TracingService string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(recovery(cfg.Log))
	if cfg.TracingService != "" {
		router.Use(otelgin.Middleware(cfg.TracingService))
	}
	router.Use(RequestID(), RequestLogger(cfg.Log), CORS())

	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Resource not found")
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/ws/leaderboard", cfg.WSHandler.ServeLeaderboard)

	api := router.Group("/api")
	{
		api.POST("/quizzes", cfg.QuizHandler.Create)
		api.GET("/quizzes", cfg.QuizHandler.List)
		api.GET("/quizzes/:id", cfg.QuizHandler.Get)
		api.PUT("/quizzes/:id", cfg.QuizHandler.Update)
		api.DELETE("/quizzes/:id", cfg.QuizHandler.Delete)

		api.POST("/quizzes/:id/questions", cfg.QuestionHandler.Add)
		api.GET("/quizzes/:id/questions", cfg.QuestionHandler.List)
		api.GET("/questions/:id", cfg.QuestionHandler.Get)
		api.DELETE("/questions/:id", cfg.QuestionHandler.Delete)
		api.GET("/options/:id", cfg.QuestionHandler.GetOption)
		api.PUT("/options/:id", cfg.QuestionHandler.UpdateOption)
		api.DELETE("/options/:id", cfg.QuestionHandler.DeleteOption)

		api.POST("/quiz-attempts", cfg.AttemptHandler.Submit)
		api.GET("/quizzes/:id/attempts", cfg.AttemptHandler.ListByQuiz)
		api.GET("/quizzes/:id/leaderboard", cfg.AttemptHandler.Leaderboard)
		api.GET("/results", cfg.AttemptHandler.Results)

		api.POST("/students/register", cfg.StudentHandler.Register)
		api.POST("/students/login", cfg.StudentHandler.Login)
		api.GET("/students", cfg.StudentHandler.List)
		api.POST("/students/migrate", cfg.StudentHandler.Migrate)
	}

	return router
}
