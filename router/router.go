package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RigelNana/studygen/handler"
	"github.com/RigelNana/studygen/metrics"
	"github.com/RigelNana/studygen/middleware"
	"github.com/RigelNana/studygen/service"
)

func Setup(auth service.AuthService, authHandler *handler.AuthHandler, fileHandler *handler.FileHandler, studySetHandler *handler.StudySetHandler) *gin.Engine {
	r := gin.Default()
	r.Use(metrics.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		authed := api.Group("")
		authed.Use(middleware.JWTAuth(auth))
		{
			authed.GET("/auth/user", authHandler.Me)

			authed.POST("/upload", fileHandler.Upload)
			authed.GET("/files", fileHandler.ListFiles)
			authed.GET("/files/:id", fileHandler.GetFile)
			authed.DELETE("/files/:id", fileHandler.DeleteFile)
			authed.POST("/files/:id/generate", fileHandler.Generate)

			authed.GET("/study-sets", studySetHandler.List)
			authed.POST("/study-sets", studySetHandler.Create)
			authed.GET("/study-sets/:id", studySetHandler.Get)
			authed.PUT("/study-sets/:id", studySetHandler.Update)
			authed.DELETE("/study-sets/:id", studySetHandler.Delete)
			authed.POST("/study-sets/:id/flashcards", studySetHandler.AddFlashcard)
			authed.POST("/study-sets/:id/quiz-questions", studySetHandler.AddQuizQuestion)
		}
	}
	return r
}
