package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/phambaophuc/packshot-composer/internal/http/handlers"
	"github.com/phambaophuc/packshot-composer/internal/http/middleware"
)

type Router struct {
	generateHandler *handlers.GenerateHandler
	logger          *zap.Logger
}

func NewRouter(generateHandler *handlers.GenerateHandler, logger *zap.Logger) *Router {
	return &Router{
		generateHandler: generateHandler,
		logger:          logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.SecurityHeaders())

	router.POST("/", r.generateHandler.Generate)
	router.POST("/stream", r.generateHandler.GenerateStream)
	router.GET("/healthz", r.generateHandler.HealthCheck)

	return router
}
