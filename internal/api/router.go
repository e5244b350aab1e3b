package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mr1hm/zerostrike/internal/metrics"
)

// NewRouter builds the gin engine with recovery, metrics, CORS and the global
// rate limit in front of the handler's routes.
func NewRouter(h *Handler, rps int) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(RateLimitMiddleware(rps))

	h.RegisterRoutes(router)
	return router
}
