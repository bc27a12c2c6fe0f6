package api

import "github.com/gin-gonic/gin"

// NewRouter wires the engine endpoints onto a gin router.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", h.healthz)

	sessions := router.Group("/sessions")
	{
		sessions.POST("", h.createSession)
		sessions.GET("/:id", h.getSession)
		sessions.DELETE("/:id", h.endSession)
		sessions.POST("/:id/select", h.selectQuestions)
		sessions.POST("/:id/skip", h.skipQuestion)
	}

	facets := router.Group("/facets")
	{
		facets.GET("/:kind", h.facetValues)
		facets.GET("/:kind/counts", h.facetCounts)
	}

	return router
}
