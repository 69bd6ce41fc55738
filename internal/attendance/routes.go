package attendance

import "github.com/gin-gonic/gin"

func RegisterRoutes(api *gin.RouterGroup, h *Handler) {
	g := api.Group("/attendance")
	g.POST("/submit", h.Submit)
	g.GET("/today", h.Today)
	g.GET("/by-user/:id", h.ByUser)
}
