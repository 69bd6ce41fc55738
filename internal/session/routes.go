package session

import "github.com/gin-gonic/gin"

func RegisterRoutes(api *gin.RouterGroup, h *Handler) {
	api.POST("/admin/session/new", h.Create)
	api.DELETE("/admin/session/today", h.DeleteToday)
	api.GET("/session/today", h.GetToday)
	api.GET("/session/today/qr", h.QRCode)
}
