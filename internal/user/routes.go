package user

import "github.com/gin-gonic/gin"

func RegisterRoutes(api *gin.RouterGroup, h *Handler) {
	api.POST("/auth/login", h.Login)

	admin := api.Group("/admin/users")
	{
		admin.POST("/add", h.Add)
		admin.GET("/all", h.List)
		admin.DELETE("/:id", h.Delete)
		admin.PUT("/:id/password", h.ChangePassword)
		admin.POST("/migrate-passwords", h.MigratePasswords)
	}

	users := api.Group("/users")
	{
		users.GET("/by-username", h.GetByUsername)
		users.GET("/:id", h.GetByID)
	}
}
