package attendance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qrattendance/internal/apperror"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Submit reads username and token from the query string, falling back to the
// form body.
func (h *Handler) Submit(c *gin.Context) {
	username := param(c, "username")
	token := param(c, "token")
	resp, err := h.svc.Submit(c.Request.Context(), username, token)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Today(c *gin.Context) {
	roster, err := h.svc.TodayRoster(c.Request.Context())
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, roster)
}

func (h *Handler) ByUser(c *gin.Context) {
	logs, err := h.svc.LogsByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func param(c *gin.Context, key string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return c.PostForm(key)
}
