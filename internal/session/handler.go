package session

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qrattendance/internal/apperror"
)

const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(c *gin.Context) {
	res, err := h.svc.Create(c.Request.Context())
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	if res.Created {
		c.JSON(http.StatusCreated, CreateSessionResponse{
			Message: "New session created successfully",
			Status:  StatusCreated,
			Session: ToResponse(res.Session),
		})
		return
	}
	c.JSON(http.StatusOK, CreateSessionResponse{
		Message: "Session already exists for today",
		Status:  StatusAlreadyExists,
		Session: ToResponse(res.Session),
	})
}

func (h *Handler) GetToday(c *gin.Context) {
	sess, err := h.svc.GetToday(c.Request.Context())
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ToResponse(sess))
}

func (h *Handler) DeleteToday(c *gin.Context) {
	if err := h.svc.DeleteToday(c.Request.Context()); err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Today's session deleted successfully"})
}

func (h *Handler) QRCode(c *gin.Context) {
	size := defaultQRSize
	if v := c.Query("size"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < minQRSize || parsed > maxQRSize {
			apperror.Respond(c, apperror.Validation("size must be between 64 and 1024"))
			return
		}
		size = parsed
	}

	png, err := h.svc.TodayQRCode(c.Request.Context(), size)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
