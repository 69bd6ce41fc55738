package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qrattendance/internal/apperror"
	"qrattendance/internal/credential"
	"qrattendance/internal/logging"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, ErrCredentialsRequired)
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Add(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, ErrMissingFields)
		return
	}
	resp, err := h.svc.Add(c.Request.Context(), req)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, ErrPasswordRequired)
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), c.Param("id"), req.Password); err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Password changed successfully"})
}

func (h *Handler) GetByUsername(c *gin.Context) {
	resp, err := h.svc.GetByUsername(c.Request.Context(), c.Query("username"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetByID(c *gin.Context) {
	resp, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) MigratePasswords(c *gin.Context) {
	n, err := h.svc.MigratePasswords(c.Request.Context())
	var partial *credential.PartialError
	if errors.As(err, &partial) {
		logging.FromContext(c.Request.Context()).Warn("password migration skipped accounts", zap.Error(err))
		c.JSON(http.StatusOK, MigratePasswordsResponse{Migrated: n, Skipped: len(partial.Failed)})
		return
	}
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, MigratePasswordsResponse{Migrated: n})
}
