package apperror

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qrattendance/internal/logging"
)

// Respond writes err as a JSON error body. Errors that are not AppErrors are
// logged and reported as ErrInternal so driver details never reach clients.
func Respond(c *gin.Context, err error) {
	if appErr, ok := As(err); ok {
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	logging.FromContext(c.Request.Context()).Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(ErrInternal.HTTPStatus, ErrInternal)
}
