package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "finhub/internal/errors"
	"finhub/internal/logger"
)

// ErrorHandler renders the last error a handler pushed with c.Error as the
// {"error":{"code","message"}} body. Binding errors become INVALID_INPUT with
// the binder's message. AppErrors keep their status, code and message; any
// other error is logged and reported as INTERNAL_ERROR.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		appErr := toAppError(last)
		if appErr.Internal != nil || appErr.StatusCode >= 500 {
			fields := []interface{}{
				"code", appErr.Code,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"request_id", RequestID(c),
			}
			if appErr.Internal != nil {
				fields = append(fields, "internal", appErr.Internal.Error())
			}
			logger.Get().Errorw("request failed", fields...)
		}

		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}

func toAppError(e *gin.Error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(e.Err, &appErr) {
		return appErr
	}
	if e.IsType(gin.ErrorTypeBind) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, e.Err.Error())
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, e.Err)
}
