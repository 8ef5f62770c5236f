package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "patrimo/internal/errors"
	"patrimo/internal/logger"
)

// ErrorHandler renders errors attached to the Gin context as the standard
// JSON error envelope. AppErrors keep their code and status; anything else
// is logged in full and reported as a generic internal error so internal
// details never reach a client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		// The last error wins; earlier ones were superseded down the chain.
		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			logger.Get().Errorw("unexpected error",
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"message", appErr.Message,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}

		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}
