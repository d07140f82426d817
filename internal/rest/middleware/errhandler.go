package middleware

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/zeroechelon/outpost/internal/errors"
)

// ErrorHandler renders errors attached to the gin context into the
// standard error envelope, mapping the error mark onto an HTTP status.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			c.JSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
		}
	}
}
