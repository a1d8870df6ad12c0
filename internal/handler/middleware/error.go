package middleware

import (
	"log/slog"
	"net/http"

	"rental-orchestrator/internal/handler/httperr"
	"rental-orchestrator/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last public error a handler recorded but did not write.
// Private errors never reach the caller.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		if pub := c.Errors.ByType(gin.ErrorTypePublic).Last(); pub != nil {
			if resp, ok := pub.Meta.(httperr.Response); ok {
				c.JSON(resp.Status, resp)
				return
			}
		}
		if status := c.Writer.Status(); status != http.StatusOK {
			c.Status(status)
			c.Writer.WriteHeaderNow()
			return
		}
		if len(c.Errors) > 0 {
			c.JSON(http.StatusInternalServerError, httperr.New(c, http.StatusInternalServerError, "Internal server error", nil))
		}
	}
}

// CustomRecovery turns a panic in any handler into a 500 and logs where it came from.
func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err := errs.Newf("panic: %v", r)
				slog.Error("recovered from panic",
					"error", err.Error(),
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c),
					"stack", errs.ExtractStackLines(err, 10),
				)
				httperr.Abort(c, http.StatusInternalServerError, "Internal server error")
			}
		}()
		c.Next()
	}
}
