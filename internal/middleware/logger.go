package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/logger"
)

// loggerKey is the gin context key the request-scoped logger is stored under.
const loggerKey = "logger"

// Logger logs every request with its request ID, status, and timing, and
// stashes a request-scoped child logger in the context for handlers.
//
// Successful PUTs to edit-session routes are logged at debug: field updates
// and drag moves arrive on every keystroke and pointer event, and at info
// level they drown out everything else.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestLogger := log.WithRequestID(GetRequestID(c))
		c.Set(loggerKey, requestLogger)

		c.Next()

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if c.Request.URL.RawQuery != "" {
			fields["query"] = c.Request.URL.RawQuery
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		status := c.Writer.Status()
		switch {
		case status >= http.StatusInternalServerError:
			requestLogger.Error("Request completed with server error", nil, fields)
		case status >= http.StatusBadRequest:
			requestLogger.Warn("Request completed with client error", fields)
		case isHighFrequencyEdit(c.Request.Method, c.Request.URL.Path):
			requestLogger.Debug("Request completed", fields)
		default:
			requestLogger.Info("Request completed", fields)
		}
	}
}

func isHighFrequencyEdit(method, path string) bool {
	return method == http.MethodPut && strings.Contains(path, "/sessions/")
}

// GetLogger returns the request-scoped logger set by Logger, or nil when the
// middleware did not run.
func GetLogger(c *gin.Context) *logger.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return nil
}
