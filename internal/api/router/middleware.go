package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/job-gateway/internal/api/auth"
	"github.com/cuongbtq/job-gateway/internal/api/dto"
	"github.com/cuongbtq/job-gateway/internal/api/metrics"
	"github.com/gin-gonic/gin"
)

// ErrUnauthorized is the error body sent for a missing or invalid API key
const ErrUnauthorized = "Unauthorized: Invalid API Key"

// LoggerMiddleware logs HTTP requests with slog
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// Process request
		c.Next()

		latency := time.Since(start)

		logger.Info("HTTP Request",
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.String("ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.Duration("latency", latency),
			slog.Int("body_size", c.Writer.Size()),
		)

		for _, e := range c.Errors {
			logger.Error("Request error",
				slog.String("error", e.Error()),
				slog.Uint64("type", uint64(e.Type)),
			)
		}
	}
}

// APIKeyMiddleware rejects requests to protected prefixes that do not carry
// a configured API key. Only the first matching prefix is considered and
// paths matching no prefix pass through.
func APIKeyMiddleware(guard *auth.Guard, m *metrics.Metrics, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		prefix, allowed := guard.Allow(path, c.GetHeader(auth.HeaderAPIKey))
		if !allowed {
			m.Unauthorized()
			logger.Warn("Rejected request with invalid API key",
				slog.String("path", path),
				slog.String("prefix", prefix),
				slog.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: ErrUnauthorized})
			return
		}

		c.Next()
	}
}

// BodyLimitMiddleware caps the request body at limit bytes
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "Request body is too large"})
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()
	}
}
