package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mileusna/useragent"
	"github.com/rs/zerolog"

	"github.com/openbrewed/barback/pkg/utils"
)

// RequestIDKey is the gin context key under which the request id is
// stored. The id is echoed back in the X-Request-ID response header.
const RequestIDKey = "request_id"

// RequestLogger tags every request with an id and emits one structured
// log line when the handler chain finishes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		ua := useragent.Parse(c.Request.UserAgent())
		level := zerolog.InfoLevel
		if c.Writer.Status() >= 500 {
			level = zerolog.ErrorLevel
		}
		utils.GetLogger().Event(level).
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client", ua.Name).
			Bool("bot", ua.Bot).
			Msg("[HTTP]: request handled")
	}
}
