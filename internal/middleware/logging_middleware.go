// Package middleware содержит HTTP-middleware для Gin: логирование и метрики
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/arcade-server/internal/logging"
)

// RequestLogger снабжает каждый HTTP-запрос trace-ID и пишет краткие логи
type RequestLogger struct{}

// NewRequestLogger создаёт middleware логирования запросов
func NewRequestLogger() *RequestLogger { return &RequestLogger{} }

// Handler возвращает gin.HandlerFunc для router.Use()
func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Берём trace-id из OpenTelemetry, если span уже создан
		span := trace.SpanFromContext(c.Request.Context())
		var traceID string
		if span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		} else {
			traceID = uuid.NewString()
		}
		c.Set("trace_id", traceID)

		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		logging.Info("[HTTP] %s %s %d %s trace=%s",
			c.Request.Method, path, c.Writer.Status(), time.Since(start), traceID)
	}
}
