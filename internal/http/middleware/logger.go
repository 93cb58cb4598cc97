package middleware

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
)

// Logger logs each request as one JSON object per line on stdout, with
// timestamps rendered in loc. Fields: ts, request_id, method, path, status,
// latency in milliseconds and, when a span is recording, trace_id/span_id so
// log lines can be joined with traces.
func Logger(loc *time.Location) fiber.Handler {
	return LoggerWithWriter(os.Stdout, loc)
}

// LoggerWithWriter is Logger writing to w instead of stdout.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	if loc == nil {
		loc = time.UTC
	}
	enc := json.NewEncoder(w)

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// Collected after the handler ran so status reflects the final response.
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		line := map[string]any{
			"ts":         time.Now().In(loc).Format(time.RFC3339Nano),
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"latency":    float64(time.Since(start).Milliseconds()),
		}
		if sc := trace.SpanContextFromContext(c.UserContext()); sc.IsValid() {
			line["trace_id"] = sc.TraceID().String()
			line["span_id"] = sc.SpanID().String()
		}
		_ = enc.Encode(line)

		return err
	}
}
