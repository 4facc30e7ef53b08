package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/eventx-studio/internal/logger"
)

// RequestLogger writes one line per request.  5xx responses and handler
// errors log at error level.
func RequestLogger(l logger.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			kv := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"remote_ip", v.RemoteIP,
				"user", currentUserID(c),
			}
			if v.RequestID != "" {
				kv = append(kv, "request_id", v.RequestID)
			}
			switch {
			case v.Error != nil:
				l.Error("request", append(kv, "error", v.Error)...)
			case v.Status >= 500:
				l.Error("request", kv...)
			default:
				l.Info("request", kv...)
			}
			return nil
		},
	})
}
