package middleware

import (
	"strconv"
	"time"

	"bank-loan-service/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AccessLog writes one structured line per request and feeds the HTTP metrics.
func AccessLog(l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			latency := time.Since(start)

			req := c.Request()
			status := c.Response().Status
			path := c.Path()
			if path == "" {
				path = req.URL.Path
			}
			metrics.HTTPRequests.WithLabelValues(path, req.Method, strconv.Itoa(status)).Inc()
			metrics.HTTPLatency.WithLabelValues(path, req.Method).Observe(latency.Seconds())

			fields := []zap.Field{
				zap.Int("status", status),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Duration("latency", latency),
				zap.String("client_ip", c.RealIP()),
			}
			if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
				fields = append(fields, zap.String("request_id", rid))
			}
			if err != nil {
				l.Error("HTTP", append(fields, zap.Error(err))...)
			} else {
				l.Info("HTTP", fields...)
			}
			return nil
		}
	}
}
