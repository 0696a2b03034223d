package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/traveller-reservation/internal/logger"
)

// RequestLogger writes one structured line per request to logger.HttpLogger.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo's error handler pick the status before we read it
				c.Error(err)
			}
			req := c.Request()
			res := c.Response()
			ev := logger.HttpLogger.Info()
			if res.Status >= 500 {
				ev = logger.HttpLogger.Error().Err(err)
			}
			ev.Str("method", req.Method).
				Str("path", c.Path()).
				Str("uri", req.RequestURI).
				Int("status", res.Status).
				Int64("bytes", res.Size).
				Str("remote_ip", c.RealIP()).
				Dur("latency", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
