package api

import (
	"fmt"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"vault-data-api/internal/observability"
)

// recoverer turns handler panics into a 500 response.
func recoverer(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					perr, ok := r.(error)
					if !ok {
						perr = fmt.Errorf("%v", r)
					}
					logger.Error().
						Err(perr).
						Str("stack", string(debug.Stack())).
						Msg("panic recovered")
					err = internalError(c)
				}
			}()
			return next(c)
		}
	}
}

// requestLogging logs each request and records HTTP metrics by route template.
func requestLogging(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				// Let echo write the error response now so the status is known.
				c.Error(err)
			}

			latency := time.Since(start)
			req := c.Request()
			status := c.Response().Status

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			observability.RecordHTTPRequest(route, req.Method, strconv.Itoa(status), latency.Seconds())

			ev := logger.Debug()
			if status >= 500 {
				ev = logger.Warn()
			}
			ev.Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote", c.RealIP()).
				Int("status", status).
				Dur("latency", latency).
				Msg("request")

			return nil
		}
	}
}
