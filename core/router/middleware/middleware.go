package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"realtor/core/config"
	"realtor/core/logger"
	"realtor/core/router"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in and out
const RequestIDHeader = "X-Request-ID"

// ApplyConfigurableMiddleware installs the default chain: recovery, request id
// and, when enabled, request logging and CORS. It also sets the router's
// trusted proxies and body limits.
func ApplyConfigurableMiddleware(r *router.Router, cfg *config.MiddlewareConfig, log logger.Logger) {
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("Ignoring TRUSTED_PROXIES", logger.Err(err))
	}
	r.SetBodyLimits(cfg.MaxBodyBytes, cfg.MaxMultipartBytes)

	r.Use(Recovery(log))
	r.Use(RequestID())

	if cfg.LoggingEnabled {
		r.Use(RequestLogger(log, cfg))
	}

	if cfg.CORSEnabled {
		r.Use(CORSMiddleware(cfg.CORSAllowedOrigins))
	}
}

// Recovery turns a panic into a 500 response
func Recovery(log logger.Logger) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic recovered",
						logger.String("panic", fmt.Sprint(rec)),
						logger.String("path", c.Request.URL.Path),
						logger.String("stack", string(debug.Stack())))
					if !c.Writer.Written() {
						err = c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
					}
				}
			}()
			return next(c)
		}
	}
}

// RequestID propagates or generates X-Request-ID
func RequestID() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) error {
			id := c.GetHeader(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set("request_id", id)
			c.Header(RequestIDHeader, id)
			return next(c)
		}
	}
}

// RequestLogger logs method, path, status and duration for every logged path
func RequestLogger(log logger.Logger, cfg *config.MiddlewareConfig) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) error {
			path := c.Request.URL.Path
			if !cfg.IsLoggingRequired(path) {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			log.Info("Request",
				logger.String("method", c.Request.Method),
				logger.String("path", path),
				logger.Int("status", c.Writer.Status()),
				logger.Duration("duration", time.Since(start)),
				logger.String("ip", c.ClientIP()),
				logger.String("request_id", c.GetString("request_id")),
			)
			return err
		}
	}
}

// CORSMiddleware allows the listed origins ("*" allows any) with credentials
func CORSMiddleware(origins []string) router.MiddlewareFunc {
	allowed := make(map[string]bool, len(origins))
	allowAll := false
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		if o != "" {
			allowed[o] = true
		}
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) error {
			origin := c.GetHeader("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
				c.Header("Vary", "Origin")
			}

			if c.Request.Method == http.MethodOptions {
				return c.Status(http.StatusNoContent)
			}
			return next(c)
		}
	}
}
