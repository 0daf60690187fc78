// Package middleware provides request filters shared by every portal route.
// File: middleware/request.go
package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"school-activities/logger"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// requestIDKey is the gin context key holding the request id.
const requestIDKey = "requestID"

// maxRequestIDLength bounds ids accepted from clients.
const maxRequestIDLength = 64

// RequestID propagates the caller's X-Request-ID or generates a new one, and echoes it
// on the response.
// Usage:
//
//	router.Use(RequestID())
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, or "" outside that middleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger writes one line per request through the application logger.
// Static assets are logged at Debug.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		line := "RequestLogger: %s %s -> %d (%v) id=%s"
		args := []interface{}{c.Request.Method, path, c.Writer.Status(), time.Since(start), GetRequestID(c)}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error.Printf(line, args...)
		case strings.HasPrefix(path, "/static/"):
			logger.Debug.Printf(line, args...)
		default:
			logger.Info.Printf(line, args...)
		}
	}
}

// SecurityHeaders sets the response headers every page needs.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "same-origin")
		c.Next()
	}
}
