package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"alerting-destinations/internal/logging"
	"alerting-destinations/internal/models"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// RequestIDMiddleware tags every request with an id, reusing the caller's.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func RequestLoggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		logger.WithField(requestIDKey, c.GetString(requestIDKey)).
			Infof("Request: %s %s, Status: %d, Latency: %v", method, path, status, latency)
	}
}

// RecoveryMiddleware turns panics into the standard error body.
func RecoveryMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithField(requestIDKey, c.GetString(requestIDKey)).Errorf("Panic recovered: %v", recovered)
		writeError(c, models.Internal("internal server error"))
	})
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Reason string `json:"reason"`
	Status int    `json:"status"`
}

// writeError renders err. Only StatusError messages reach the client; any
// other error is reported as a bare 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	reason := "internal server error"
	var se *models.StatusError
	if errors.As(err, &se) {
		status = se.Status
		reason = se.Message
	}
	if c.Request.Method == http.MethodHead {
		c.AbortWithStatus(status)
		return
	}
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{Reason: reason, Status: status}})
}
