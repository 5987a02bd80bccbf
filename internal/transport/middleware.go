package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	apperrors "github.com/anime-shed/recycling-guide-go/internal/errors"
	"github.com/anime-shed/recycling-guide-go/internal/logger"
	"github.com/anime-shed/recycling-guide-go/internal/metrics"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

const requestIDHeader = "X-Request-ID"

// requestID reuses an upstream X-Request-ID or generates one, and stores it
// in the request context for log correlation
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// requestMetrics logs and counts every request once it has been handled
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		duration := time.Since(start)
		metrics.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), duration)

		logger.WithContext(c.Request.Context()).WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": duration.Milliseconds(),
			"ip":          c.ClientIP(),
		}).Info("Request handled")
	}
}

// rateLimiter applies one token bucket to everything behind it
func rateLimiter(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			metrics.RateLimitedTotal.Inc()
			c.Header("Retry-After", "1")
			respondError(c, http.StatusTooManyRequests, "too many requests", nil)
			return
		}
		c.Next()
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return apperrors.StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondAppError maps a service error onto a response. Messages of client
// errors are shown as-is; everything else gets internalMessage.
func respondAppError(c *gin.Context, err error, internalMessage string) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		respondError(c, determineStatusCode(err), internalMessage, err)
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation, apperrors.ErrorTypeInvalidInput, apperrors.ErrorTypeNotFound:
		respondError(c, appErr.StatusCode, appErr.Message, err)
	case apperrors.ErrorTypeTimeout:
		respondError(c, appErr.StatusCode, "request timed out", err)
	case apperrors.ErrorTypeCanceled:
		logger.WithContext(c.Request.Context()).WithError(err).Info("Client closed request")
		c.AbortWithStatus(appErr.StatusCode)
	default:
		respondError(c, appErr.StatusCode, internalMessage, err)
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	entry := logger.WithContext(c.Request.Context()).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   message,
		Message: http.StatusText(code),
	})
}
