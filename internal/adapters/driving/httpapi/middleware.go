package httpapi

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/logger"
)

const (
	tenantKey         = "tenantID"
	sweepSecretHeader = "X-Sweep-Secret"
)

// AuthMiddleware requires a valid Bearer session token and stores the
// tenant ID in the context.
func AuthMiddleware(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, domain.ErrUnauthenticated, "authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, domain.ErrUnauthenticated, "invalid authorization header format")
			return
		}

		tenantID, err := tokens.Verify(parts[1])
		if err != nil {
			abort(c, http.StatusUnauthorized, domain.ErrUnauthenticated, "invalid or expired token")
			return
		}

		c.Set(tenantKey, tenantID)
		c.Next()
	}
}

// SweepSecretMiddleware guards the sweep trigger. An empty secret disables
// the route.
func SweepSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			abort(c, http.StatusForbidden, domain.ErrMissingConfig, "sweep trigger is disabled")
			return
		}
		given := c.GetHeader(sweepSecretHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			abort(c, http.StatusUnauthorized, domain.ErrUnauthenticated, "invalid sweep secret")
			return
		}
		c.Next()
	}
}

// requestLogger logs one line per request through the process logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.L().Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func abort(c *gin.Context, status int, err error, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: domain.ErrorCode(err)})
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSyncInProgress), errors.Is(err, domain.ErrCredentialMissing):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrMissingConfig):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request %s failed: %v", c.FullPath(), err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: domain.ErrorCode(err)})
}
