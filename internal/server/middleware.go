package server

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/greenleaf/internal/observability/context"
	"github.com/smallbiznis/greenleaf/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	headerAdminKey     = "X-Admin-Key"
	headerEdgeClientIP = "X-Nf-Client-Connection-Ip"
	headerClientIP     = "Client-Ip"
)

// clientIP prefers the address reported by the edge proxy.
func clientIP(c *gin.Context) string {
	for _, h := range []string{headerEdgeClientIP, headerClientIP} {
		if v := strings.TrimSpace(c.GetHeader(h)); v != "" {
			return v
		}
	}
	return c.ClientIP()
}

// isAdmin reports whether the request carries the configured admin key.
// An empty configured key never matches.
func (s *Server) isAdmin(c *gin.Context) bool {
	want := s.cfg.AdminKey
	got := strings.TrimSpace(c.GetHeader(headerAdminKey))
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.isAdmin(c) {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Request = c.Request.WithContext(obscontext.WithActor(c.Request.Context(), "admin"))
		c.Next()
	}
}

// RateLimit counts the request against the policy of class, keyed by client IP.
func (s *Server) RateLimit(class string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.guard.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		decision := s.guard.Check(ctx, class, clientIP(c))
		if !decision.Allowed {
			logger.FromContext(ctx).Warn("rate limit exceeded",
				zap.String("class", class),
				zap.Int("limit", decision.Limit),
				zap.Int("count", decision.Count),
			)
			s.obsMetrics.RecordRateLimitDenied(ctx, class, "window")
			c.Header("Retry-After", retryAfterSeconds(decision.RetryAfter))
			AbortWithError(c, ErrRateLimited)
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(ctx, class)
		c.Next()
	}
}

func retryAfterSeconds(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// adminPreflight answers CORS preflight for admin tools hosted elsewhere.
func adminPreflight(methods string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+headerAdminKey)
		c.Header("Access-Control-Allow-Methods", methods)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
