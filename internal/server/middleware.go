package server

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/harborworks/chandlery/internal/actorcontext"
	userdomain "github.com/harborworks/chandlery/internal/user/domain"
)

const (
	HeaderActor = "X-User-ID"

	contextActorIDKey = "actor_id"
)

// ActorMiddleware resolves the acting user from the X-User-ID header and
// injects it into the request context. Identity verification is out of
// scope; the header is trusted the way an upstream gateway would assert it.
func (s *Server) ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderActor))
		if raw == "" {
			c.Next()
			return
		}

		actorID, err := snowflake.ParseString(raw)
		if err != nil || actorID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextActorIDKey, actorID.String())
		ctx := actorcontext.WithActorID(c.Request.Context(), actorID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin gates admin-only surfaces (approval, tariff catalog,
// status transitions) on the acting user's role.
func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := actorcontext.ActorIDFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if err := s.userSvc.RequireRole(c.Request.Context(), actorID, userdomain.RoleAdmin); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// OrderSubmitRateLimit throttles order submissions per buyer via the
// redis token bucket. A missing limiter passes everything through.
func (s *Server) OrderSubmitRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.orderLimiter.Enabled() {
			c.Next()
			return
		}

		actorID, ok := actorcontext.ActorIDFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		res, err := s.orderLimiter.AllowBuyer(c.Request.Context(), actorID.String())
		if err != nil {
			// Redis being down must not block order intake; the quota
			// guard still enforces the hard cap.
			c.Next()
			return
		}
		if !res.Allowed {
			if secs := int(res.RetryAfter.Seconds()) + 1; secs > 0 {
				c.Header("Retry-After", strconv.Itoa(secs))
			}
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		// One in-flight submission per buyer across instances. Lock
		// failures fall through for the same reason as redis errors.
		token, acquired, err := s.orderLimiter.TryLockBuyer(c.Request.Context(), actorID.String())
		if err == nil && !acquired {
			c.Header("Retry-After", "1")
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		if token != "" {
			defer func() {
				_ = s.orderLimiter.ReleaseBuyer(c.Request.Context(), actorID.String(), token)
			}()
		}
		c.Next()
	}
}
