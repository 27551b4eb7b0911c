// Package middleware implements gin middlewares threading cross-cutting
// request state (request id, authentication, elevated configurables)
// into the gin.Context before a handler runs, grounded on the teacher's
// middleware package style (authz.go, recovery.go).
package middleware

import (
	"strings"

	"github.com/forbearing/flowquery/auth"
	"github.com/forbearing/flowquery/config"
	"github.com/forbearing/flowquery/logger"
	"github.com/forbearing/flowquery/response"
	"github.com/forbearing/flowquery/sqlerr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func duplicateConfigurableErr(name string) error {
	return sqlerr.InvalidInput("duplicate_configurable_header: %q set more than once", name)
}

const (
	ctxRequestID     = "request_id"
	ctxUser          = "user"
	ctxConfigurables = "configurables"
	ctxFeatureFlags  = "feature_flags"
)

// FeatureFlags parses the comma-separated x-feature-flags header into a
// set, readable via FeatureFlagsFrom. No component currently branches on
// flag membership; this only makes the header visible to one that does.
func FeatureFlags() gin.HandlerFunc {
	return func(c *gin.Context) {
		flags := make(map[string]bool)
		for _, f := range strings.Split(c.GetHeader("x-feature-flags"), ",") {
			f = strings.TrimSpace(f)
			if f != "" {
				flags[f] = true
			}
		}
		c.Set(ctxFeatureFlags, flags)
		c.Next()
	}
}

// FeatureFlagsFrom reads the parsed feature-flag set from gin context.
func FeatureFlagsFrom(c *gin.Context) map[string]bool {
	if v, ok := c.Get(ctxFeatureFlags); ok {
		if m, ok := v.(map[string]bool); ok {
			return m
		}
	}
	return map[string]bool{}
}

// RequestID assigns a UUID to every request, readable by response's
// envelope and by logging.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

// Authenticate resolves the bearer token (or x-api-key header) into a
// User via the configured Authenticator, defaulting to auth.Guest{} when
// absent, per spec section 4.5's "user or guest sentinel".
func Authenticate(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Set(ctxUser, auth.Guest{})
			c.Next()
			return
		}
		user, err := authenticator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.ResponseError(c, err)
			c.Abort()
			return
		}
		c.Set(ctxUser, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("x-api-key"); h != "" {
		return h
	}
	authz := c.GetHeader("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	return ""
}

// Configurables parses x-config-<name> headers into a map, rejecting
// duplicate normalizations of the same configurable name (spec section
// 6) and gating the whole set behind the user's access level (spec
// section 4.8 / SPEC_FULL.md's configurables threshold gating).
func Configurables() gin.HandlerFunc {
	return func(c *gin.Context) {
		configurables := make(map[string]string)
		for name, values := range c.Request.Header {
			lower := strings.ToLower(name)
			if !strings.HasPrefix(lower, "x-config-") {
				continue
			}
			key := strings.TrimPrefix(lower, "x-config-")
			if len(values) > 1 {
				response.ResponseError(c, duplicateConfigurableErr(key))
				c.Abort()
				return
			}
			if len(values) > 0 {
				configurables[key] = values[0]
			}
		}
		if len(configurables) > 0 {
			user, _ := c.Get(ctxUser)
			u, _ := user.(auth.User)
			level := auth.AccessGuest
			if u != nil {
				level = u.AccessLevel()
			}
			if int(level) < config.App.Auth.ConfigurablesAccessLevel {
				logger.Handler.Warnw("configurables rejected below access threshold", "level", level)
				configurables = map[string]string{}
			}
		}
		c.Set(ctxConfigurables, configurables)
		c.Next()
	}
}

// UserFrom reads the resolved auth.User from gin context, defaulting to
// Guest if Authenticate never ran (e.g. in unit tests).
func UserFrom(c *gin.Context) auth.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(auth.User); ok {
			return u
		}
	}
	return auth.Guest{}
}

// ConfigurablesFrom reads the parsed configurables map from gin context.
func ConfigurablesFrom(c *gin.Context) map[string]string {
	if v, ok := c.Get(ctxConfigurables); ok {
		if m, ok := v.(map[string]string); ok {
			return m
		}
	}
	return map[string]string{}
}
