// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file guards operator endpoints (cache invalidation) with HS256 bearer
// tokens. Tokens are minted out of band with the shared ADMIN_JWT_SECRET and
// must carry role "admin".
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the role claim value required by RequireAdmin.
const RoleAdmin = "admin"

var (
	errMissingToken = errors.New("missing bearer token")
	errNotAdmin     = errors.New("token lacks admin role")
)

// AdminClaims is the JWT payload accepted for operator calls.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SignAdminToken mints a token for subject with the admin role. It is used by
// tests and local tooling; production tokens may come from any HS256 issuer
// sharing the secret.
func SignAdminToken(secret, subject string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = subject
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{Role: RoleAdmin, RegisteredClaims: claims})
	return token.SignedString([]byte(secret))
}

// parseAdmin validates the Authorization header against secret.
func parseAdmin(secret, header string) (*AdminClaims, error) {
	raw, found := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	raw = strings.TrimSpace(raw)
	if !found || raw == "" {
		return nil, errMissingToken
	}

	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin {
		return claims, errNotAdmin
	}
	return claims, nil
}

// RequireAdmin rejects requests without a valid admin bearer token.
//
// An empty secret disables the check, which keeps local setups usable; the
// server logs a warning at startup in that case.
//
// Responses:
//
//	401 {"code":"unauthorized"} missing, malformed, expired or mis-signed token
//	403 {"code":"forbidden"}    valid token without role "admin"
func RequireAdmin(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		claims, err := parseAdmin(secret, c.GetHeader("Authorization"))
		switch {
		case errors.Is(err, errNotAdmin):
			abortAuth(c, http.StatusForbidden, "forbidden", "admin role required")
			return
		case err != nil:
			LoggerFrom(c).Warn().Err(err).Msg("admin token rejected")
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "valid admin token required")
			return
		}
		c.Set("userID", claims.Subject)
		c.Next()
	}
}

// AdminBypass marks requests that carry a valid admin token so the rate
// limiter lets them through. Requests without one continue unchanged.
// Install it before RateLimiter.Handler.
func AdminBypass(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret != "" && c.GetHeader("Authorization") != "" {
			if claims, err := parseAdmin(secret, c.GetHeader("Authorization")); err == nil {
				c.Set("userID", claims.Subject)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}

func abortAuth(c *gin.Context, status int, code, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="admin"`)
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       code,
		"message":    msg,
	})
}
