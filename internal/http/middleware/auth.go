package middleware

import (
	"net/http"
	"strings"

	"cabbooking/internal/domain"
	"cabbooking/internal/services"

	"github.com/gin-gonic/gin"
)

const adminKey = "admin"

// TokenParser validates an admin bearer token.
type TokenParser interface {
	Parse(token string) (services.AdminClaims, error)
}

// RequireAdmin rejects requests without a valid admin bearer token and puts
// the admin on the context.
func RequireAdmin(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		claims, err := parser.Parse(strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}
		c.Set(adminKey, domain.AdminContext{AdminID: claims.AdminID, Email: claims.Email, Role: claims.Role})
		c.Next()
	}
}

// RequireRoles only lets through admins whose role is in allowedRoles.
// It must run after RequireAdmin.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		admin, ok := GetAdmin(c)
		if !ok {
			abortUnauthorized(c, "admin session missing")
			return
		}
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(admin.Role))]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"ok":         false,
				"error":      domain.KindUnauthorized,
				"code":       "forbidden",
				"message":    "role not allowed",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}

// GetAdmin returns the authenticated admin set by RequireAdmin.
func GetAdmin(c *gin.Context) (domain.AdminContext, bool) {
	v, ok := c.Get(adminKey)
	if !ok {
		return domain.AdminContext{}, false
	}
	admin, ok := v.(domain.AdminContext)
	return admin, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"ok":         false,
		"error":      domain.KindUnauthorized,
		"code":       "unauthorized",
		"message":    message,
		"request_id": GetRequestID(c),
	})
}
