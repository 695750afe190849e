package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"cateringhub/internal/infra/security"
)

const principalContextKey = "cateringhub.principal"

// Dev headers let local callers act as a principal without a token.
const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
	headerVendorID = "X-Vendor-ID"
)

type TokenVerifier interface {
	Verify(raw string) (security.Principal, error)
}

type AuthMiddleware struct {
	Tokens     TokenVerifier
	DevHeaders bool
	Logger     *slog.Logger
}

// Handle attaches the caller's principal when a valid credential is present.
// Routes decide for themselves whether a principal is required.
func (m AuthMiddleware) Handle(c *gin.Context) {
	if token := extractBearerToken(c.GetHeader("Authorization")); token != "" && m.Tokens != nil {
		p, err := m.Tokens.Verify(token)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("token validation failed", "error", err)
			}
			c.Next()
			return
		}
		setPrincipal(c, p)
		c.Next()
		return
	}
	if m.DevHeaders {
		if p, ok := principalFromHeaders(c); ok {
			setPrincipal(c, p)
		}
	}
	c.Next()
}

func principalFromHeaders(c *gin.Context) (security.Principal, bool) {
	p := security.Principal{
		UserID:   strings.TrimSpace(c.GetHeader(headerUserID)),
		Role:     security.Role(strings.ToLower(strings.TrimSpace(c.GetHeader(headerUserRole)))),
		VendorID: strings.TrimSpace(c.GetHeader(headerVendorID)),
	}
	if p.UserID == "" {
		return security.Principal{}, false
	}
	if p.Role == "" {
		p.Role = security.RoleConsumer
	}
	return p, true
}

func setPrincipal(c *gin.Context, p security.Principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (security.Principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return security.Principal{}, false
	}
	p, ok := val.(security.Principal)
	return p, ok
}

// requireRole writes 401/403 and returns false when the caller may not proceed.
// An empty role admits any authenticated principal.
func requireRole(c *gin.Context, role security.Role) (security.Principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return security.Principal{}, false
	}
	if role != "" && p.Role != role {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return security.Principal{}, false
	}
	if role == security.RoleVendor && p.VendorID == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return security.Principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
