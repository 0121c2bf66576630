package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/studybuddy-backend/internal/http/response"
	"github.com/yungbote/studybuddy-backend/internal/platform/ctxutil"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
	"github.com/yungbote/studybuddy-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// RequireAuth admits any holder of a valid access token.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !am.authenticate(c, http.StatusUnauthorized, "unauthorized") {
			return
		}
		c.Next()
	}
}

// RequirePermission rejects with 403 both unauthenticated callers and
// authenticated ones whose role lacks perm.
func (am *AuthMiddleware) RequirePermission(perm services.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !am.authenticate(c, http.StatusForbidden, "forbidden") {
			return
		}
		rd := ctxutil.GetRequestData(c.Request.Context())
		if !services.RoleHas(rd.Role, perm) {
			am.log.Warn("permission denied", "user_id", rd.UserID, "permission", string(perm))
			response.AbortError(c, http.StatusForbidden, "forbidden", errors.New("insufficient permissions"))
			return
		}
		c.Next()
	}
}

func (am *AuthMiddleware) authenticate(c *gin.Context, status int, code string) bool {
	tokenString := extractBearerToken(c)
	if tokenString == "" {
		response.AbortError(c, status, code, errors.New("missing or invalid token"))
		return false
	}
	ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
	if err != nil {
		response.AbortError(c, status, code, err)
		return false
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		response.AbortError(c, status, code, errors.New("missing or invalid token"))
		return false
	}
	c.Request = c.Request.WithContext(ctx)
	return true
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
