package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/site19/containment-backend/internal/apperr"
	"github.com/site19/containment-backend/internal/logger"
	"github.com/site19/containment-backend/internal/requestdata"
	"github.com/site19/containment-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLog := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLog, authService: authService}
}

// RequireAuth resolves the session token into the actor identity and aborts
// with 401 when there is no valid session.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			abortWith(c, apperr.Unauthenticated("missing session token"))
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			appErr := apperr.From(err)
			if appErr == nil {
				am.log.Error("Session resolution failed", "error", err)
				appErr = apperr.Unauthenticated("could not resolve session")
			}
			abortWith(c, appErr)
			return
		}
		rd := requestdata.GetRequestData(ctx)
		if rd == nil || rd.UserID == uuid.Nil {
			abortWith(c, apperr.Unauthenticated("could not resolve session"))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequirePermission gates a route on the access policy for the given
// operation. Must run after RequireAuth.
func (am *AuthMiddleware) RequirePermission(op services.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil {
			abortWith(c, apperr.Unauthenticated("missing session token"))
			return
		}
		if err := services.Authorize(rd.Role, op); err != nil {
			am.log.Warn("Operation denied", "username", rd.Username, "role", rd.Role, "operation", string(op))
			abortWith(c, apperr.From(err))
			return
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, appErr *apperr.Error) {
	c.AbortWithStatusJSON(appErr.Status, gin.H{
		"error": gin.H{"message": appErr.Error(), "code": appErr.Code},
	})
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	return ""
}
