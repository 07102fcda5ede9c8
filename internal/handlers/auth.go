package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/site19/containment-backend/internal/apperr"
	"github.com/site19/containment-backend/internal/logger"
	"github.com/site19/containment-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, ah.log, apperr.Validation("invalid request body"))
		return
	}
	user, err := ah.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondError(c, ah.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. You can now log in.",
		"user":    user,
	})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, ah.log, apperr.Validation("invalid request body"))
		return
	}
	accessToken, user, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondError(c, ah.log, err)
		return
	}
	expiresIn := int(ah.authService.GetAccessTTL().Seconds())
	RespondOK(c, gin.H{
		"access_token": accessToken,
		"expires_in":   expiresIn,
		"user":         user,
	})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		RespondError(c, ah.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "You have been logged out."})
}
