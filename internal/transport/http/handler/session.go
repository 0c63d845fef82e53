package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/auth"
	"docuchat/internal/transport/http/middleware"
	"docuchat/internal/transport/http/response"
)

// SessionHandler exchanges identity-provider ID tokens for session cookies
// and serves the authenticated identity.
type SessionHandler struct {
	authService  *auth.Service
	cookieName   string
	cookieDomain string
	cookieSecure bool
	sessionTTLs  int // cookie max-age in seconds
}

type SessionLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

func NewSessionHandler(authService *auth.Service, cookieName, cookieDomain string, cookieSecure bool, sessionTTLSeconds int) *SessionHandler {
	return &SessionHandler{
		authService:  authService,
		cookieName:   cookieName,
		cookieDomain: cookieDomain,
		cookieSecure: cookieSecure,
		sessionTTLs:  sessionTTLSeconds,
	}
}

func (h *SessionHandler) Login(c *gin.Context) {
	var req SessionLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "idToken is required")
		return
	}

	token, principal, err := h.authService.Login(c.Request.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized")
			return
		}
		response.Error(c, http.StatusServiceUnavailable, response.CodeStorageError, "session creation failed")
		return
	}

	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.cookieName, token, h.sessionTTLs, "/", h.cookieDomain, h.cookieSecure, true)
	response.OK(c, gin.H{
		"status": "success",
		"user": gin.H{
			"subject": principal.Subject,
			"name":    principal.Name,
			"email":   principal.Email,
		},
	})
}

func (h *SessionHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(h.cookieName)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStorageError, "logout failed")
		return
	}

	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.cookieName, "", -1, "/", h.cookieDomain, h.cookieSecure, true)
	response.OK(c, gin.H{"status": "success"})
}

func (h *SessionHandler) Me(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized")
		return
	}
	response.OK(c, gin.H{
		"subject":    principal.Subject,
		"name":       principal.Name,
		"email":      principal.Email,
		"expires_at": principal.ExpiresAt,
	})
}
