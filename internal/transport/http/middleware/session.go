package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"docuchat/internal/auth"
	"docuchat/internal/transport/http/response"
)

const ContextPrincipalKey = "principal"

// SessionVerifier authenticates one request from its credentials.
type SessionVerifier interface {
	Verify(ctx context.Context, sessionCookie, bearerToken string) (*auth.Principal, error)
}

// RequireSession authenticates every request via the session cookie, with
// a bearer ID token as fallback. All failures produce the same 401 body so
// callers cannot probe which factor failed.
func RequireSession(verifier SessionVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionCookie, _ := c.Cookie(cookieName)

		var bearer string
		const prefix = "Bearer "
		if header := strings.TrimSpace(c.GetHeader("Authorization")); strings.HasPrefix(header, prefix) {
			bearer = strings.TrimSpace(strings.TrimPrefix(header, prefix))
		}

		principal, err := verifier.Verify(c.Request.Context(), sessionCookie, bearer)
		if err != nil {
			response.Error(c, 401, response.CodeUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		c.Set(ContextPrincipalKey, principal)
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal set by
// RequireSession.
func PrincipalFromContext(c *gin.Context) (*auth.Principal, bool) {
	v, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return nil, false
	}
	principal, ok := v.(*auth.Principal)
	return principal, ok
}
