package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"snapbook/internal/domain/auth"
	"snapbook/internal/pkg/response"
	"snapbook/internal/pkg/session"
)

// Authenticator resolves a bearer token to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (session.Session, error)
}

// JWTAuth requires a valid bearer token whose session has not been signed
// out. Websocket upgrades may pass the token as ?access_token since
// browsers cannot set headers on them.
func JWTAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code, msg := bearerToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, code, msg)
			return
		}

		sess, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrSessionExpired):
				response.Abort(c, http.StatusUnauthorized, "SESSION_EXPIRED", "session expired or signed out")
			case errors.Is(err, auth.ErrUnauthorized):
				response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")
			default:
				_ = c.Error(err)
				response.Abort(c, http.StatusInternalServerError, response.CodeInternalError, "internal server error")
			}
			return
		}

		session.Set(c, sess)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (token, code, msg string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			if t := c.Query("access_token"); t != "" {
				return t, "", ""
			}
		}
		return "", "AUTH_HEADER_MISSING", "authorization header is required"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "INVALID_AUTH_FORMAT", "authorization header must be: Bearer <token>"
	}
	return strings.TrimSpace(parts[1]), "", ""
}
