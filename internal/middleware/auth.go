package middleware

import (
	"net/http"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/services"
)

const sessionContextKey = "session"

// AuthMiddleware verifies hosted-identity-provider ID tokens and resolves a
// marketplace session for the request.
type AuthMiddleware struct {
	auth     *firebaseauth.Client
	sessions *services.SessionService
	logger   *logrus.Logger
}

// NewAuthMiddleware creates the auth middleware. auth may be nil when the
// identity provider is not configured; protected routes then respond 503
// while public catalog routes stay up.
func NewAuthMiddleware(auth *firebaseauth.Client, sessions *services.SessionService, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, sessions: sessions, logger: logger}
}

// RequireUser verifies the bearer ID token and attaches the resolved
// session to the request context.
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.auth == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "identity provider is not configured"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}
		if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			c.Abort()
			return
		}

		token, err := m.auth.VerifyIDToken(c.Request.Context(), authHeader[7:])
		if err != nil {
			m.logger.WithError(err).Debug("ID token verification failed")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		email, _ := token.Claims["email"].(string)
		displayName, _ := token.Claims["name"].(string)
		session := m.sessions.ResolveSession(c.Request.Context(), token.UID, email, displayName)

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// GetSession retrieves the resolved session from the request context.
func GetSession(c *gin.Context) *services.Session {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return nil
	}
	session, _ := value.(*services.Session)
	return session
}
