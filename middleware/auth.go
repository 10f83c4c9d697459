package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/services"
	"github.com/learnclub/club-portal-backend/store"
	"github.com/learnclub/club-portal-backend/utils"
)

const (
	// SessionCookie giữ access token Supabase sau /auth/callback.
	SessionCookie = "sb-access-token"
	viewerKey     = "viewer"
)

type TokenVerifier interface {
	Verify(token string) (*utils.SupabaseClaims, error)
}

// bearerToken trả token của request; malformed=true khi có header nhưng không
// đúng dạng "Bearer <token>".
func bearerToken(c *gin.Context) (token string, malformed bool) {
	// Thử Authorization header trước
	authHeader := c.GetHeader("Authorization")

	// Nếu không có, thử X-Auth-Token (cho iOS)
	if authHeader == "" {
		authHeader = c.GetHeader("X-Auth-Token")
	}
	if authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1], false
		}
		return "", true
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, false
	}
	return "", false
}

// Identity dựng Viewer một lần cho mỗi request. Không có token -> anonymous,
// header sai dạng, token sai hoặc không tra được hồ sơ -> log warn rồi coi như anonymous.
func Identity(verifier TokenVerifier, st store.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, malformed := bearerToken(c)
		if malformed {
			log.Warn("malformed authorization header", zap.String("path", c.Request.URL.Path))
			c.Next()
			return
		}
		if token == "" {
			c.Next()
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			log.Warn("invalid session token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.Next()
			return
		}
		userID, _ := claims.UserID()

		user, err := st.GetUser(c.Request.Context(), userID)
		if err != nil {
			msg := "profile lookup failed"
			if errors.Is(err, apperrors.ErrNotFound) {
				msg = "session has no profile"
			}
			log.Warn(msg, zap.String("user_id", userID.String()), zap.Error(err))
			c.Next()
			return
		}

		c.Set(viewerKey, services.ViewerFromUser(user))
		c.Next()
	}
}

// CurrentViewer trả nil khi request không có phiên hợp lệ.
func CurrentViewer(c *gin.Context) *services.Viewer {
	v, ok := c.Get(viewerKey)
	if !ok {
		return nil
	}
	viewer, _ := v.(*services.Viewer)
	return viewer
}

func SetViewer(c *gin.Context, v *services.Viewer) {
	c.Set(viewerKey, v)
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentViewer(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    apperrors.ErrAuthenticationRequired.Error(),
				"redirect": "/login",
			})
			return
		}
		c.Next()
	}
}
