package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const sessionContextKey = "session_id"

// generateJWT signs a token carrying the anonymous session ID.
func generateJWT(sessionID string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"session_id": sessionID,
		"exp":        time.Now().Add(72 * time.Hour).Unix(),
		"iss":        "popin-service",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// parseSessionID validates a token and extracts the session ID claim.
func parseSessionID(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, eris.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", eris.Wrap(err, "parse token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", eris.New("invalid token claims")
	}
	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return "", eris.New("token missing session_id")
	}
	return sessionID, nil
}

// GetSession mints an anonymous session ID and returns it with a JWT.
func (h *Handler) GetSession(c *gin.Context) {
	sessionID := uuid.New().String()

	token, err := generateJWT(sessionID, h.JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "session_id": sessionID})
}

// RequireSession extracts and validates the bearer token, storing the session
// ID in the request context for downstream handlers.
func (h *Handler) RequireSession(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}

	sessionID, err := parseSessionID(strings.TrimPrefix(authHeader, "Bearer "), h.JWTSecret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	c.Set(sessionContextKey, sessionID)
	c.Next()
}

// EndSession discards all proximity state for the session and clears its
// presence entry.
func (h *Handler) EndSession(c *gin.Context) {
	sessionID := c.GetString(sessionContextKey)

	h.Watcher.Reset(sessionID)
	if err := h.Storage.EndSession(sessionID); err != nil {
		h.log.Warn("failed to clear session presence", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"status": "session ended"})
}
