package httpapi

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// PlatformClaims identifies the voice-platform integration presenting
// the token.
type PlatformClaims struct {
	Platform string `json:"platform"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the HS256 bearer token on mutating and admin
// routes. With an empty secret the check is disabled (local dev only) and
// a warning is logged at startup.
type AuthMiddleware struct {
	secret []byte
	logger *zap.Logger
}

func NewAuthMiddleware(secret string, logger *zap.Logger) *AuthMiddleware {
	if secret == "" {
		logger.Warn("GATEWAY_JWT_SECRET not set, mutating endpoints are unauthenticated")
	}
	return &AuthMiddleware{secret: []byte(secret), logger: logger}
}

func (a *AuthMiddleware) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(a.secret) == 0 {
			next(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"message": "token mancante",
			})
			return
		}

		claims := &PlatformClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			a.logger.Warn("rejected gateway token", zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"message": "token non valido",
			})
			return
		}

		next(w, r)
	}
}
