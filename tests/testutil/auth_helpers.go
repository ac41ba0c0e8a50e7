package testutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atelie-moura/terno-api/middleware"
)

// SignTestToken issues a real HS256 token carrying the given identity.
// A negative ttl produces an already-expired token, which is useful for
// exercising the middleware's rejection paths.
func SignTestToken(secret string, userID uint, name, role string, ttl time.Duration) (string, error) {
	claims := middleware.Claims{
		UserID: userID,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
