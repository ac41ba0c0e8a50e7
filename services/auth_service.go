package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/atelie-moura/terno-api/config"
	"github.com/atelie-moura/terno-api/middleware"
	"github.com/atelie-moura/terno-api/models"
)

// ErrInvalidCredentials is returned when the username is unknown or the
// password does not match. Callers get the same error either way so the
// login endpoint never reveals which half was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// TokenTTL is how long an issued access token stays valid
const TokenTTL = 24 * time.Hour

// AuthService authenticates employees and issues access tokens
type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAuthService creates a new auth service instance
func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
	}
}

// Authenticate checks a username/password pair against the users table and
// returns the matching user
func (s *AuthService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GenerateToken signs a 24h HS256 access token for the given user
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := middleware.Claims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// HashPassword hashes a plaintext password for storage
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
