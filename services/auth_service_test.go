package services

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelie-moura/terno-api/config"
	"github.com/atelie-moura/terno-api/middleware"
	"github.com/atelie-moura/terno-api/models"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func TestAuthenticate(t *testing.T) {
	db := setupAuthTestDB(t)
	cfg := &config.Config{JWTSecret: "test-secret"}
	service := NewAuthService(db, cfg)

	passwordHash, err := HashPassword("correct-horse")
	assert.NoError(t, err)

	user := models.User{
		Username:     "joana",
		PasswordHash: passwordHash,
		Name:         "Joana Alves",
		Role:         models.RoleEmployee,
	}
	assert.NoError(t, db.Create(&user).Error)

	tests := []struct {
		name        string
		username    string
		password    string
		expectError error
	}{
		{
			name:     "Valid credentials",
			username: "joana",
			password: "correct-horse",
		},
		{
			name:        "Wrong password",
			username:    "joana",
			password:    "wrong",
			expectError: ErrInvalidCredentials,
		},
		{
			name:        "Unknown username",
			username:    "nobody",
			password:    "correct-horse",
			expectError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authenticated, err := service.Authenticate(tt.username, tt.password)

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, authenticated)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, user.ID, authenticated.ID)
			assert.Equal(t, "Joana Alves", authenticated.Name)
		})
	}
}

func TestGenerateToken(t *testing.T) {
	db := setupAuthTestDB(t)
	cfg := &config.Config{JWTSecret: "test-secret"}
	service := NewAuthService(db, cfg)

	user := &models.User{
		ID:   42,
		Name: "Maria Costa",
		Role: models.RoleAdmin,
	}

	tokenString, err := service.GenerateToken(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	// The token must round-trip through the middleware's claims type
	claims := &middleware.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "Maria Costa", claims.Name)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	// Two hashes of the same password differ but both verify
	other, err := HashPassword("s3cret")
	assert.NoError(t, err)
	assert.NotEqual(t, hash, other)
}
