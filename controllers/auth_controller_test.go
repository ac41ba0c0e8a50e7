package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atelie-moura/terno-api/config"
	"github.com/atelie-moura/terno-api/models"
	"github.com/atelie-moura/terno-api/services"
)

func TestLoginEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	config.SetConfig(&config.Config{JWTSecret: "test-secret"})

	passwordHash, err := services.HashPassword("correct-horse")
	assert.NoError(t, err)

	user := models.User{
		Username:     "joana",
		PasswordHash: passwordHash,
		Name:         "Joana Alves",
		Role:         models.RoleEmployee,
	}
	assert.NoError(t, db.Create(&user).Error)

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name: "Successful login returns token and user",
			requestBody: map[string]interface{}{
				"username": "joana",
				"password": "correct-horse",
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.NotEmpty(t, data["token"])

				userData := data["user"].(map[string]interface{})
				assert.Equal(t, "Joana Alves", userData["name"])

				// The password hash never leaves the server
				_, exposed := userData["password_hash"]
				assert.False(t, exposed)
			},
		},
		{
			name: "Wrong password",
			requestBody: map[string]interface{}{
				"username": "joana",
				"password": "wrong",
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "INVALID_CREDENTIALS",
		},
		{
			name: "Unknown username gets the same error",
			requestBody: map[string]interface{}{
				"username": "nobody",
				"password": "correct-horse",
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "INVALID_CREDENTIALS",
		},
		{
			name: "Missing password",
			requestBody: map[string]interface{}{
				"username": "joana",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/auth/login", Login)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}

			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}
