package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelie-moura/terno-api/models"
	"github.com/atelie-moura/terno-api/services"
)

// buildPhotoUpload creates a multipart body with a single "photo" field
func buildPhotoUpload(t *testing.T, fieldName, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadPhotoEndpoint(t *testing.T) {
	setupControllerTestDB(t)

	mockPhoto := services.NewMockPhotoService()
	mockPhoto.SetAsMockForTesting()

	tests := []struct {
		name           string
		fieldName      string
		filename       string
		content        []byte
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:           "Successfully upload JPEG photo",
			fieldName:      "photo",
			filename:       "evidence.jpg",
			content:        []byte("fake JPEG content"),
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				key := data["key"].(string)
				assert.NotEmpty(t, key)
				assert.NotEmpty(t, data["url"])
				assert.True(t, mockPhoto.PhotoExists(key))
			},
		},
		{
			name:           "Reject unsupported format",
			fieldName:      "photo",
			filename:       "document.pdf",
			content:        []byte("fake PDF content"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_FILE_FORMAT",
		},
		{
			name:           "Reject wrong field name",
			fieldName:      "file",
			filename:       "evidence.jpg",
			content:        []byte("fake JPEG content"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "MISSING_FILE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/uploads", mockAuthMiddleware(1, "Joana Alves", models.RoleEmployee), UploadPhoto)

			body, contentType := buildPhotoUpload(t, tt.fieldName, tt.filename, tt.content)
			req, _ := http.NewRequest(http.MethodPost, "/uploads", body)
			req.Header.Set("Content-Type", contentType)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}

			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestUploadPhotoEndpoint_StorageUnavailable(t *testing.T) {
	setupControllerTestDB(t)
	services.SetPhotoService(nil)

	router := setupTestRouter()
	router.POST("/uploads", mockAuthMiddleware(1, "Joana Alves", models.RoleEmployee), UploadPhoto)

	body, contentType := buildPhotoUpload(t, "photo", "evidence.jpg", []byte("fake JPEG content"))
	req, _ := http.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "STORAGE_UNAVAILABLE")
}
