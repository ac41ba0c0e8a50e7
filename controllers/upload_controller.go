package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelie-moura/terno-api/services"
	"github.com/atelie-moura/terno-api/utils"
)

// UploadPhoto handles POST /api/v1/uploads - stores a photo and returns its
// key along with a presigned URL. The key is what callers attach to sub-steps
// and employee profiles.
func UploadPhoto(c *gin.Context) {
	photoService := services.GetPhotoService()
	if photoService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_UNAVAILABLE",
				"message": "Photo storage is not configured",
			},
		})
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "A 'photo' file field is required",
			},
		})
		return
	}

	key, err := photoService.UploadPhoto(file)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": "Failed to store photo",
			},
		})
		return
	}

	url, err := photoService.GetPhotoURL(key)
	if err != nil {
		// The photo is stored; a broken presign should not fail the upload
		url = ""
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"key": key,
			"url": url,
		},
	})
}
