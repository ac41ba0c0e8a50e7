package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelie-moura/terno-api/config"
	"github.com/atelie-moura/terno-api/middleware"
	"github.com/atelie-moura/terno-api/models"
	"github.com/atelie-moura/terno-api/services"
)

// UpdateSubStepRequest represents the request body for updating a sub-step.
// Status defaults to "completed"; sending "pending" reverts a completed step.
type UpdateSubStepRequest struct {
	Status   string  `json:"status" binding:"omitempty,oneof=pending completed"`
	Notes    string  `json:"notes"`
	PhotoKey *string `json:"photo_key"`
}

// AddSubStepRequest represents the request body for adding a manual extra step
type AddSubStepRequest struct {
	Name  string `json:"name" binding:"required"`
	Notes string `json:"notes"`
}

// ListSubSteps handles GET /api/v1/orders/:id/substeps - lists an order's
// checklist in order
func ListSubSteps(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	var steps []models.SubStep
	if err := db.Where("order_id = ?", orderID).Order("id").Find(&steps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list sub-steps",
			},
		})
		return
	}

	attachSubStepPhotoURLs(steps)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    steps,
	})
}

// UpdateSubStep handles PUT /api/v1/substeps/:id - completes a sub-step
// (recording employee, timestamp, notes and photo evidence) or reverts it to
// pending. Completing the last pending step finalizes the order.
func UpdateSubStep(c *gin.Context) {
	userName, err := middleware.GetUserName(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	subStepID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateSubStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	lifecycle := services.GetLifecycleService()

	var step *models.SubStep
	if req.Status == models.SubStepPending {
		step, err = lifecycle.ReopenSubStep(subStepID, userName)
	} else {
		step, err = lifecycle.CompleteSubStep(subStepID, userName, req.Notes, req.PhotoKey)
	}

	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SUBSTEP_NOT_FOUND",
					"message": "Sub-step not found",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update sub-step",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    step,
	})
}

// AddSubStep handles POST /api/v1/orders/:id/substeps - appends a manual
// extra step to an order's checklist
func AddSubStep(c *gin.Context) {
	userName, err := middleware.GetUserName(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddSubStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	step, err := services.GetLifecycleService().AddSubStep(orderID, req.Name, req.Notes, userName)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_NOT_FOUND",
					"message": "Order not found",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to add sub-step",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    step,
	})
}
