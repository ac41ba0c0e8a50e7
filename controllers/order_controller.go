package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelie-moura/terno-api/config"
	"github.com/atelie-moura/terno-api/middleware"
	"github.com/atelie-moura/terno-api/models"
	"github.com/atelie-moura/terno-api/services"
)

// CreateOrderRequest represents the request body for registering an order
type CreateOrderRequest struct {
	Code             string    `json:"code" binding:"required"`
	Client           string    `json:"client" binding:"required"`
	ServiceType      string    `json:"service_type" binding:"required"`
	DueDate          time.Time `json:"due_date" binding:"required"`
	Notes            string    `json:"notes"`
	AssignedEmployee string    `json:"assigned_employee"`
}

// FinalizeOrderRequest represents the request body for finalizing an order
type FinalizeOrderRequest struct {
	Notes string `json:"notes"`
}

// FinalizedOrderResponse is one entry of the finalized orders listing
type FinalizedOrderResponse struct {
	Order    models.Order              `json:"order"`
	Record   models.FinalizationRecord `json:"finalization_record"`
	PhotoURL *string                   `json:"photo_url,omitempty"`
}

// CreateOrder handles POST /api/v1/orders - registers a new order and its
// checklist. Admins may assign any employee; everyone else gets themselves.
func CreateOrder(c *gin.Context) {
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

	var req CreateOrderRequest
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

	assigned := userName
	if role, roleErr := middleware.GetUserRole(c); roleErr == nil && role == models.RoleAdmin && req.AssignedEmployee != "" {
		assigned = req.AssignedEmployee
	}

	order, err := services.GetLifecycleService().CreateOrder(services.CreateOrderInput{
		Code:             req.Code,
		Client:           req.Client,
		ServiceType:      req.ServiceType,
		DueDate:          req.DueDate,
		Notes:            req.Notes,
		AssignedEmployee: assigned,
	})
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": validationErr.Error(),
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - lists all orders, newest first.
// The delivery status is derived from the due date on every read; the stored
// column is only a cache.
func ListOrders(c *gin.Context) {
	db := config.GetDB()

	var orders []models.Order
	if err := db.Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list orders",
			},
		})
		return
	}

	now := time.Now()
	for i := range orders {
		if !orders[i].IsFinalized() {
			orders[i].DeliveryStatus = models.DeriveStatus(orders[i].DueDate, now)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id - fetches one order with its
// sub-steps and photo links
func GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Preload("SubSteps").First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if !order.IsFinalized() {
		order.DeliveryStatus = models.DeriveStatus(order.DueDate, time.Now())
	}
	attachSubStepPhotoURLs(order.SubSteps)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetServiceTypes handles GET /api/v1/service-types - lists the
// recognized service types for selection UIs
func GetServiceTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    models.ServiceTypes(),
	})
}

// FinalizeOrder handles PUT /api/v1/orders/:id/finalize - the administrative
// finalize. Idempotent: finalizing an already finalized order is a no-op
// that returns the order unchanged.
func FinalizeOrder(c *gin.Context) {
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

	// Body is optional for this endpoint
	var req FinalizeOrderRequest
	_ = c.ShouldBindJSON(&req)

	order, err := services.GetLifecycleService().FinalizeOrder(orderID, userName, req.Notes)
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
				"message": "Failed to finalize order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListFinalizedOrders handles GET /api/v1/finalized-orders - finalized
// orders with their audit record and the most recent sub-step photo
func ListFinalizedOrders(c *gin.Context) {
	db := config.GetDB()

	var records []models.FinalizationRecord
	if err := db.Order("created_at DESC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list finalized orders",
			},
		})
		return
	}

	photoService := services.GetPhotoService()
	response := make([]FinalizedOrderResponse, 0, len(records))
	for _, rec := range records {
		var order models.Order
		if err := db.First(&order, rec.OrderID).Error; err != nil {
			continue
		}

		entry := FinalizedOrderResponse{Order: order, Record: rec}

		// Latest photo evidence across the order's sub-steps, if any
		var step models.SubStep
		err := db.Where("order_id = ? AND photo_key IS NOT NULL AND photo_key <> ''", rec.OrderID).
			Order("completed_at DESC").
			First(&step).Error
		if err == nil && step.PhotoKey != nil && photoService != nil {
			if url, urlErr := photoService.GetPhotoURL(*step.PhotoKey); urlErr == nil && url != "" {
				entry.PhotoURL = &url
			}
		}

		response = append(response, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

// parseIDParam parses a numeric URL parameter, writing the error response
// itself when the value is not a valid ID
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid ID parameter",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// attachSubStepPhotoURLs fills the computed PhotoURL field on sub-steps that
// carry photo evidence
func attachSubStepPhotoURLs(steps []models.SubStep) {
	photoService := services.GetPhotoService()
	if photoService == nil {
		return
	}

	for i := range steps {
		if steps[i].PhotoKey == nil || *steps[i].PhotoKey == "" {
			continue
		}
		if url, err := photoService.GetPhotoURL(*steps[i].PhotoKey); err == nil && url != "" {
			steps[i].PhotoURL = &url
		}
	}
}
