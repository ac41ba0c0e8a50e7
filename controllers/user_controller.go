package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelie-moura/terno-api/config"
	"github.com/atelie-moura/terno-api/middleware"
	"github.com/atelie-moura/terno-api/models"
	"github.com/atelie-moura/terno-api/services"
)

// CreateEmployeeRequest represents the request body for registering an employee
type CreateEmployeeRequest struct {
	Username  string     `json:"username" binding:"required"`
	Password  string     `json:"password" binding:"required,min=6"`
	Name      string     `json:"name" binding:"required"`
	Role      string     `json:"role" binding:"omitempty,oneof=admin employee"`
	Position  string     `json:"position"`
	BirthDate *time.Time `json:"birth_date"`
	Sex       string     `json:"sex"`
	HireDate  *time.Time `json:"hire_date"`
	PhotoKey  *string    `json:"photo_key"`
}

// UpdateEmployeeRequest represents the request body for updating an employee
type UpdateEmployeeRequest struct {
	Name      string     `json:"name"`
	Role      string     `json:"role" binding:"omitempty,oneof=admin employee"`
	Position  string     `json:"position"`
	BirthDate *time.Time `json:"birth_date"`
	Sex       string     `json:"sex"`
	HireDate  *time.Time `json:"hire_date"`
	PhotoKey  *string    `json:"photo_key"`
}

// completedStepEntry is one completed sub-step row in an employee's history
type completedStepEntry struct {
	Name        string     `json:"name"`
	CompletedAt *time.Time `json:"completed_at"`
	OrderCode   string     `json:"order_code"`
	Client      string     `json:"client"`
}

// CreateEmployee handles POST /api/v1/admin/employees - registers a new
// employee account (admin only)
func CreateEmployee(c *gin.Context) {
	var req CreateEmployeeRequest
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

	passwordHash, err := services.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "HASH_ERROR",
				"message": "Failed to hash password",
			},
		})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleEmployee
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         role,
		Position:     req.Position,
		BirthDate:    req.BirthDate,
		Sex:          req.Sex,
		HireDate:     req.HireDate,
		PhotoKey:     req.PhotoKey,
	}

	db := config.GetDB()
	if err := db.Create(&user).Error; err != nil {
		// Check for duplicate username (works with both PostgreSQL and SQLite)
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") ||
			strings.Contains(errMsg, "unique constraint") ||
			strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_EXISTS",
					"message": "A user with this username already exists",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create employee",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// ListEmployees handles GET /api/v1/employees - lists all employees by name
func ListEmployees(c *gin.Context) {
	db := config.GetDB()

	var users []models.User
	if err := db.Order("name").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list employees",
			},
		})
		return
	}

	attachUserPhotoURLs(users)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
	})
}

// GetEmployee handles GET /api/v1/employees/:id - fetches one employee
func GetEmployee(c *gin.Context) {
	employeeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, employeeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMPLOYEE_NOT_FOUND",
				"message": "Employee not found",
			},
		})
		return
	}

	users := []models.User{user}
	attachUserPhotoURLs(users)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users[0],
	})
}

// UpdateEmployee handles PUT /api/v1/admin/employees/:id - updates an
// employee's profile (admin only)
func UpdateEmployee(c *gin.Context) {
	employeeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateEmployeeRequest
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

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, employeeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMPLOYEE_NOT_FOUND",
				"message": "Employee not found",
			},
		})
		return
	}

	// Update fields if provided
	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Role != "" {
		updates["role"] = req.Role
	}
	if req.Position != "" {
		updates["position"] = req.Position
	}
	if req.Sex != "" {
		updates["sex"] = req.Sex
	}
	if req.BirthDate != nil {
		updates["birth_date"] = req.BirthDate
	}
	if req.HireDate != nil {
		updates["hire_date"] = req.HireDate
	}
	if req.PhotoKey != nil {
		updates["photo_key"] = req.PhotoKey
	}

	// If no fields to update, return current user
	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    user,
		})
		return
	}

	if err := db.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update employee",
			},
		})
		return
	}

	// Fetch updated user to return
	if err := db.First(&user, employeeID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch updated employee",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// DeleteEmployee handles DELETE /api/v1/admin/employees/:id - removes an
// employee account (admin only, never your own)
func DeleteEmployee(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
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

	employeeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if employeeID == userID {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CANNOT_DELETE_SELF",
				"message": "You cannot delete your own account",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, employeeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMPLOYEE_NOT_FOUND",
				"message": "Employee not found",
			},
		})
		return
	}

	if err := db.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete employee",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Employee " + user.Name + " deleted",
		},
	})
}

// GetEmployeeHistory handles GET /api/v1/employees/:id/history - the
// employee's production activity over the last 30 days
func GetEmployeeHistory(c *gin.Context) {
	employeeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, employeeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMPLOYEE_NOT_FOUND",
				"message": "Employee not found",
			},
		})
		return
	}

	since := time.Now().AddDate(0, 0, -30)

	var finalized []models.FinalizationRecord
	if err := db.Where("tailor_name = ? AND created_at >= ?", user.Name, since).
		Order("created_at DESC").
		Find(&finalized).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load finalized orders",
			},
		})
		return
	}

	var completedSteps []completedStepEntry
	err := db.Table("sub_steps").
		Select("sub_steps.name AS name, sub_steps.completed_at AS completed_at, orders.code AS order_code, orders.client AS client").
		Joins("JOIN orders ON orders.id = sub_steps.order_id").
		Where("sub_steps.employee = ? AND sub_steps.status = ? AND sub_steps.completed_at >= ?",
			user.Name, models.SubStepCompleted, since).
		Order("sub_steps.completed_at DESC").
		Scan(&completedSteps).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load completed sub-steps",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"employee":    user.Name,
			"period_days": 30,
			"stats": gin.H{
				"orders_finalized":    len(finalized),
				"sub_steps_completed": len(completedSteps),
			},
			"finalized_orders":    finalized,
			"completed_sub_steps": completedSteps,
		},
	})
}

// attachUserPhotoURLs fills the computed PhotoURL field on users with a
// profile photo
func attachUserPhotoURLs(users []models.User) {
	photoService := services.GetPhotoService()
	if photoService == nil {
		return
	}

	for i := range users {
		if users[i].PhotoKey == nil || *users[i].PhotoKey == "" {
			continue
		}
		if url, err := photoService.GetPhotoURL(*users[i].PhotoKey); err == nil && url != "" {
			users[i].PhotoURL = &url
		}
	}
}
