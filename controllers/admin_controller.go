package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atelie-moura/terno-api/config"
	"github.com/atelie-moura/terno-api/models"
	"github.com/atelie-moura/terno-api/services"
)

// ListNotifications handles GET /api/v1/admin/notifications - the most recent
// admin notifications, newest first
func ListNotifications(c *gin.Context) {
	db := config.GetDB()

	var notifications []models.AdminNotification
	if err := db.Order("created_at DESC").Limit(50).Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list notifications",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notifications,
	})
}

// ClearNotifications handles DELETE /api/v1/admin/notifications - removes all
// admin notifications
func ClearNotifications(c *gin.Context) {
	db := config.GetDB()

	result := db.Where("1 = 1").Delete(&models.AdminNotification{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to clear notifications",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"cleared": result.RowsAffected,
		},
	})
}

// RepairChecklists handles POST /api/v1/admin/orders/repair-checklists -
// backfills the checklist for orders that ended up with no sub-steps
func RepairChecklists(c *gin.Context) {
	lifecycle := services.GetLifecycleService()

	result, err := lifecycle.RepairChecklists()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REPAIR_FAILED",
				"message": "Failed to repair order checklists",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// PurgeProductionData handles DELETE /api/v1/admin/production-data - hard
// deletes every order, sub-step, finalization record and notification.
// Employee accounts are kept.
func PurgeProductionData(c *gin.Context) {
	db := config.GetDB()

	cleared := []string{"sub_steps", "finalization_records", "admin_notifications", "orders"}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("1 = 1").Delete(&models.SubStep{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("1 = 1").Delete(&models.FinalizationRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("1 = 1").Delete(&models.AdminNotification{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("1 = 1").Delete(&models.Order{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to purge production data",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "All production data removed",
			"cleared": cleared,
		},
	})
}
