package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelie-moura/terno-api/config"
	"github.com/atelie-moura/terno-api/models"
)

// stageCount is one row of the orders-per-stage breakdown
type stageCount struct {
	Stage string `json:"stage"`
	Count int64  `json:"count"`
}

// employeeProduction is one row of the per-employee finalization counts
type employeeProduction struct {
	Name           string `json:"name"`
	OrdersFinished int64  `json:"orders_finished"`
}

// dayProduction is the number of orders finalized on a given day
type dayProduction struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// GetReports handles GET /api/v1/reports - aggregated production metrics for
// the dashboard
func GetReports(c *gin.Context) {
	db := config.GetDB()

	var totalOrders, activeOrders, finalizedOrders, lateOrders int64
	if err := db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		reportsDatabaseError(c)
		return
	}
	if err := db.Model(&models.Order{}).
		Where("current_stage <> ?", models.StageFinalized).
		Count(&activeOrders).Error; err != nil {
		reportsDatabaseError(c)
		return
	}
	if err := db.Model(&models.Order{}).
		Where("current_stage = ?", models.StageFinalized).
		Count(&finalizedOrders).Error; err != nil {
		reportsDatabaseError(c)
		return
	}
	if err := db.Model(&models.Order{}).
		Where("current_stage <> ? AND delivery_status = ?", models.StageFinalized, models.StatusLate).
		Count(&lateOrders).Error; err != nil {
		reportsDatabaseError(c)
		return
	}

	// Production per day over the last 7 days. Grouped in Go so the query
	// stays portable between PostgreSQL and SQLite.
	start := time.Now().AddDate(0, 0, -6)
	since := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	var records []models.FinalizationRecord
	if err := db.Where("created_at >= ?", since).Find(&records).Error; err != nil {
		reportsDatabaseError(c)
		return
	}

	countsByDay := make(map[string]int64)
	for _, record := range records {
		countsByDay[record.CreatedAt.Format("2006-01-02")]++
	}

	productionPerDay := make([]dayProduction, 0, 7)
	for i := 0; i < 7; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		productionPerDay = append(productionPerDay, dayProduction{
			Day:   day,
			Count: countsByDay[day],
		})
	}

	var stageCounts []stageCount
	if err := db.Model(&models.Order{}).
		Select("current_stage AS stage, COUNT(*) AS count").
		Where("current_stage <> ?", models.StageFinalized).
		Group("current_stage").
		Scan(&stageCounts).Error; err != nil {
		reportsDatabaseError(c)
		return
	}

	var perEmployee []employeeProduction
	if err := db.Table("users").
		Select("users.name AS name, COUNT(finalization_records.id) AS orders_finished").
		Joins("LEFT JOIN finalization_records ON finalization_records.tailor_name = users.name").
		Where("users.role <> ? AND users.deleted_at IS NULL", models.RoleAdmin).
		Group("users.name").
		Order("orders_finished DESC").
		Scan(&perEmployee).Error; err != nil {
		reportsDatabaseError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"totals": gin.H{
				"orders":    totalOrders,
				"active":    activeOrders,
				"finalized": finalizedOrders,
				"late":      lateOrders,
			},
			"production_per_day":   productionPerDay,
			"orders_per_stage":     stageCounts,
			"production_per_agent": perEmployee,
		},
	})
}

func reportsDatabaseError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "DATABASE_ERROR",
			"message": "Failed to build reports",
		},
	})
}
