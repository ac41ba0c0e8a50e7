package models

import (
	"time"
)

// AdminNotification is one entry in the admin dashboard activity feed,
// written when a sub-step is completed or an order is finalized
type AdminNotification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"index" json:"order_id"`
	Employee  string    `json:"employee"`
	Message   string    `gorm:"not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the AdminNotification model
func (AdminNotification) TableName() string {
	return "admin_notifications"
}
