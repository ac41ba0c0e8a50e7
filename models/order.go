package models

import (
	"time"

	"gorm.io/gorm"
)

// Order stage labels. CurrentStage is free text mirroring the most recently
// touched sub-step; these two are the fixed endpoints of the lifecycle.
const (
	StageOrderReceived = "Order received"
	StageFinalized     = "Finalized"
)

// Order represents one garment production or service job (a "terno")
// tracked from intake to delivery
type Order struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Code             string         `gorm:"not null;index" json:"code"` // human-entered tracking code, not unique
	Client           string         `gorm:"not null" json:"client"`
	ServiceType      string         `gorm:"not null" json:"service_type"`
	DueDate          time.Time      `gorm:"not null" json:"due_date"`
	Notes            string         `gorm:"type:text" json:"notes"`
	CurrentStage     string         `gorm:"not null;default:'Order received'" json:"current_stage"`
	AssignedEmployee string         `json:"assigned_employee"`
	// DeliveryStatus is a cache of DeriveStatus(DueDate, now). The derived
	// value is authoritative; this column exists for reporting queries and is
	// refreshed by the delivery status job.
	DeliveryStatus string         `gorm:"not null;default:'on_time'" json:"delivery_status"`
	SubSteps       []SubStep      `gorm:"foreignKey:OrderID" json:"sub_steps,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsFinalized reports whether the order has reached its terminal stage
func (o *Order) IsFinalized() bool {
	return o.CurrentStage == StageFinalized
}
