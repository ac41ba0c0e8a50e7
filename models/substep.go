package models

import (
	"time"
)

// Sub-step statuses. A sub-step starts pending and is completed by an
// employee; reverting a completed step to pending is allowed as a shop-floor
// correction.
const (
	SubStepPending   = "pending"
	SubStepCompleted = "completed"
)

// SubStep represents one checklist item within an order's workflow
type SubStep struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OrderID     uint       `gorm:"not null;index" json:"order_id"`
	Order       Order      `gorm:"foreignKey:OrderID" json:"-"`
	Name        string     `gorm:"not null" json:"name"`
	Status      string     `gorm:"not null;default:'pending'" json:"status"`
	Employee    string     `json:"employee"`                     // set when the step is completed
	CompletedAt *time.Time `json:"completed_at"`                 // non-nil iff Status is completed
	Notes       string     `gorm:"type:text" json:"notes"`
	PhotoKey    *string    `json:"photo_key"`                    // S3 key of the photo evidence
	PhotoURL    *string    `gorm:"-" json:"photo_url,omitempty"` // computed field, presigned URL
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the SubStep model
func (SubStep) TableName() string {
	return "sub_steps"
}

// IsCompleted reports whether the sub-step has been completed
func (s *SubStep) IsCompleted() bool {
	return s.Status == SubStepCompleted
}
