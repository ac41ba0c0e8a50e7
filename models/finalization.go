package models

import (
	"time"
)

// FinalizationRecord is the append-only audit row written exactly once when
// an order is finalized. The unique index on OrderID is what makes
// finalization idempotent under concurrent sub-step completion.
type FinalizationRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;uniqueIndex" json:"order_id"`
	OrderCode  string    `gorm:"not null" json:"order_code"`
	Client     string    `gorm:"not null" json:"client"`
	TailorName string    `gorm:"not null" json:"tailor_name"` // employee who finalized the order
	Notes      string    `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for the FinalizationRecord model
func (FinalizationRecord) TableName() string {
	return "finalization_records"
}
