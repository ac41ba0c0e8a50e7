package models

import (
	"math"
	"time"
)

// Delivery statuses derived from an order's due date
const (
	StatusOnTime    = "on_time"
	StatusAttention = "attention" // two days or less remaining
	StatusLate      = "late"
)

// DeriveStatus classifies an order's delivery status from its due date.
// Days remaining are rounded up, so a due date later today counts as zero
// full days left. Fewer than zero days is late, zero to two days is
// attention, anything beyond is on time.
func DeriveStatus(dueDate, now time.Time) string {
	daysRemaining := int(math.Ceil(dueDate.Sub(now).Hours() / 24))

	switch {
	case daysRemaining < 0:
		return StatusLate
	case daysRemaining <= 2:
		return StatusAttention
	default:
		return StatusOnTime
	}
}
