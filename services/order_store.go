package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/atelie-moura/terno-api/models"
)

// OrderStore is the persistence collaborator used by the order lifecycle
// service. Implementations must return ErrNotFound for missing rows and
// ErrDuplicateRecord when a unique constraint rejects an insert.
type OrderStore interface {
	// CreateOrder persists the order together with one pending sub-step per
	// step name, as a single atomic unit. On success order.ID and
	// order.SubSteps are populated.
	CreateOrder(order *models.Order, stepNames []string) error
	GetOrder(id uint) (*models.Order, error)
	ListOrders() ([]models.Order, error)
	UpdateOrder(id uint, fields map[string]interface{}) (*models.Order, error)

	GetSubStep(id uint) (*models.SubStep, error)
	ListSubSteps(orderID uint) ([]models.SubStep, error)
	UpdateSubStep(id uint, fields map[string]interface{}) (*models.SubStep, error)
	InsertSubStep(step *models.SubStep) error

	// InsertFinalizationRecord appends the audit row for a finalized order.
	// At most one record may exist per order; a second insert returns
	// ErrDuplicateRecord.
	InsertFinalizationRecord(rec *models.FinalizationRecord) error
	// FindFinalizationRecord returns nil, nil when the order has no record
	FindFinalizationRecord(orderID uint) (*models.FinalizationRecord, error)

	InsertNotification(n *models.AdminNotification) error
}

// GormOrderStore implements OrderStore on top of a GORM database handle
type GormOrderStore struct {
	db *gorm.DB
}

// NewGormOrderStore creates an OrderStore backed by the given database
func NewGormOrderStore(db *gorm.DB) *GormOrderStore {
	return &GormOrderStore{db: db}
}

// CreateOrder inserts the order and its checklist in one transaction so a
// failed sub-step insert never leaves an order without its checklist
func (s *GormOrderStore) CreateOrder(order *models.Order, stepNames []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		steps := make([]models.SubStep, 0, len(stepNames))
		for _, name := range stepNames {
			steps = append(steps, models.SubStep{
				OrderID: order.ID,
				Name:    name,
				Status:  models.SubStepPending,
			})
		}

		if len(steps) > 0 {
			if err := tx.Create(&steps).Error; err != nil {
				return err
			}
		}

		order.SubSteps = steps
		return nil
	})
}

// GetOrder fetches one order by ID
func (s *GormOrderStore) GetOrder(id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &order, nil
}

// ListOrders returns all orders, newest first
func (s *GormOrderStore) ListOrders() ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrder applies the given fields and returns the updated order
func (s *GormOrderStore) UpdateOrder(id uint, fields map[string]interface{}) (*models.Order, error) {
	result := s.db.Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, translateGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetOrder(id)
}

// GetSubStep fetches one sub-step by ID
func (s *GormOrderStore) GetSubStep(id uint) (*models.SubStep, error) {
	var step models.SubStep
	if err := s.db.First(&step, id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &step, nil
}

// ListSubSteps returns an order's sub-steps in checklist order
func (s *GormOrderStore) ListSubSteps(orderID uint) ([]models.SubStep, error) {
	var steps []models.SubStep
	if err := s.db.Where("order_id = ?", orderID).Order("id").Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

// UpdateSubStep applies the given fields and returns the updated sub-step
func (s *GormOrderStore) UpdateSubStep(id uint, fields map[string]interface{}) (*models.SubStep, error) {
	result := s.db.Model(&models.SubStep{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, translateGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetSubStep(id)
}

// InsertSubStep adds a single sub-step to an existing order
func (s *GormOrderStore) InsertSubStep(step *models.SubStep) error {
	if err := s.db.Create(step).Error; err != nil {
		return translateGormError(err)
	}
	return nil
}

// InsertFinalizationRecord appends the audit row; the unique index on
// order_id turns a second insert into ErrDuplicateRecord
func (s *GormOrderStore) InsertFinalizationRecord(rec *models.FinalizationRecord) error {
	if err := s.db.Create(rec).Error; err != nil {
		return translateGormError(err)
	}
	return nil
}

// FindFinalizationRecord looks up the audit row for an order, nil if absent
func (s *GormOrderStore) FindFinalizationRecord(orderID uint) (*models.FinalizationRecord, error) {
	var rec models.FinalizationRecord
	err := s.db.Where("order_id = ?", orderID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// InsertNotification appends an entry to the admin activity feed
func (s *GormOrderStore) InsertNotification(n *models.AdminNotification) error {
	return s.db.Create(n).Error
}

// translateGormError maps driver errors onto the store's sentinel errors.
// The duplicate check matches on message text so it works with both
// PostgreSQL and SQLite.
func translateGormError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique") {
		return ErrDuplicateRecord
	}

	return err
}
