package services

import (
	"sync"
	"time"

	"github.com/atelie-moura/terno-api/models"
)

// MockOrderStore is an in-memory OrderStore used in tests. It enforces the
// same contract as the GORM-backed store, including the one-record-per-order
// constraint on finalization records, without needing a database.
type MockOrderStore struct {
	mu sync.RWMutex

	orders        map[uint]*models.Order
	subSteps      map[uint]*models.SubStep
	finalizations map[uint]*models.FinalizationRecord // keyed by order ID
	notifications []models.AdminNotification

	nextOrderID   uint
	nextSubStepID uint
	nextRecordID  uint

	// BeforeInsertFinalization, when set, runs just before the insert takes
	// the store lock. Tests use it to simulate a concurrent writer winning
	// the finalization race.
	BeforeInsertFinalization func(store *MockOrderStore, rec *models.FinalizationRecord)
}

// NewMockOrderStore creates an empty in-memory store
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		orders:        make(map[uint]*models.Order),
		subSteps:      make(map[uint]*models.SubStep),
		finalizations: make(map[uint]*models.FinalizationRecord),
		nextOrderID:   1,
		nextSubStepID: 1,
		nextRecordID:  1,
	}
}

// CreateOrder stores the order and one pending sub-step per step name
func (m *MockOrderStore) CreateOrder(order *models.Order, stepNames []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	order.ID = m.nextOrderID
	m.nextOrderID++

	steps := make([]models.SubStep, 0, len(stepNames))
	for _, name := range stepNames {
		step := models.SubStep{
			ID:      m.nextSubStepID,
			OrderID: order.ID,
			Name:    name,
			Status:  models.SubStepPending,
		}
		m.nextSubStepID++
		steps = append(steps, step)
		stepCopy := step
		m.subSteps[step.ID] = &stepCopy
	}

	order.SubSteps = steps
	orderCopy := *order
	m.orders[order.ID] = &orderCopy
	return nil
}

// GetOrder fetches one order by ID
func (m *MockOrderStore) GetOrder(id uint) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	orderCopy := *order
	return &orderCopy, nil
}

// ListOrders returns all stored orders
func (m *MockOrderStore) ListOrders() ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	orders := make([]models.Order, 0, len(m.orders))
	for id := uint(1); id < m.nextOrderID; id++ {
		if order, ok := m.orders[id]; ok {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

// UpdateOrder applies the given fields to a stored order
func (m *MockOrderStore) UpdateOrder(id uint, fields map[string]interface{}) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}

	for field, value := range fields {
		switch field {
		case "current_stage":
			order.CurrentStage = value.(string)
		case "assigned_employee":
			order.AssignedEmployee = value.(string)
		case "delivery_status":
			order.DeliveryStatus = value.(string)
		}
	}

	orderCopy := *order
	return &orderCopy, nil
}

// GetSubStep fetches one sub-step by ID
func (m *MockOrderStore) GetSubStep(id uint) (*models.SubStep, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	step, ok := m.subSteps[id]
	if !ok {
		return nil, ErrNotFound
	}
	stepCopy := *step
	return &stepCopy, nil
}

// ListSubSteps returns an order's sub-steps in insertion order
func (m *MockOrderStore) ListSubSteps(orderID uint) ([]models.SubStep, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	steps := make([]models.SubStep, 0)
	for id := uint(1); id < m.nextSubStepID; id++ {
		if step, ok := m.subSteps[id]; ok && step.OrderID == orderID {
			steps = append(steps, *step)
		}
	}
	return steps, nil
}

// UpdateSubStep applies the given fields to a stored sub-step
func (m *MockOrderStore) UpdateSubStep(id uint, fields map[string]interface{}) (*models.SubStep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	step, ok := m.subSteps[id]
	if !ok {
		return nil, ErrNotFound
	}

	for field, value := range fields {
		switch field {
		case "status":
			step.Status = value.(string)
		case "employee":
			step.Employee = value.(string)
		case "notes":
			step.Notes = value.(string)
		case "completed_at":
			if value == nil {
				step.CompletedAt = nil
			} else {
				t := value.(time.Time)
				step.CompletedAt = &t
			}
		case "photo_key":
			key := value.(string)
			step.PhotoKey = &key
		}
	}

	stepCopy := *step
	return &stepCopy, nil
}

// InsertSubStep adds a single sub-step
func (m *MockOrderStore) InsertSubStep(step *models.SubStep) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[step.OrderID]; !ok {
		return ErrNotFound
	}

	step.ID = m.nextSubStepID
	m.nextSubStepID++
	stepCopy := *step
	m.subSteps[step.ID] = &stepCopy
	return nil
}

// InsertFinalizationRecord stores the audit row, rejecting a second record
// for the same order with ErrDuplicateRecord
func (m *MockOrderStore) InsertFinalizationRecord(rec *models.FinalizationRecord) error {
	if m.BeforeInsertFinalization != nil {
		m.BeforeInsertFinalization(m, rec)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.finalizations[rec.OrderID]; exists {
		return ErrDuplicateRecord
	}

	rec.ID = m.nextRecordID
	m.nextRecordID++
	recCopy := *rec
	m.finalizations[rec.OrderID] = &recCopy
	return nil
}

// FindFinalizationRecord looks up the audit row for an order, nil if absent
func (m *MockOrderStore) FindFinalizationRecord(orderID uint) (*models.FinalizationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.finalizations[orderID]
	if !ok {
		return nil, nil
	}
	recCopy := *rec
	return &recCopy, nil
}

// InsertNotification appends an entry to the notification feed
func (m *MockOrderStore) InsertNotification(n *models.AdminNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.notifications = append(m.notifications, *n)
	return nil
}

// Notifications returns a copy of the recorded notifications
func (m *MockOrderStore) Notifications() []models.AdminNotification {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.AdminNotification, len(m.notifications))
	copy(out, m.notifications)
	return out
}

// SeedRecord places a finalization record directly into the store. Tests use
// it to model an order finalized by another writer.
func (m *MockOrderStore) SeedRecord(rec *models.FinalizationRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = m.nextRecordID
	m.nextRecordID++
	recCopy := *rec
	m.finalizations[rec.OrderID] = &recCopy
}
