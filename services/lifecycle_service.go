package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/atelie-moura/terno-api/models"
)

// CreateOrderInput carries the fields needed to register a new order
type CreateOrderInput struct {
	Code             string
	Client           string
	ServiceType      string
	DueDate          time.Time
	Notes            string
	AssignedEmployee string
}

// RepairResult summarizes a checklist repair run
type RepairResult struct {
	OrdersRepaired int `json:"orders_repaired"`
	StepsCreated   int `json:"steps_created"`
}

// OrderLifecycleService owns the order lifecycle rules: materializing the
// service-type checklist on creation, completing sub-steps, and finalizing
// an order exactly once when every sub-step is done.
type OrderLifecycleService interface {
	CreateOrder(input CreateOrderInput) (*models.Order, error)
	CompleteSubStep(subStepID uint, employee, notes string, photoKey *string) (*models.SubStep, error)
	ReopenSubStep(subStepID uint, employee string) (*models.SubStep, error)
	AddSubStep(orderID uint, name, notes, employee string) (*models.SubStep, error)
	FinalizeOrder(orderID uint, employee, notes string) (*models.Order, error)
	RepairChecklists() (*RepairResult, error)
	RefreshDeliveryStatuses(now time.Time) (int, error)
}

type orderLifecycleService struct {
	store OrderStore
	now   func() time.Time
}

var lifecycleServiceInstance OrderLifecycleService

// InitLifecycleService initializes the lifecycle service with its
// persistence collaborator
func InitLifecycleService(store OrderStore) OrderLifecycleService {
	lifecycleServiceInstance = NewOrderLifecycleService(store)
	return lifecycleServiceInstance
}

// GetLifecycleService returns the initialized lifecycle service instance
func GetLifecycleService() OrderLifecycleService {
	return lifecycleServiceInstance
}

// SetLifecycleService sets the lifecycle service instance (primarily for testing)
func SetLifecycleService(service OrderLifecycleService) {
	lifecycleServiceInstance = service
}

// NewOrderLifecycleService creates a lifecycle service using the given store
func NewOrderLifecycleService(store OrderStore) OrderLifecycleService {
	return &orderLifecycleService{
		store: store,
		now:   time.Now,
	}
}

// NewOrderLifecycleServiceWithClock creates a lifecycle service with an
// injectable clock, used by tests that need deterministic timestamps
func NewOrderLifecycleServiceWithClock(store OrderStore, now func() time.Time) OrderLifecycleService {
	return &orderLifecycleService{
		store: store,
		now:   now,
	}
}

// CreateOrder registers a new order in the "Order received" stage and
// materializes its full checklist atomically. Unknown service types get the
// production checklist, so every order ends up with at least one sub-step.
func (s *orderLifecycleService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.Code == "" {
		return nil, &ValidationError{Field: "code", Message: "tracking code is required"}
	}
	if input.Client == "" {
		return nil, &ValidationError{Field: "client", Message: "client name is required"}
	}
	if input.DueDate.IsZero() {
		return nil, &ValidationError{Field: "due_date", Message: "due date is required"}
	}

	now := s.now()
	order := &models.Order{
		Code:             input.Code,
		Client:           input.Client,
		ServiceType:      input.ServiceType,
		DueDate:          input.DueDate,
		Notes:            input.Notes,
		CurrentStage:     models.StageOrderReceived,
		AssignedEmployee: input.AssignedEmployee,
		DeliveryStatus:   models.DeriveStatus(input.DueDate, now),
	}

	steps := models.ChecklistFor(input.ServiceType)
	if err := s.store.CreateOrder(order, steps); err != nil {
		return nil, &StorageError{Op: "create order", Err: err}
	}

	return order, nil
}

// CompleteSubStep marks a sub-step as completed, recording who did it and
// when, mirrors the step onto the parent order's stage label, and finalizes
// the order when this was the last pending step. The updated sub-step is
// returned whether or not finalization was triggered.
func (s *orderLifecycleService) CompleteSubStep(subStepID uint, employee, notes string, photoKey *string) (*models.SubStep, error) {
	step, err := s.store.GetSubStep(subStepID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fields := map[string]interface{}{
		"status":       models.SubStepCompleted,
		"employee":     employee,
		"completed_at": now,
		"notes":        notes,
	}
	if photoKey != nil {
		fields["photo_key"] = *photoKey
	}

	updated, err := s.store.UpdateSubStep(subStepID, fields)
	if err != nil {
		return nil, err
	}

	// Mirror the last touched step onto the order's stage label
	if _, err := s.store.UpdateOrder(step.OrderID, map[string]interface{}{
		"current_stage":     step.Name,
		"assigned_employee": employee,
	}); err != nil {
		return nil, err
	}

	s.notify(step.OrderID, employee, fmt.Sprintf("%s completed %q", employee, step.Name))

	siblings, err := s.store.ListSubSteps(step.OrderID)
	if err != nil {
		return updated, &StorageError{Op: "list sub-steps", Err: err}
	}

	if allCompleted(siblings) {
		if _, err := s.FinalizeOrder(step.OrderID, employee, notes); err != nil {
			return updated, err
		}
	}

	return updated, nil
}

// ReopenSubStep reverts a completed sub-step to pending, a shop-floor
// correction. The completion timestamp and employee are cleared; the order's
// stage label moves back to this step. A finalization record already written
// for the order is append-only and is not removed.
func (s *orderLifecycleService) ReopenSubStep(subStepID uint, employee string) (*models.SubStep, error) {
	step, err := s.store.GetSubStep(subStepID)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateSubStep(subStepID, map[string]interface{}{
		"status":       models.SubStepPending,
		"employee":     "",
		"completed_at": nil,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.store.UpdateOrder(step.OrderID, map[string]interface{}{
		"current_stage":     step.Name,
		"assigned_employee": employee,
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// AddSubStep appends a manual extra step to an existing order's checklist
func (s *orderLifecycleService) AddSubStep(orderID uint, name, notes, employee string) (*models.SubStep, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "step name is required"}
	}

	if _, err := s.store.GetOrder(orderID); err != nil {
		return nil, err
	}

	step := &models.SubStep{
		OrderID:  orderID,
		Name:     name,
		Status:   models.SubStepPending,
		Notes:    notes,
		Employee: employee,
	}
	if err := s.store.InsertSubStep(step); err != nil {
		return nil, &StorageError{Op: "insert sub-step", Err: err}
	}

	return step, nil
}

// FinalizeOrder moves an order to the "Finalized" stage and appends its
// audit record. Calling it again, or concurrently from two last-step
// completions, is a no-op: the record's unique constraint makes the first
// writer win and everyone else observes the already-finalized order.
func (s *orderLifecycleService) FinalizeOrder(orderID uint, employee, notes string) (*models.Order, error) {
	order, err := s.store.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindFinalizationRecord(orderID)
	if err != nil {
		return nil, &StorageError{Op: "find finalization record", Err: err}
	}
	if existing != nil {
		// Already finalized; treated as success. Re-completing a reopened
		// step mirrors the step name onto the stage first, so put the stage
		// back without appending a second record.
		if order.CurrentStage != models.StageFinalized {
			return s.store.UpdateOrder(orderID, map[string]interface{}{
				"current_stage": models.StageFinalized,
			})
		}
		return order, nil
	}

	if notes == "" {
		notes = "Order finalized"
	}

	rec := &models.FinalizationRecord{
		OrderID:    orderID,
		OrderCode:  order.Code,
		Client:     order.Client,
		TailorName: employee,
		Notes:      notes,
	}
	if err := s.store.InsertFinalizationRecord(rec); err != nil {
		if errors.Is(err, ErrDuplicateRecord) {
			// Lost the race to a concurrent finalize; the winner's record stands
			return s.store.GetOrder(orderID)
		}
		return nil, &StorageError{Op: "insert finalization record", Err: err}
	}

	updated, err := s.store.UpdateOrder(orderID, map[string]interface{}{
		"current_stage":     models.StageFinalized,
		"assigned_employee": employee,
	})
	if err != nil {
		return nil, err
	}

	s.notify(orderID, employee, fmt.Sprintf("%s finalized order %s for %s", employee, order.Code, order.Client))

	return updated, nil
}

// RepairChecklists backfills the checklist for any order that ended up
// without sub-steps, using the same type lookup as order creation
func (s *orderLifecycleService) RepairChecklists() (*RepairResult, error) {
	orders, err := s.store.ListOrders()
	if err != nil {
		return nil, &StorageError{Op: "list orders", Err: err}
	}

	result := &RepairResult{}
	for i := range orders {
		steps, err := s.store.ListSubSteps(orders[i].ID)
		if err != nil {
			return nil, &StorageError{Op: "list sub-steps", Err: err}
		}
		if len(steps) > 0 {
			continue
		}

		for _, name := range models.ChecklistFor(orders[i].ServiceType) {
			step := &models.SubStep{
				OrderID: orders[i].ID,
				Name:    name,
				Status:  models.SubStepPending,
			}
			if err := s.store.InsertSubStep(step); err != nil {
				return nil, &StorageError{Op: "insert sub-step", Err: err}
			}
			result.StepsCreated++
		}
		result.OrdersRepaired++
	}

	return result, nil
}

// RefreshDeliveryStatuses recomputes the cached delivery status column for
// every non-finalized order and returns how many rows changed. The derived
// value stays authoritative; this only keeps reporting queries honest.
func (s *orderLifecycleService) RefreshDeliveryStatuses(now time.Time) (int, error) {
	orders, err := s.store.ListOrders()
	if err != nil {
		return 0, &StorageError{Op: "list orders", Err: err}
	}

	updatedCount := 0
	for i := range orders {
		if orders[i].IsFinalized() {
			continue
		}

		derived := models.DeriveStatus(orders[i].DueDate, now)
		if derived == orders[i].DeliveryStatus {
			continue
		}

		if _, err := s.store.UpdateOrder(orders[i].ID, map[string]interface{}{
			"delivery_status": derived,
		}); err != nil {
			return updatedCount, err
		}
		updatedCount++
	}

	return updatedCount, nil
}

// notify appends to the admin activity feed, best effort
func (s *orderLifecycleService) notify(orderID uint, employee, message string) {
	err := s.store.InsertNotification(&models.AdminNotification{
		OrderID:  orderID,
		Employee: employee,
		Message:  message,
	})
	if err != nil {
		log.Printf("warning: failed to record notification for order %d: %v", orderID, err)
	}
}

func allCompleted(steps []models.SubStep) bool {
	if len(steps) == 0 {
		return false
	}
	for i := range steps {
		if !steps[i].IsCompleted() {
			return false
		}
	}
	return true
}
