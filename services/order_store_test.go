package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atelie-moura/terno-api/models"
)

func TestGormOrderStore_CreateOrderIsAtomic(t *testing.T) {
	db := setupLifecycleTestDB(t)
	store := NewGormOrderStore(db)

	order := &models.Order{
		Code:           "T-100",
		Client:         "Carlos Mendes",
		ServiceType:    models.ServiceProduction,
		CurrentStage:   models.StageOrderReceived,
		DueDate:        time.Now().AddDate(0, 0, 14),
		DeliveryStatus: models.StatusOnTime,
	}

	err := store.CreateOrder(order, []string{"Cut", "Finishing"})
	assert.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Len(t, order.SubSteps, 2)

	steps, err := store.ListSubSteps(order.ID)
	assert.NoError(t, err)
	assert.Len(t, steps, 2)
	assert.Equal(t, order.ID, steps[0].OrderID)
}

func TestGormOrderStore_NotFound(t *testing.T) {
	db := setupLifecycleTestDB(t)
	store := NewGormOrderStore(db)

	_, err := store.GetOrder(42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetSubStep(42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.UpdateOrder(42, map[string]interface{}{"current_stage": "Cut"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.UpdateSubStep(42, map[string]interface{}{"status": models.SubStepCompleted})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormOrderStore_DuplicateFinalizationRecord(t *testing.T) {
	db := setupLifecycleTestDB(t)
	store := NewGormOrderStore(db)

	order := &models.Order{
		Code:           "T-200",
		Client:         "Ana Souza",
		ServiceType:    models.ServiceReadjustment,
		CurrentStage:   models.StageOrderReceived,
		DueDate:        time.Now().AddDate(0, 0, 5),
		DeliveryStatus: models.StatusOnTime,
	}
	assert.NoError(t, store.CreateOrder(order, []string{"Readjustment"}))

	first := &models.FinalizationRecord{
		OrderID:    order.ID,
		OrderCode:  order.Code,
		Client:     order.Client,
		TailorName: "Maria",
	}
	assert.NoError(t, store.InsertFinalizationRecord(first))

	// The unique index on order_id rejects a second record
	second := &models.FinalizationRecord{
		OrderID:    order.ID,
		OrderCode:  order.Code,
		Client:     order.Client,
		TailorName: "Pedro",
	}
	err := store.InsertFinalizationRecord(second)
	assert.ErrorIs(t, err, ErrDuplicateRecord)
}

func TestGormOrderStore_FindFinalizationRecordAbsent(t *testing.T) {
	db := setupLifecycleTestDB(t)
	store := NewGormOrderStore(db)

	rec, err := store.FindFinalizationRecord(42)
	assert.NoError(t, err)
	assert.Nil(t, rec)
}
