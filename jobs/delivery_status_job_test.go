package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atelie-moura/terno-api/models"
	"github.com/atelie-moura/terno-api/services"
)

func TestDeliveryStatusJob_StartRefreshesImmediately(t *testing.T) {
	store := services.NewMockOrderStore()
	lifecycle := services.NewOrderLifecycleService(store)

	// An order whose cached status no longer matches its due date
	order := &models.Order{
		Code:           "T-1",
		Client:         "Carlos Mendes",
		ServiceType:    models.ServiceProduction,
		CurrentStage:   models.StageOrderReceived,
		DueDate:        time.Now().AddDate(0, 0, -3),
		DeliveryStatus: models.StatusOnTime,
	}
	assert.NoError(t, store.CreateOrder(order, nil))

	job := NewDeliveryStatusJob(lifecycle)
	assert.NoError(t, job.Start())
	defer job.Stop()

	refreshed, err := store.GetOrder(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusLate, refreshed.DeliveryStatus)
}

func TestDeliveryStatusJob_StopIsSafe(t *testing.T) {
	store := services.NewMockOrderStore()
	job := NewDeliveryStatusJob(services.NewOrderLifecycleService(store))

	assert.NoError(t, job.Start())
	job.Stop()
	job.Stop()
}
