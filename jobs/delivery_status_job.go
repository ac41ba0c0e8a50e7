package jobs

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/atelie-moura/terno-api/services"
)

// DeliveryStatusJob periodically recomputes the cached delivery status of
// every active order so list views stay accurate as due dates approach.
type DeliveryStatusJob struct {
	lifecycle services.OrderLifecycleService
	cron      *cron.Cron
}

// NewDeliveryStatusJob creates the hourly delivery status refresh job.
func NewDeliveryStatusJob(lifecycle services.OrderLifecycleService) *DeliveryStatusJob {
	return &DeliveryStatusJob{
		lifecycle: lifecycle,
		cron:      cron.New(),
	}
}

// Start schedules the refresh to run at the top of every hour. The first
// refresh runs immediately so a restarted server does not serve stale
// statuses for up to an hour.
func (j *DeliveryStatusJob) Start() error {
	if err := j.refresh(); err != nil {
		log.Printf("Delivery status refresh failed: %v", err)
	}

	_, err := j.cron.AddFunc("0 * * * *", func() {
		if err := j.refresh(); err != nil {
			log.Printf("Delivery status refresh failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	log.Println("Delivery status job started (running hourly)")
	return nil
}

// Stop stops the scheduled refresh.
func (j *DeliveryStatusJob) Stop() {
	j.cron.Stop()
	log.Println("Delivery status job stopped")
}

func (j *DeliveryStatusJob) refresh() error {
	updated, err := j.lifecycle.RefreshDeliveryStatuses(time.Now())
	if err != nil {
		return err
	}
	if updated > 0 {
		log.Printf("Delivery status refresh updated %d order(s)", updated)
	}
	return nil
}
