package services

import (
	"github.com/sirupsen/logrus"

	"github.com/vantagehr/benefits/modules/benefits/domain/batch"
	"github.com/vantagehr/benefits/pkg/eventbus"
)

// RegisterNotifications subscribes the batch lifecycle listeners. Today
// they log; mail or webhook delivery hangs off the same events.
func RegisterNotifications(bus eventbus.EventBus, log *logrus.Logger) {
	bus.Subscribe(func(e *batch.CompletedEvent) {
		log.WithFields(logrus.Fields{
			"batch_id": e.Batch.ID,
			"flow":     e.Batch.Flow,
			"action":   e.Batch.ActionType,
			"total":    e.Batch.TotalRecords,
			"inserted": e.Batch.InsertedCount,
			"failed":   e.Batch.FailedCount,
		}).Info("batch completed")
	})
	bus.Subscribe(func(e *batch.FailedEvent) {
		log.WithFields(logrus.Fields{
			"batch_id": e.Batch.ID,
			"reason":   e.Reason,
		}).Error("batch failed")
	})
}
