// file: service/audit.go

package service

import (
	"context"
	"multibank-api/logger"
	"multibank-api/model"

	"github.com/sirupsen/logrus"
)

// ActivityEvent describes a completed ledger operation for the activity log.
type ActivityEvent struct {
	Action        string
	TransactionID int
	Reference     string
	Amount        float64
	Currency      model.Currency
}

// ActivityRecorder is the activity-audit collaborator. Implementations may
// fail; callers treat recording as best-effort and never propagate the error.
type ActivityRecorder interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// LogActivityRecorder writes activity events to the application log. A
// dedicated audit service can replace it behind the same interface.
type LogActivityRecorder struct{}

func NewLogActivityRecorder() *LogActivityRecorder {
	return &LogActivityRecorder{}
}

func (r *LogActivityRecorder) Record(_ context.Context, event ActivityEvent) error {
	logger.Log.WithFields(logrus.Fields{
		"action":         event.Action,
		"transaction_id": event.TransactionID,
		"reference":      event.Reference,
		"amount":         event.Amount,
		"currency":       event.Currency,
	}).Info("Activity recorded")
	return nil
}
