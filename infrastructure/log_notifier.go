package infrastructure

import (
	"context"

	"dealer/domain/entities"

	log "github.com/sirupsen/logrus"
)

// LogNotifier is the fallback Notifier: it records deal updates in the
// structured log instead of pushing them to a messaging frontend.
type LogNotifier struct{}

// NewLogNotifier creates a new logging notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// NotifyDealUpdate logs the deal's current state
func (n *LogNotifier) NotifyDealUpdate(ctx context.Context, deal *entities.Deal) error {
	log.WithFields(log.Fields{
		"dealID": deal.ID,
		"status": deal.Status,
		"userID": deal.UserID,
		"chatID": deal.ChatID,
	}).Info("Deal updated")
	return nil
}
