package infrastructure

import (
	"context"
	"time"

	"dealer/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// StartExpiryReaper starts a background worker that sweeps overdue open
// deals to expired.
// Returns a cleanup function to stop the worker gracefully.
func StartExpiryReaper(ctx context.Context, deals interfaces.DealService, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})

	sweep := func() {
		expired, err := deals.ExpireOverdueDeals(context.Background())
		if err != nil {
			log.Errorf("Error expiring overdue deals: %v", err)
			return
		}
		if expired > 0 {
			log.Infof("Expired %d overdue deals", expired)
		}
	}

	go func() {
		log.Info("Deal expiry reaper started")

		// Run immediately on startup
		sweep()

		for {
			select {
			case <-ctx.Done():
				log.Info("Deal expiry reaper shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Deal expiry reaper shutting down (stop requested)...")
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
	}
}

// StartVerificationPoller starts a background worker that re-attempts
// payment verification for claimed deals and announces the ones that
// become verified.
// Returns a cleanup function to stop the worker gracefully.
func StartVerificationPoller(ctx context.Context, deals interfaces.DealService, notifier interfaces.Notifier, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})

	poll := func() {
		verifiedIDs, err := deals.PollPendingVerifications(context.Background())
		if err != nil {
			log.Errorf("Error polling pending verifications: %v", err)
			// Fall through: verifiedIDs may hold a partial result
		}

		for _, id := range verifiedIDs {
			deal, err := deals.GetDeal(context.Background(), id)
			if err != nil {
				log.Errorf("Error loading verified deal %s: %v", id, err)
				continue
			}
			if err := notifier.NotifyDealUpdate(context.Background(), deal); err != nil {
				log.Errorf("Error notifying verified deal %s: %v", id, err)
			}
		}
	}

	go func() {
		log.Info("Payment verification poller started")

		for {
			select {
			case <-ctx.Done():
				log.Info("Payment verification poller shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Payment verification poller shutting down (stop requested)...")
				return
			case <-ticker.C:
				poll()
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
	}
}
