package infrastructure

import (
	"context"
	"time"

	"dealer/domain/interfaces"
	"dealer/domain/utils"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs housekeeping jobs: the anti-replay ledger prune and the
// pending-journal reconciliation report.
type Scheduler struct {
	cron        *cron.Cron
	usedTxRepo  interfaces.UsedTransactionRepository
	journalRepo interfaces.JournalRepository
	retention   time.Duration
}

// NewScheduler creates the housekeeping scheduler. retentionDays bounds how
// long claimed transaction hashes stay in the ledger; it must comfortably
// exceed the payment acceptance window or pruning would reopen replays.
func NewScheduler(usedTxRepo interfaces.UsedTransactionRepository, journalRepo interfaces.JournalRepository, retentionDays int) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		usedTxRepo:  usedTxRepo,
		journalRepo: journalRepo,
		retention:   time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Start registers and launches the jobs
func (s *Scheduler) Start(ctx context.Context) {
	// Daily claim prune at 04:00 UTC
	s.cron.AddFunc("0 4 * * *", func() {
		s.pruneClaims(ctx)
	})

	// Hourly reconciliation report
	s.cron.AddFunc("0 * * * *", func() {
		s.reportPendingJournal(ctx)
	})

	s.cron.Start()
	log.Info("Housekeeping scheduler started")
}

// Stop halts the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	log.Info("Housekeeping scheduler stopped")
}

func (s *Scheduler) pruneClaims(ctx context.Context) {
	opCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.retention)
	pruned, err := s.usedTxRepo.PruneOlderThan(opCtx, cutoff)
	if err != nil {
		log.WithError(err).Error("Claim prune failed")
		return
	}
	log.WithField("pruned", pruned).Info("Pruned old transaction claims")
}

// reportPendingJournal surfaces entries that started settling but never
// closed. These are payouts that need an operator's attention.
func (s *Scheduler) reportPendingJournal(ctx context.Context) {
	opCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-time.Hour)
	entries, err := s.journalRepo.ListPendingOlderThan(opCtx, cutoff)
	if err != nil {
		log.WithError(err).Error("Reconciliation report failed")
		return
	}
	if len(entries) == 0 {
		return
	}

	log.Warnf("%d journal entries awaiting reconciliation", len(entries))
	for _, entry := range entries {
		log.WithFields(log.Fields{
			"journalID": entry.ID,
			"kind":      entry.Kind,
			"action":    entry.Action,
			"userID":    entry.UserID,
			"amount":    utils.FormatTON(entry.AmountFromNano),
			"openedAt":  entry.Timestamp,
		}).Warn("Pending journal entry")
	}
}
