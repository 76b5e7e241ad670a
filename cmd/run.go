package cmd

import (
	"context"
	"fmt"
	"time"

	"dealer/api"
	"dealer/config"
	"dealer/database"
	"dealer/domain/services"
	"dealer/infrastructure"
	"dealer/repository"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the settlement engine
func Run(ctx context.Context) error {
	log.Info("Starting settlement engine...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize chain access
	gateway := infrastructure.NewTonGatewayClient(infrastructure.TonGatewayConfig{
		BaseURL: cfg.ChainGatewayURL,
		APIKey:  cfg.ChainAPIKey,
	})
	chain := infrastructure.NewRetryChainClient(gateway)

	// Initialize repositories outside the unit of work: claims and
	// cooldowns must not roll back with a settlement transaction
	usedTxRepo := repository.NewUsedTransactionRepository(db)
	cooldownRepo := repository.NewCooldownRepository(db)
	journalRepo := repository.NewJournalRepository(db)
	uowFactory := repository.NewUnitOfWorkFactory(db)

	// Initialize services
	verifier := services.NewPaymentService(chain, usedTxRepo, cfg.PaymentScanLimit, cfg.AmountTolerance)

	dealService := services.NewDealService(uowFactory, verifier, chain, services.DealConfig{
		HouseWallet:     cfg.WalletAddress,
		ProposalWindow:  cfg.ProposalWindow,
		PaymentWindow:   cfg.PaymentWindow,
		PaymentMaxAge:   cfg.PaymentMaxAge,
		VerifiedRecency: cfg.VerifiedRecency,
	})

	casinoService := services.NewCasinoService(uowFactory, verifier, chain,
		infrastructure.NewLocalDiceRoller(), cooldownRepo, services.CasinoConfig{
			HouseWallet:    cfg.WalletAddress,
			MinBetNano:     cfg.MinBetNano,
			MaxBetFraction: cfg.MaxBetFraction,
			HouseEdge:      cfg.HouseEdge,
			Cooldown:       cfg.CasinoCooldown,
			PaymentMaxAge:  cfg.PaymentMaxAge,
		})
	// Start the local HTTP API
	apiServer := api.NewServer(dealService, casinoService, cfg.APIPort)
	apiServer.Start()

	// Start background workers
	notifier := infrastructure.NewLogNotifier()
	stopReaper := infrastructure.StartExpiryReaper(ctx, dealService, cfg.ExpirySweepInterval)
	stopPoller := infrastructure.StartVerificationPoller(ctx, dealService, notifier, cfg.PollInterval)

	scheduler := infrastructure.NewScheduler(usedTxRepo, journalRepo, cfg.ClaimRetentionDays)
	scheduler.Start(ctx)

	// Wait for context cancellation
	log.Infof("Engine is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down engine...")
	stopPoller()
	stopReaper()
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Errorf("Error stopping API server: %v", err)
	}

	log.Info("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Info("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}
