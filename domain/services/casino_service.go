package services

import (
	"context"
	"fmt"
	"time"

	"dealer/domain/entities"
	"dealer/domain/interfaces"
	"dealer/domain/utils"

	log "github.com/sirupsen/logrus"
)

// CasinoConfig is the immutable tuning for the wager settlement pipeline
type CasinoConfig struct {
	// HouseWallet is the bankroll address wagers are paid into and payouts
	// are sent from
	HouseWallet string

	// MinBetNano is the smallest accepted wager
	MinBetNano int64

	// MaxBetFraction caps a single wager as a fraction of the bankroll
	MaxBetFraction float64

	// HouseEdge is the fraction of every wager diverted into the jackpot
	HouseEdge float64

	// Cooldown is the minimum interval between two bets from one user
	Cooldown time.Duration

	// PaymentMaxAge bounds how old a wager payment may be
	PaymentMaxAge time.Duration
}

type casinoService struct {
	uowFactory interfaces.UnitOfWorkFactory
	verifier   interfaces.PaymentVerifier
	chain      interfaces.ChainClient
	roller     interfaces.DiceRoller
	cooldowns  interfaces.CooldownRepository
	cfg        CasinoConfig
}

// NewCasinoService creates the wager settlement pipeline
func NewCasinoService(uowFactory interfaces.UnitOfWorkFactory, verifier interfaces.PaymentVerifier, chain interfaces.ChainClient, roller interfaces.DiceRoller, cooldowns interfaces.CooldownRepository, cfg CasinoConfig) interfaces.CasinoService {
	return &casinoService{
		uowFactory: uowFactory,
		verifier:   verifier,
		chain:      chain,
		roller:     roller,
		cooldowns:  cooldowns,
		cfg:        cfg,
	}
}

// SettleWager runs the full settlement pipeline for one bet. Every step is
// a hard gate: the first failure short-circuits the rest.
func (s *casinoService) SettleWager(ctx context.Context, bet interfaces.WagerRequest) (*interfaces.WagerOutcome, error) {
	if !bet.Game.IsValid() {
		return nil, entities.NewValidationError("unknown game %q", bet.Game)
	}
	// An anonymous identity cannot be bound to a payment memo.
	if bet.Username == "" {
		return nil, entities.NewValidationError("betting requires a public username so your payment can be matched")
	}
	if bet.AmountNano <= 0 {
		return nil, entities.NewValidationError("bet amount must be positive")
	}

	houseWallet := bet.DestinationAddress
	if houseWallet == "" {
		houseWallet = s.cfg.HouseWallet
	}

	// Bet limits derive from the live bankroll: the second term guarantees
	// the house covers the worst-case multiplier for this game.
	balance, err := s.chain.GetBalance(ctx, houseWallet)
	if err != nil {
		return nil, fmt.Errorf("failed to check bankroll: %w", err)
	}
	maxBet := int64(float64(balance) * s.cfg.MaxBetFraction)
	if coverage := int64(float64(balance) / bet.Game.MaxMultiplier()); coverage < maxBet {
		maxBet = coverage
	}
	if bet.AmountNano < s.cfg.MinBetNano {
		return nil, entities.NewValidationError("minimum bet is %s", utils.FormatTON(s.cfg.MinBetNano))
	}
	if bet.AmountNano > maxBet {
		return nil, entities.NewValidationError("maximum bet is currently %s", utils.FormatTON(maxBet))
	}

	now := time.Now()
	allowed, err := s.cooldowns.CheckAndSet(ctx, bet.UserID, s.cfg.Cooldown, now)
	if err != nil {
		return nil, fmt.Errorf("failed to check cooldown: %w", err)
	}
	if !allowed {
		return nil, entities.NewValidationError("please wait %s between bets", s.cfg.Cooldown)
	}

	payment, err := s.verifier.VerifyPayment(ctx, interfaces.ExpectedPayment{
		DestinationAddress: houseWallet,
		MinAmountNano:      bet.AmountNano,
		NotBefore:          now.Add(-s.cfg.PaymentMaxAge),
		MaxAge:             s.cfg.PaymentMaxAge,
		IdentityMemo:       bet.Username,
		SettlementKind:     bet.Game.SettlementKind(),
		UserID:             bet.UserID,
	})
	if err != nil {
		return nil, err
	}

	// The roll is never retried: a second trigger would show a second
	// animation. If it fails here the payment is already claimed and must
	// be reconciled out of band.
	value, err := s.roller.Roll(ctx, bet.ChatID, bet.Game)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"userID": bet.UserID,
			"txHash": payment.TxHash,
		}).Error("randomness source failed after payment claim")
		return nil, fmt.Errorf("game trigger failed for claimed payment %s: %w", payment.TxHash, err)
	}

	multiplier := bet.Game.Multiplier(value)
	won := multiplier > 0
	payout := int64(float64(bet.AmountNano) * multiplier)
	accrual := int64(float64(bet.AmountNano) * s.cfg.HouseEdge)

	outcome := &interfaces.WagerOutcome{
		Game:          bet.Game,
		Value:         value,
		Description:   bet.Game.Describe(value),
		Multiplier:    multiplier,
		Won:           won,
		PaymentTxHash: payment.TxHash,
	}

	// All bookkeeping for the settlement is one transaction, committed
	// before any payout is attempted.
	var journalID int64
	err = withUnitOfWork(ctx, s.uowFactory, func(uow interfaces.UnitOfWork) error {
		if err := uow.CasinoUserRepository().RecordBet(ctx, bet.UserID, payment.FromAddress, bet.AmountNano, now); err != nil {
			return err
		}
		if err := uow.JackpotRepository().Accrue(ctx, accrual); err != nil {
			return err
		}
		if won && bet.Game.JackpotValue() == value {
			pooled, err := uow.JackpotRepository().Award(ctx, bet.UserID, now)
			if err != nil {
				return err
			}
			outcome.JackpotWonNano = pooled
			payout += pooled
		}

		entry := &entities.JournalEntry{
			Timestamp:      now,
			Kind:           entities.JournalKindWager,
			Action:         bet.Game.SettlementKind(),
			AssetFrom:      "ton",
			AssetTo:        "ton",
			AmountFromNano: bet.AmountNano,
			AmountToNano:   payout,
			Outcome:        entities.JournalOutcomePending,
			TxHash:         &payment.TxHash,
			ToolUsed:       "casino",
			ChatID:         bet.ChatID,
			UserID:         bet.UserID,
		}
		if err := uow.JournalRepository().Create(ctx, entry); err != nil {
			return err
		}
		journalID = entry.ID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record settlement: %w", err)
	}
	outcome.JournalID = journalID
	outcome.PayoutNano = payout

	if !won {
		err = withUnitOfWork(ctx, s.uowFactory, func(uow interfaces.UnitOfWork) error {
			if err := uow.JournalRepository().Close(ctx, journalID, entities.JournalOutcomeProfit, bet.AmountNano, nil, time.Now()); err != nil {
				return err
			}
			return uow.CasinoUserRepository().RecordLoss(ctx, bet.UserID)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to close losing wager: %w", err)
		}

		log.WithFields(log.Fields{
			"userID":  bet.UserID,
			"game":    bet.Game,
			"value":   value,
			"journal": journalID,
		}).Info("wager settled, house win")
		return outcome, nil
	}

	receipt, sendErr := s.chain.SendTransfer(ctx, payment.FromAddress, payout, fmt.Sprintf("You won %s! %s", utils.FormatTON(payout), outcome.Description))
	if sendErr != nil {
		// Verified and booked but not paid. The journal entry stays
		// pending; re-sending here risks a double payout, so this goes to
		// the operator backlog instead.
		outcome.NeedsReconciliation = true
		recErr := &entities.ReconciliationPendingError{
			JournalID:  journalID,
			TxHash:     payment.TxHash,
			PayoutNano: payout,
			Err:        sendErr,
		}
		log.WithError(recErr).WithFields(log.Fields{
			"userID":  bet.UserID,
			"journal": journalID,
		}).Error("payout failed, settlement left pending for reconciliation")
		return outcome, nil
	}

	err = withUnitOfWork(ctx, s.uowFactory, func(uow interfaces.UnitOfWork) error {
		if err := uow.JournalRepository().Close(ctx, journalID, entities.JournalOutcomeLoss, -(payout - bet.AmountNano), &receipt.Reference, time.Now()); err != nil {
			return err
		}
		return uow.CasinoUserRepository().RecordWin(ctx, bet.UserID, payout)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to close winning wager: %w", err)
	}

	outcome.PayoutSent = true
	outcome.PayoutRef = receipt.Reference
	log.WithFields(log.Fields{
		"userID":  bet.UserID,
		"game":    bet.Game,
		"value":   value,
		"payout":  payout,
		"journal": journalID,
	}).Info("wager settled, player win paid")
	return outcome, nil
}

// GetPlayerStats returns a player's casino aggregate
func (s *casinoService) GetPlayerStats(ctx context.Context, userID int64) (*entities.CasinoUser, error) {
	var user *entities.CasinoUser
	err := withUnitOfWork(ctx, s.uowFactory, func(uow interfaces.UnitOfWork) error {
		var err error
		user, err = uow.CasinoUserRepository().GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}
	if user == nil {
		return nil, entities.NewNotFoundError("player", "user %d has not played yet", userID)
	}
	return user, nil
}

// GetJackpot returns the current pooled jackpot
func (s *casinoService) GetJackpot(ctx context.Context) (*entities.Jackpot, error) {
	var jackpot *entities.Jackpot
	err := withUnitOfWork(ctx, s.uowFactory, func(uow interfaces.UnitOfWork) error {
		var err error
		jackpot, err = uow.JackpotRepository().Get(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get jackpot: %w", err)
	}
	return jackpot, nil
}
