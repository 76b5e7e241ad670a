package services

import (
	"context"
	"fmt"
	"time"

	"dealer/domain/entities"
	"dealer/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// DealConfig is the immutable tuning for the escrow state machine
type DealConfig struct {
	// HouseWallet is the address counterparty payments arrive on
	HouseWallet string

	// ProposalWindow bounds how long a proposed deal may sit unaccepted
	ProposalWindow time.Duration

	// PaymentWindow is the fresh, shorter expiry granted on acceptance
	PaymentWindow time.Duration

	// PaymentMaxAge bounds how old a matched transaction may be
	PaymentMaxAge time.Duration

	// VerifiedRecency bounds how long a verification authorizes release of
	// the agent's side
	VerifiedRecency time.Duration
}

type dealService struct {
	uowFactory interfaces.UnitOfWorkFactory
	verifier   interfaces.PaymentVerifier
	chain      interfaces.ChainClient
	cfg        DealConfig
}

// NewDealService creates the deal escrow service
func NewDealService(uowFactory interfaces.UnitOfWorkFactory, verifier interfaces.PaymentVerifier, chain interfaces.ChainClient, cfg DealConfig) interfaces.DealService {
	return &dealService{
		uowFactory: uowFactory,
		verifier:   verifier,
		chain:      chain,
		cfg:        cfg,
	}
}

// ProposeDeal creates a new deal in proposed state
func (s *dealService) ProposeDeal(ctx context.Context, input interfaces.ProposeDealInput) (*entities.Deal, error) {
	if input.UserID <= 0 {
		return nil, entities.NewValidationError("deal requires a user")
	}
	if err := validateSide("user side", input.UserGives); err != nil {
		return nil, err
	}
	if err := validateSide("agent side", input.AgentGives); err != nil {
		return nil, err
	}

	now := time.Now()
	deal := &entities.Deal{
		ID:                 entities.NewDealID(),
		Status:             entities.DealStatusProposed,
		UserID:             input.UserID,
		ChatID:             input.ChatID,
		UserGives:          input.UserGives,
		AgentGives:         input.AgentGives,
		ProfitEstimateNano: input.ProfitEstimateNano,
		CreatedAt:          now,
		ExpiresAt:          now.Add(s.cfg.ProposalWindow),
		InlineMessageRef:   input.InlineMessageRef,
		Notes:              input.Notes,
	}

	err := withUnitOfWork(ctx, s.uowFactory, func(uow interfaces.UnitOfWork) error {
		return uow.DealRepository().Create(ctx, deal)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}

	log.WithFields(log.Fields{
		"dealID": deal.ID,
		"userID": deal.UserID,
	}).Info("deal proposed")
	return deal, nil
}

// AcceptDeal moves a proposed deal to accepted and grants a fresh, shorter
// payment window
func (s *dealService) AcceptDeal(ctx context.Context, id string) (*entities.Deal, error) {
	return s.transition(ctx, id, func(deal *entities.Deal, now time.Time) error {
		if deal.Status != entities.DealStatusProposed {
			return entities.NewConflictError("deal %s cannot be accepted in status %s", id, deal.Status)
		}
		if deal.IsExpired(now) {
			return entities.NewConflictError("deal %s has expired", id)
		}
		deal.Status = entities.DealStatusAccepted
		deal.ExpiresAt = now.Add(s.cfg.PaymentWindow)
		return nil
	})
}

// DeclineDeal terminates a proposed deal
func (s *dealService) DeclineDeal(ctx context.Context, id string) (*entities.Deal, error) {
	return s.transition(ctx, id, func(deal *entities.Deal, now time.Time) error {
		if deal.Status != entities.DealStatusProposed {
			return entities.NewConflictError("deal %s cannot be declined in status %s", id, deal.Status)
		}
		deal.Status = entities.DealStatusDeclined
		return nil
	})
}

// ClaimPayment records the user's unverified assertion that they paid
func (s *dealService) ClaimPayment(ctx context.Context, id string) (*entities.Deal, error) {
	return s.transition(ctx, id, func(deal *entities.Deal, now time.Time) error {
		if deal.Status != entities.DealStatusAccepted {
			return entities.NewConflictError("deal %s has no payment to claim in status %s", id, deal.Status)
		}
		deal.Status = entities.DealStatusPaymentClaimed
		return nil
	})
}

// CancelDeal aborts a deal before any payment claim. Once a claim exists a
// transfer may be in flight, so cancellation is refused.
func (s *dealService) CancelDeal(ctx context.Context, id string, reason string) (*entities.Deal, error) {
	return s.transition(ctx, id, func(deal *entities.Deal, now time.Time) error {
		if deal.Status != entities.DealStatusProposed && deal.Status != entities.DealStatusAccepted {
			return entities.NewConflictError("deal %s cannot be cancelled in status %s", id, deal.Status)
		}
		deal.Status = entities.DealStatusCancelled
		appendNote(deal, "cancelled: "+reason)
		return nil
	})
}

// CompleteDeal sends the agent's TON side of a verified deal back to the
// verified payment sender and completes the deal.
func (s *dealService) CompleteDeal(ctx context.Context, id string) (*entities.Deal, error) {
	deal, err := s.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	if deal.AgentGives.Kind != entities.AssetKindTON {
		return nil, entities.NewConflictError("deal %s sends a %s, use the asset transfer tool", id, deal.AgentGives.Kind)
	}
	if deal.UserWalletAddress == nil {
		return nil, entities.NewConflictError("deal %s has no verified sender wallet", id)
	}
	toAddress := *deal.UserWalletAddress

	// Claim the send before touching the network so two concurrent
	// completions cannot both transfer.
	now := time.Now()
	if err := s.claimAgentSend(ctx, id, now); err != nil {
		return nil, err
	}

	receipt, err := s.chain.SendTransfer(ctx, toAddress, deal.AgentGives.AmountNano, "deal "+id)
	if err != nil {
		// The transfer may or may not be in flight; park the deal instead
		// of silently releasing the claim.
		if ferr := s.failDeal(ctx, id, fmt.Sprintf("agent transfer failed: %v", err)); ferr != nil {
			log.WithError(ferr).WithField("dealID", id).Error("failed to mark deal failed")
		}
		return nil, fmt.Errorf("agent transfer for deal %s failed: %w", id, err)
	}

	return s.finishSend(ctx, id, receipt.Reference, now)
}

// MarkAgentSent completes a verified deal whose agent side was released by
// an external transfer tool (e.g. a gift transfer).
func (s *dealService) MarkAgentSent(ctx context.Context, id string, txRef string) (*entities.Deal, error) {
	now := time.Now()
	if err := s.claimAgentSend(ctx, id, now); err != nil {
		return nil, err
	}
	return s.finishSend(ctx, id, txRef, now)
}

// MarkUserGiftReceived verifies a payment_claimed deal whose user side is a
// gift. Gifts never appear on chain, so the poller cannot verify them; the
// transfer tool that took custody attests receipt here instead.
func (s *dealService) MarkUserGiftReceived(ctx context.Context, id string, transferRef string) (*entities.Deal, error) {
	if transferRef == "" {
		return nil, entities.NewValidationError("gift receipt requires a transfer reference")
	}
	return s.transition(ctx, id, func(deal *entities.Deal, now time.Time) error {
		if deal.UserGives.Kind != entities.AssetKindGift {
			return entities.NewConflictError("deal %s takes a %s payment, verification is chain driven", id, deal.UserGives.Kind)
		}
		if deal.Status != entities.DealStatusPaymentClaimed {
			return entities.NewConflictError("deal %s has no gift receipt to record in status %s", id, deal.Status)
		}
		verifiedAt := time.Now()
		deal.Status = entities.DealStatusVerified
		deal.UserPaymentVerifiedAt = &verifiedAt
		deal.UserPaymentTxHash = &transferRef
		return nil
	})
}

// GetDeal retrieves a deal by id
func (s *dealService) GetDeal(ctx context.Context, id string) (*entities.Deal, error) {
	var deal *entities.Deal
	err := withUnitOfWork(ctx, s.uowFactory, func(uow interfaces.UnitOfWork) error {
		var err error
		deal, err = uow.DealRepository().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	if deal == nil {
		return nil, entities.NewNotFoundError("deal", "deal %s not found", id)
	}
	return deal, nil
}

// ListDeals returns deals matching the filter
func (s *dealService) ListDeals(ctx context.Context, filter interfaces.DealFilter) ([]*entities.Deal, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var deals []*entities.Deal
	err := withUnitOfWork(ctx, s.uowFactory, func(uow interfaces.UnitOfWork) error {
		var err error
		switch {
		case filter.UserID != nil:
			deals, err = uow.DealRepository().ListByUser(ctx, *filter.UserID, limit)
		case filter.Status != nil:
			deals, err = uow.DealRepository().ListByStatus(ctx, *filter.Status, limit)
		default:
			deals, err = uow.DealRepository().ListByStatus(ctx, entities.DealStatusProposed, limit)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}

	if filter.Status != nil && filter.UserID != nil {
		filtered := deals[:0]
		for _, d := range deals {
			if d.Status == *filter.Status {
				filtered = append(filtered, d)
			}
		}
		deals = filtered
	}
	return deals, nil
}

// HasVerifiedDeal is the authorization gate for releasing the agent's side
// of an asset: true only for a verified, recently verified, not-yet-sent
// deal owned by userID whose agent side is assetRef.
func (s *dealService) HasVerifiedDeal(ctx context.Context, assetRef string, userID int64) (bool, error) {
	verifiedAfter := time.Now().Add(-s.cfg.VerifiedRecency)

	var deal *entities.Deal
	err := withUnitOfWork(ctx, s.uowFactory, func(uow interfaces.UnitOfWork) error {
		var err error
		deal, err = uow.DealRepository().GetVerifiedForAsset(ctx, assetRef, userID, verifiedAfter)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to query verified deals: %w", err)
	}
	return deal != nil, nil
}

// PollPendingVerifications runs payment verification for every
// payment_claimed deal and returns the ids that became verified.
func (s *dealService) PollPendingVerifications(ctx context.Context) ([]string, error) {
	var claimed []*entities.Deal
	err := withUnitOfWork(ctx, s.uowFactory, func(uow interfaces.UnitOfWork) error {
		var err error
		claimed, err = uow.DealRepository().ListByStatus(ctx, entities.DealStatusPaymentClaimed, 100)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list claimed deals: %w", err)
	}

	var verified []string
	for _, deal := range claimed {
		if deal.UserGives.Kind != entities.AssetKindTON {
			// Gift user sides are verified through MarkUserGiftReceived,
			// not by chain scanning.
			continue
		}

		payment, err := s.verifier.VerifyPayment(ctx, interfaces.ExpectedPayment{
			DestinationAddress: s.cfg.HouseWallet,
			MinAmountNano:      deal.UserGives.AmountNano,
			NotBefore:          deal.CreatedAt,
			MaxAge:             s.cfg.PaymentMaxAge,
			IdentityMemo:       deal.ID,
			SettlementKind:     deal.ID,
			UserID:             deal.UserID,
		})
		if err != nil {
			if entities.IsNotFound(err) {
				continue
			}
			// Transport trouble affects every remaining deal equally; stop
			// the sweep and report what already verified.
			return verified, err
		}

		if err := s.stampVerified(ctx, deal.ID, payment); err != nil {
			log.WithError(err).WithField("dealID", deal.ID).Error("failed to stamp verification")
			continue
		}
		verified = append(verified, deal.ID)
	}
	return verified, nil
}

// ExpireOverdueDeals sweeps overdue proposed/accepted deals into expired
func (s *dealService) ExpireOverdueDeals(ctx context.Context) (int64, error) {
	var count int64
	err := withUnitOfWork(ctx, s.uowFactory, func(uow interfaces.UnitOfWork) error {
		var err error
		count, err = uow.DealRepository().ExpireOverdue(ctx, time.Now())
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to expire deals: %w", err)
	}
	if count > 0 {
		log.WithField("count", count).Info("expired overdue deals")
	}
	return count, nil
}

// transition loads a deal, applies mutate under the state machine rules and
// persists the result in one transaction.
func (s *dealService) transition(ctx context.Context, id string, mutate func(deal *entities.Deal, now time.Time) error) (*entities.Deal, error) {
	var deal *entities.Deal
	err := withUnitOfWork(ctx, s.uowFactory, func(uow interfaces.UnitOfWork) error {
		var err error
		deal, err = uow.DealRepository().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if deal == nil {
			return entities.NewNotFoundError("deal", "deal %s not found", id)
		}

		from := deal.Status
		now := time.Now()
		if err := mutate(deal, now); err != nil {
			return err
		}
		if deal.Status != from && !from.CanTransitionTo(deal.Status) {
			return entities.NewConflictError("deal %s cannot move from %s to %s", id, from, deal.Status)
		}
		return uow.DealRepository().Update(ctx, deal, from)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"dealID": deal.ID,
		"status": deal.Status,
	}).Info("deal transitioned")
	return deal, nil
}

// stampVerified moves a payment_claimed deal to verified with the payment's
// audit fields
func (s *dealService) stampVerified(ctx context.Context, id string, payment *entities.VerifiedPayment) error {
	_, err := s.transition(ctx, id, func(deal *entities.Deal, now time.Time) error {
		if deal.Status != entities.DealStatusPaymentClaimed {
			return entities.NewConflictError("deal %s is no longer awaiting verification", id)
		}
		verifiedAt := time.Now()
		deal.Status = entities.DealStatusVerified
		deal.UserPaymentVerifiedAt = &verifiedAt
		deal.UserPaymentTxHash = &payment.TxHash
		deal.UserWalletAddress = &payment.FromAddress
		return nil
	})
	return err
}

// claimAgentSend marks the agent's side as in flight. The conditional
// update is the double-release guard: it succeeds for exactly one caller.
func (s *dealService) claimAgentSend(ctx context.Context, id string, at time.Time) error {
	return withUnitOfWork(ctx, s.uowFactory, func(uow interfaces.UnitOfWork) error {
		won, err := uow.DealRepository().ClaimAgentSend(ctx, id, at)
		if err != nil {
			return err
		}
		if !won {
			return entities.NewConflictError("deal %s is not verified or its agent side was already sent", id)
		}
		return nil
	})
}

func (s *dealService) finishSend(ctx context.Context, id, txRef string, sentAt time.Time) (*entities.Deal, error) {
	return s.transition(ctx, id, func(deal *entities.Deal, now time.Time) error {
		if deal.Status != entities.DealStatusVerified {
			return entities.NewConflictError("deal %s is not verified", id)
		}
		completedAt := time.Now()
		deal.Status = entities.DealStatusCompleted
		deal.AgentSentAt = &sentAt
		deal.AgentSentTxHash = &txRef
		deal.CompletedAt = &completedAt
		return nil
	})
}

func (s *dealService) failDeal(ctx context.Context, id, note string) error {
	_, err := s.transition(ctx, id, func(deal *entities.Deal, now time.Time) error {
		if deal.Status.IsTerminal() {
			return entities.NewConflictError("deal %s is already terminal", id)
		}
		deal.Status = entities.DealStatusFailed
		appendNote(deal, note)
		return nil
	})
	return err
}

func validateSide(label string, side entities.DealSide) error {
	switch side.Kind {
	case entities.AssetKindTON:
		if side.AmountNano <= 0 {
			return entities.NewValidationError("%s must carry a positive TON amount", label)
		}
	case entities.AssetKindGift:
		if side.GiftRef == "" {
			return entities.NewValidationError("%s must reference a gift", label)
		}
	default:
		return entities.NewValidationError("%s has unknown asset kind %q", label, side.Kind)
	}
	if side.ValueNano < 0 {
		return entities.NewValidationError("%s value cannot be negative", label)
	}
	return nil
}

func appendNote(deal *entities.Deal, note string) {
	if deal.Notes == nil || *deal.Notes == "" {
		deal.Notes = &note
		return
	}
	combined := *deal.Notes + "; " + note
	deal.Notes = &combined
}
