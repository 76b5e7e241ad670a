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

type paymentService struct {
	chain      interfaces.ChainClient
	usedTxRepo interfaces.UsedTransactionRepository
	scanLimit  int
	tolerance  float64
}

// NewPaymentService creates the payment verification ledger. tolerance is
// the fraction of the expected amount still accepted as a full payment
// (absorbs network-fee rounding).
func NewPaymentService(chain interfaces.ChainClient, usedTxRepo interfaces.UsedTransactionRepository, scanLimit int, tolerance float64) interfaces.PaymentVerifier {
	return &paymentService{
		chain:      chain,
		usedTxRepo: usedTxRepo,
		scanLimit:  scanLimit,
		tolerance:  tolerance,
	}
}

// VerifyPayment scans recent incoming transfers for one matching the
// expectation and claims its hash in the anti-replay ledger.
//
// Candidates are evaluated strictly in the order the chain client returns
// them and the first match wins. Picking a "best" match instead would let a
// sender game the amount tolerance, so this stays a linear first-match scan.
func (s *paymentService) VerifyPayment(ctx context.Context, expected interfaces.ExpectedPayment) (*entities.VerifiedPayment, error) {
	txs, err := s.chain.GetIncomingTransactions(ctx, expected.DestinationAddress, s.scanLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch incoming transactions: %w", err)
	}

	minAccepted := int64(float64(expected.MinAmountNano) * s.tolerance)
	now := time.Now()

	for _, tx := range txs {
		if tx.AmountNano < minAccepted {
			continue
		}
		// Payment must postdate the request it pays for; an old transfer
		// cannot be reused for a newer settlement.
		if tx.Timestamp.Before(expected.NotBefore) {
			continue
		}
		if expected.MaxAge > 0 && tx.Timestamp.Before(now.Add(-expected.MaxAge)) {
			continue
		}
		if !utils.MemoMatches(tx.Memo, expected.IdentityMemo) {
			continue
		}

		claimed, err := s.usedTxRepo.TryClaim(ctx, &entities.UsedTransaction{
			TxHash:         tx.Hash,
			UserID:         expected.UserID,
			AmountNano:     tx.AmountNano,
			SettlementKind: expected.SettlementKind,
			UsedAt:         now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to claim transaction %s: %w", tx.Hash, err)
		}
		if !claimed {
			// A concurrent verification got here first. The transaction is
			// spent; keep scanning.
			log.WithFields(log.Fields{
				"txHash":         tx.Hash,
				"settlementKind": expected.SettlementKind,
			}).Warn("transaction already claimed, skipping")
			continue
		}

		log.WithFields(log.Fields{
			"txHash":         tx.Hash,
			"amount":         tx.AmountNano,
			"from":           tx.FromAddress,
			"settlementKind": expected.SettlementKind,
		}).Info("payment verified")

		return &entities.VerifiedPayment{
			TxHash:      tx.Hash,
			AmountNano:  tx.AmountNano,
			FromAddress: tx.FromAddress,
			ReceivedAt:  tx.Timestamp,
		}, nil
	}

	return nil, entities.NewNotFoundError("payment",
		"payment not found. Check that you sent at least %s to %s with the exact comment %q, after your request was created and within the last %s",
		utils.FormatTON(expected.MinAmountNano), expected.DestinationAddress,
		expected.IdentityMemo, expected.MaxAge)
}
