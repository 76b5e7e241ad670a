package testutil

import (
	"time"

	"dealer/domain/entities"
)

// CreateTestDeal creates a proposed TON-for-gift deal with sensible defaults
func CreateTestDeal(userID int64) *entities.Deal {
	now := time.Now().Truncate(time.Second)
	return &entities.Deal{
		ID:     entities.NewDealID(),
		Status: entities.DealStatusProposed,
		UserID: userID,
		ChatID: 5000,
		UserGives: entities.DealSide{
			Kind:       entities.AssetKindTON,
			AmountNano: 5_000_000_000,
			ValueNano:  5_000_000_000,
		},
		AgentGives: entities.DealSide{
			Kind:      entities.AssetKindGift,
			GiftRef:   "gift-777",
			ValueNano: 4_500_000_000,
		},
		ProfitEstimateNano: 500_000_000,
		CreatedAt:          now,
		ExpiresAt:          now.Add(30 * time.Minute),
	}
}

// CreateTestVerifiedDeal creates a deal in verified state with the payment
// audit fields stamped
func CreateTestVerifiedDeal(userID int64) *entities.Deal {
	deal := CreateTestDeal(userID)
	verifiedAt := time.Now().Truncate(time.Second)
	txHash := "tx_" + deal.ID
	wallet := "EQTestSenderWallet"
	deal.Status = entities.DealStatusVerified
	deal.UserPaymentVerifiedAt = &verifiedAt
	deal.UserPaymentTxHash = &txHash
	deal.UserWalletAddress = &wallet
	return deal
}

// CreateTestUsedTransaction creates a claim record for the given hash
func CreateTestUsedTransaction(txHash string, userID int64) *entities.UsedTransaction {
	return &entities.UsedTransaction{
		TxHash:         txHash,
		UserID:         userID,
		AmountNano:     1_000_000_000,
		SettlementKind: "casino_dice",
		UsedAt:         time.Now().Truncate(time.Second),
	}
}

// CreateTestJournalEntry creates a pending wager entry
func CreateTestJournalEntry(userID int64) *entities.JournalEntry {
	txHash := "tx_journal_test"
	return &entities.JournalEntry{
		Timestamp:      time.Now().Truncate(time.Second),
		Kind:           entities.JournalKindWager,
		Action:         "casino_dice",
		AssetFrom:      "ton",
		AssetTo:        "ton",
		AmountFromNano: 1_000_000_000,
		AmountToNano:   3_000_000_000,
		Outcome:        entities.JournalOutcomePending,
		TxHash:         &txHash,
		ToolUsed:       "casino",
		ChatID:         5000,
		UserID:         userID,
	}
}
