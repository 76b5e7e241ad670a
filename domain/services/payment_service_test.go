package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealer/domain/entities"
	"dealer/domain/interfaces"
	"dealer/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testHouseWallet = "EQHouseWalletxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"

func expectedPaymentFixture() interfaces.ExpectedPayment {
	return interfaces.ExpectedPayment{
		DestinationAddress: testHouseWallet,
		MinAmountNano:      1_000_000_000,
		NotBefore:          time.Now().Add(-10 * time.Minute),
		MaxAge:             15 * time.Minute,
		IdentityMemo:       "alice",
		SettlementKind:     "casino_dice",
		UserID:             100,
	}
}

func chainTx(hash, from, memo string, amount int64, age time.Duration) entities.ChainTransaction {
	return entities.ChainTransaction{
		Hash:        hash,
		AmountNano:  amount,
		FromAddress: from,
		Timestamp:   time.Now().Add(-age),
		Memo:        memo,
	}
}

func TestPaymentService_VerifyPayment_Match(t *testing.T) {
	ctx := context.Background()
	mockChain := new(testhelpers.MockChainClient)
	mockUsedTx := new(testhelpers.MockUsedTransactionRepository)
	service := NewPaymentService(mockChain, mockUsedTx, 20, 0.98)

	mockChain.On("GetIncomingTransactions", ctx, testHouseWallet, 20).Return([]entities.ChainTransaction{
		chainTx("tx1", "EQSender1", "@Alice", 1_000_000_000, time.Minute),
	}, nil)
	mockUsedTx.On("TryClaim", ctx, mock.MatchedBy(func(u *entities.UsedTransaction) bool {
		return u.TxHash == "tx1" && u.UserID == 100 && u.SettlementKind == "casino_dice"
	})).Return(true, nil)

	payment, err := service.VerifyPayment(ctx, expectedPaymentFixture())

	require.NoError(t, err)
	assert.Equal(t, "tx1", payment.TxHash)
	assert.Equal(t, "EQSender1", payment.FromAddress)
	assert.Equal(t, int64(1_000_000_000), payment.AmountNano)
	mockUsedTx.AssertExpectations(t)
}

func TestPaymentService_VerifyPayment_FirstMatchWins(t *testing.T) {
	ctx := context.Background()
	mockChain := new(testhelpers.MockChainClient)
	mockUsedTx := new(testhelpers.MockUsedTransactionRepository)
	service := NewPaymentService(mockChain, mockUsedTx, 20, 0.98)

	// Both transactions match; the scan must take the first in chain order,
	// not the closer amount
	mockChain.On("GetIncomingTransactions", ctx, testHouseWallet, 20).Return([]entities.ChainTransaction{
		chainTx("tx_big", "EQSender1", "alice", 5_000_000_000, time.Minute),
		chainTx("tx_exact", "EQSender1", "alice", 1_000_000_000, 2*time.Minute),
	}, nil)
	mockUsedTx.On("TryClaim", ctx, mock.MatchedBy(func(u *entities.UsedTransaction) bool {
		return u.TxHash == "tx_big"
	})).Return(true, nil)

	payment, err := service.VerifyPayment(ctx, expectedPaymentFixture())

	require.NoError(t, err)
	assert.Equal(t, "tx_big", payment.TxHash)
}

func TestPaymentService_VerifyPayment_SkipsClaimedHash(t *testing.T) {
	ctx := context.Background()
	mockChain := new(testhelpers.MockChainClient)
	mockUsedTx := new(testhelpers.MockUsedTransactionRepository)
	service := NewPaymentService(mockChain, mockUsedTx, 20, 0.98)

	mockChain.On("GetIncomingTransactions", ctx, testHouseWallet, 20).Return([]entities.ChainTransaction{
		chainTx("tx_spent", "EQSender1", "alice", 1_000_000_000, time.Minute),
		chainTx("tx_fresh", "EQSender1", "alice", 1_000_000_000, 2*time.Minute),
	}, nil)
	mockUsedTx.On("TryClaim", ctx, mock.MatchedBy(func(u *entities.UsedTransaction) bool {
		return u.TxHash == "tx_spent"
	})).Return(false, nil)
	mockUsedTx.On("TryClaim", ctx, mock.MatchedBy(func(u *entities.UsedTransaction) bool {
		return u.TxHash == "tx_fresh"
	})).Return(true, nil)

	payment, err := service.VerifyPayment(ctx, expectedPaymentFixture())

	require.NoError(t, err)
	assert.Equal(t, "tx_fresh", payment.TxHash)
	mockUsedTx.AssertExpectations(t)
}

func TestPaymentService_VerifyPayment_ReplayedPaymentNotFound(t *testing.T) {
	ctx := context.Background()
	mockChain := new(testhelpers.MockChainClient)
	mockUsedTx := new(testhelpers.MockUsedTransactionRepository)
	service := NewPaymentService(mockChain, mockUsedTx, 20, 0.98)

	// The only candidate was already consumed by an earlier settlement
	mockChain.On("GetIncomingTransactions", ctx, testHouseWallet, 20).Return([]entities.ChainTransaction{
		chainTx("tx_spent", "EQSender1", "alice", 1_000_000_000, time.Minute),
	}, nil)
	mockUsedTx.On("TryClaim", ctx, mock.Anything).Return(false, nil)

	_, err := service.VerifyPayment(ctx, expectedPaymentFixture())

	assert.True(t, entities.IsNotFound(err))
}

func TestPaymentService_VerifyPayment_Filters(t *testing.T) {
	expected := expectedPaymentFixture()

	tests := []struct {
		name string
		tx   entities.ChainTransaction
	}{
		{"amount below tolerance", chainTx("tx1", "EQS", "alice", 900_000_000, time.Minute)},
		{"memo mismatch", chainTx("tx2", "EQS", "bob", 1_000_000_000, time.Minute)},
		{"empty memo", chainTx("tx3", "EQS", "", 1_000_000_000, time.Minute)},
		{"older than the request", chainTx("tx4", "EQS", "alice", 1_000_000_000, 11*time.Minute)},
		{"older than max age", chainTx("tx5", "EQS", "alice", 1_000_000_000, 20*time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mockChain := new(testhelpers.MockChainClient)
			mockUsedTx := new(testhelpers.MockUsedTransactionRepository)
			service := NewPaymentService(mockChain, mockUsedTx, 20, 0.98)

			mockChain.On("GetIncomingTransactions", ctx, testHouseWallet, 20).
				Return([]entities.ChainTransaction{tt.tx}, nil)

			_, err := service.VerifyPayment(ctx, expected)

			assert.True(t, entities.IsNotFound(err), "got %v", err)
			// A rejected candidate must never be claimed
			mockUsedTx.AssertNotCalled(t, "TryClaim", mock.Anything, mock.Anything)
		})
	}
}

func TestPaymentService_VerifyPayment_ToleranceAcceptsNearMiss(t *testing.T) {
	ctx := context.Background()
	mockChain := new(testhelpers.MockChainClient)
	mockUsedTx := new(testhelpers.MockUsedTransactionRepository)
	service := NewPaymentService(mockChain, mockUsedTx, 20, 0.98)

	// 0.98 of the expected amount still counts as paid in full
	mockChain.On("GetIncomingTransactions", ctx, testHouseWallet, 20).Return([]entities.ChainTransaction{
		chainTx("tx1", "EQS", "alice", 980_000_000, time.Minute),
	}, nil)
	mockUsedTx.On("TryClaim", ctx, mock.Anything).Return(true, nil)

	payment, err := service.VerifyPayment(ctx, expectedPaymentFixture())

	require.NoError(t, err)
	assert.Equal(t, int64(980_000_000), payment.AmountNano)
}

func TestPaymentService_VerifyPayment_ChainError(t *testing.T) {
	ctx := context.Background()
	mockChain := new(testhelpers.MockChainClient)
	mockUsedTx := new(testhelpers.MockUsedTransactionRepository)
	service := NewPaymentService(mockChain, mockUsedTx, 20, 0.98)

	mockChain.On("GetIncomingTransactions", ctx, testHouseWallet, 20).
		Return(nil, entities.NewChainUnavailableError("get incoming transactions", errors.New("gateway timeout")))

	_, err := service.VerifyPayment(ctx, expectedPaymentFixture())

	assert.True(t, entities.IsChainUnavailable(err))
}
