package testhelpers

import (
	"context"
	"time"

	"dealer/domain/entities"
	"dealer/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockDealRepository is a mock implementation of DealRepository
type MockDealRepository struct {
	mock.Mock
}

func (m *MockDealRepository) Create(ctx context.Context, deal *entities.Deal) error {
	args := m.Called(ctx, deal)
	return args.Error(0)
}

func (m *MockDealRepository) GetByID(ctx context.Context, id string) (*entities.Deal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Deal), args.Error(1)
}

func (m *MockDealRepository) Update(ctx context.Context, deal *entities.Deal, from entities.DealStatus) error {
	args := m.Called(ctx, deal, from)
	return args.Error(0)
}

func (m *MockDealRepository) ListByStatus(ctx context.Context, status entities.DealStatus, limit int) ([]*entities.Deal, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Deal), args.Error(1)
}

func (m *MockDealRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Deal, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Deal), args.Error(1)
}

func (m *MockDealRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDealRepository) ClaimAgentSend(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockDealRepository) GetVerifiedForAsset(ctx context.Context, assetRef string, userID int64, verifiedAfter time.Time) (*entities.Deal, error) {
	args := m.Called(ctx, assetRef, userID, verifiedAfter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Deal), args.Error(1)
}

// MockUsedTransactionRepository is a mock implementation of UsedTransactionRepository
type MockUsedTransactionRepository struct {
	mock.Mock
}

func (m *MockUsedTransactionRepository) TryClaim(ctx context.Context, used *entities.UsedTransaction) (bool, error) {
	args := m.Called(ctx, used)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsedTransactionRepository) GetByHash(ctx context.Context, txHash string) (*entities.UsedTransaction, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UsedTransaction), args.Error(1)
}

func (m *MockUsedTransactionRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockCasinoUserRepository is a mock implementation of CasinoUserRepository
type MockCasinoUserRepository struct {
	mock.Mock
}

func (m *MockCasinoUserRepository) GetByUserID(ctx context.Context, userID int64) (*entities.CasinoUser, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CasinoUser), args.Error(1)
}

func (m *MockCasinoUserRepository) RecordBet(ctx context.Context, userID int64, walletAddress string, amountNano int64, at time.Time) error {
	args := m.Called(ctx, userID, walletAddress, amountNano, at)
	return args.Error(0)
}

func (m *MockCasinoUserRepository) RecordWin(ctx context.Context, userID int64, wonNano int64) error {
	args := m.Called(ctx, userID, wonNano)
	return args.Error(0)
}

func (m *MockCasinoUserRepository) RecordLoss(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockCooldownRepository is a mock implementation of CooldownRepository
type MockCooldownRepository struct {
	mock.Mock
}

func (m *MockCooldownRepository) CheckAndSet(ctx context.Context, userID int64, window time.Duration, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, window, now)
	return args.Bool(0), args.Error(1)
}

// MockJackpotRepository is a mock implementation of JackpotRepository
type MockJackpotRepository struct {
	mock.Mock
}

func (m *MockJackpotRepository) Get(ctx context.Context) (*entities.Jackpot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Jackpot), args.Error(1)
}

func (m *MockJackpotRepository) Accrue(ctx context.Context, amountNano int64) error {
	args := m.Called(ctx, amountNano)
	return args.Error(0)
}

func (m *MockJackpotRepository) Award(ctx context.Context, winnerID int64, at time.Time) (int64, error) {
	args := m.Called(ctx, winnerID, at)
	return args.Get(0).(int64), args.Error(1)
}

// MockJournalRepository is a mock implementation of JournalRepository
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) Create(ctx context.Context, entry *entities.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) GetByID(ctx context.Context, id int64) (*entities.JournalEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) Close(ctx context.Context, id int64, outcome entities.JournalOutcome, pnlNano int64, payoutRef *string, closedAt time.Time) error {
	args := m.Called(ctx, id, outcome, pnlNano, payoutRef, closedAt)
	return args.Error(0)
}

func (m *MockJournalRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*entities.JournalEntry, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.JournalEntry), args.Error(1)
}

// MockChainClient is a mock implementation of ChainClient
type MockChainClient struct {
	mock.Mock
}

func (m *MockChainClient) GetIncomingTransactions(ctx context.Context, address string, limit int) ([]entities.ChainTransaction, error) {
	args := m.Called(ctx, address, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ChainTransaction), args.Error(1)
}

func (m *MockChainClient) SendTransfer(ctx context.Context, toAddress string, amountNano int64, note string) (*entities.TransferReceipt, error) {
	args := m.Called(ctx, toAddress, amountNano, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TransferReceipt), args.Error(1)
}

func (m *MockChainClient) GetBalance(ctx context.Context, address string) (int64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(int64), args.Error(1)
}

// MockDiceRoller is a mock implementation of DiceRoller
type MockDiceRoller struct {
	mock.Mock
}

func (m *MockDiceRoller) Roll(ctx context.Context, chatID int64, kind entities.GameKind) (int, error) {
	args := m.Called(ctx, chatID, kind)
	return args.Int(0), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyDealUpdate(ctx context.Context, deal *entities.Deal) error {
	args := m.Called(ctx, deal)
	return args.Error(0)
}

// MockPaymentVerifier is a mock implementation of PaymentVerifier
type MockPaymentVerifier struct {
	mock.Mock
}

func (m *MockPaymentVerifier) VerifyPayment(ctx context.Context, expected interfaces.ExpectedPayment) (*entities.VerifiedPayment, error) {
	args := m.Called(ctx, expected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerifiedPayment), args.Error(1)
}
