package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealer/domain/entities"
	"dealer/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newFastRetryClient(inner *testhelpers.MockChainClient) *RetryChainClient {
	return &RetryChainClient{
		inner:          inner,
		maxElapsed:     500 * time.Millisecond,
		attemptTimeout: time.Second,
	}
}

func TestRetryChainClient_ReadRecoversFromTransientFailure(t *testing.T) {
	ctx := context.Background()
	inner := new(testhelpers.MockChainClient)
	client := newFastRetryClient(inner)

	inner.On("GetBalance", mock.Anything, "EQWallet").
		Return(int64(0), errors.New("connection reset")).Twice()
	inner.On("GetBalance", mock.Anything, "EQWallet").
		Return(int64(42), nil).Once()

	balance, err := client.GetBalance(ctx, "EQWallet")

	require.NoError(t, err)
	assert.Equal(t, int64(42), balance)
	inner.AssertNumberOfCalls(t, "GetBalance", 3)
}

func TestRetryChainClient_ReadExhaustionSurfacesAsUnavailable(t *testing.T) {
	ctx := context.Background()
	inner := new(testhelpers.MockChainClient)
	client := newFastRetryClient(inner)

	inner.On("GetIncomingTransactions", mock.Anything, "EQWallet", 20).
		Return(nil, errors.New("gateway down"))

	_, err := client.GetIncomingTransactions(ctx, "EQWallet", 20)

	assert.True(t, entities.IsChainUnavailable(err))
}

func TestRetryChainClient_SendTransferRecoversFromTransientFailure(t *testing.T) {
	ctx := context.Background()
	inner := new(testhelpers.MockChainClient)
	client := newFastRetryClient(inner)

	inner.On("SendTransfer", mock.Anything, "EQDest", int64(1_000_000_000), "note").
		Return(nil, errors.New("timeout")).Once()
	inner.On("SendTransfer", mock.Anything, "EQDest", int64(1_000_000_000), "note").
		Return(&entities.TransferReceipt{Reference: "payout_ref"}, nil).Once()

	receipt, err := client.SendTransfer(ctx, "EQDest", 1_000_000_000, "note")

	require.NoError(t, err)
	assert.Equal(t, "payout_ref", receipt.Reference)
	inner.AssertNumberOfCalls(t, "SendTransfer", 2)
}

func TestRetryChainClient_SendTransferExhaustionSurfacesAsUnavailable(t *testing.T) {
	ctx := context.Background()
	inner := new(testhelpers.MockChainClient)
	client := newFastRetryClient(inner)

	inner.On("SendTransfer", mock.Anything, "EQDest", int64(1_000_000_000), "note").
		Return(nil, errors.New("timeout"))

	_, err := client.SendTransfer(ctx, "EQDest", 1_000_000_000, "note")

	assert.True(t, entities.IsChainUnavailable(err))
	assert.GreaterOrEqual(t, len(inner.Calls), 2)
}

func TestRetryChainClient_SendTransferPassesReceipt(t *testing.T) {
	ctx := context.Background()
	inner := new(testhelpers.MockChainClient)
	client := newFastRetryClient(inner)

	inner.On("SendTransfer", mock.Anything, "EQDest", int64(1), "note").
		Return(&entities.TransferReceipt{Reference: "payout_ref"}, nil)

	receipt, err := client.SendTransfer(ctx, "EQDest", 1, "note")

	require.NoError(t, err)
	assert.Equal(t, "payout_ref", receipt.Reference)
}
