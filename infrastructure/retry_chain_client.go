package infrastructure

import (
	"context"
	"time"

	"dealer/domain/entities"
	"dealer/domain/interfaces"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// RetryChainClient decorates a ChainClient with exponential backoff.
// Transient gateway failures are absorbed; exhausted retries surface as
// ChainUnavailableError so services can distinguish "chain down" from
// "payment not found". A transfer that still fails after the backoff is
// exhausted lands in the operator reconciliation backlog.
type RetryChainClient struct {
	inner          interfaces.ChainClient
	maxElapsed     time.Duration
	attemptTimeout time.Duration
}

// NewRetryChainClient wraps inner with retry handling
func NewRetryChainClient(inner interfaces.ChainClient) *RetryChainClient {
	return &RetryChainClient{
		inner:          inner,
		maxElapsed:     30 * time.Second,
		attemptTimeout: 10 * time.Second,
	}
}

func (c *RetryChainClient) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = c.maxElapsed
	return backoff.WithContext(b, ctx)
}

// GetIncomingTransactions retries the read until the backoff is exhausted
func (c *RetryChainClient) GetIncomingTransactions(ctx context.Context, address string, limit int) ([]entities.ChainTransaction, error) {
	var txs []entities.ChainTransaction

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()

		var err error
		txs, err = c.inner.GetIncomingTransactions(attemptCtx, address, limit)
		if err != nil {
			log.WithError(err).Debug("chain read failed, retrying")
		}
		return err
	}

	if err := backoff.Retry(operation, c.newBackOff(ctx)); err != nil {
		return nil, entities.NewChainUnavailableError("get incoming transactions", err)
	}
	return txs, nil
}

// SendTransfer retries the transfer until the backoff is exhausted
func (c *RetryChainClient) SendTransfer(ctx context.Context, toAddress string, amountNano int64, note string) (*entities.TransferReceipt, error) {
	var receipt *entities.TransferReceipt

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()

		var err error
		receipt, err = c.inner.SendTransfer(attemptCtx, toAddress, amountNano, note)
		if err != nil {
			log.WithError(err).Debug("transfer failed, retrying")
		}
		return err
	}

	if err := backoff.Retry(operation, c.newBackOff(ctx)); err != nil {
		return nil, entities.NewChainUnavailableError("send transfer", err)
	}
	return receipt, nil
}

// GetBalance retries the read until the backoff is exhausted
func (c *RetryChainClient) GetBalance(ctx context.Context, address string) (int64, error) {
	var balance int64

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()

		var err error
		balance, err = c.inner.GetBalance(attemptCtx, address)
		if err != nil {
			log.WithError(err).Debug("balance read failed, retrying")
		}
		return err
	}

	if err := backoff.Retry(operation, c.newBackOff(ctx)); err != nil {
		return 0, entities.NewChainUnavailableError("get balance", err)
	}
	return balance, nil
}
