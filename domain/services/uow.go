package services

import (
	"context"
	"fmt"

	"dealer/domain/interfaces"
)

// withUnitOfWork runs fn inside a fresh transaction, rolling back on any
// error and committing otherwise.
func withUnitOfWork(ctx context.Context, factory interfaces.UnitOfWorkFactory, fn func(uow interfaces.UnitOfWork) error) error {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(uow); err != nil {
		_ = uow.Rollback()
		return err
	}

	if err := uow.Commit(); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
