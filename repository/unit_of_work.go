package repository

import (
	"context"
	"fmt"

	"dealer/database"
	"dealer/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db             *database.DB
	tx             pgx.Tx
	ctx            context.Context
	dealRepo       interfaces.DealRepository
	casinoUserRepo interfaces.CasinoUserRepository
	jackpotRepo    interfaces.JackpotRepository
	journalRepo    interfaces.JournalRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) interfaces.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

// Create creates a new UnitOfWork
func (f *unitOfWorkFactory) Create() interfaces.UnitOfWork {
	return &unitOfWork{db: f.db}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create transaction-scoped repositories
	u.dealRepo = newDealRepositoryWithTx(tx)
	u.casinoUserRepo = newCasinoUserRepositoryWithTx(tx)
	u.jackpotRepo = newJackpotRepositoryWithTx(tx)
	u.journalRepo = newJournalRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// DealRepository returns the deal repository for this unit of work
func (u *unitOfWork) DealRepository() interfaces.DealRepository {
	if u.dealRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.dealRepo
}

// CasinoUserRepository returns the casino user repository for this unit of work
func (u *unitOfWork) CasinoUserRepository() interfaces.CasinoUserRepository {
	if u.casinoUserRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.casinoUserRepo
}

// JackpotRepository returns the jackpot repository for this unit of work
func (u *unitOfWork) JackpotRepository() interfaces.JackpotRepository {
	if u.jackpotRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.jackpotRepo
}

// JournalRepository returns the journal repository for this unit of work
func (u *unitOfWork) JournalRepository() interfaces.JournalRepository {
	if u.journalRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.journalRepo
}
