package interfaces

import "context"

// UnitOfWork defines transactional repository access. Every multi-table
// settlement write happens through one of these so the mutations are
// visible all-or-nothing.
//
// The anti-replay ledger and the cooldown table are deliberately not part
// of the unit of work: a claimed payment must stay claimed even when the
// settlement transaction that followed it aborts.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	DealRepository() DealRepository
	CasinoUserRepository() CasinoUserRepository
	JackpotRepository() JackpotRepository
	JournalRepository() JournalRepository
}

// UnitOfWorkFactory creates UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
