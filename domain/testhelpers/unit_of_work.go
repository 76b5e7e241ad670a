package testhelpers

import (
	"context"

	"dealer/domain/interfaces"
)

// FakeUnitOfWork is an in-memory UnitOfWork over the repository mocks. It
// records lifecycle calls so tests can assert whether a settlement
// committed or rolled back.
type FakeUnitOfWork struct {
	DealRepo       *MockDealRepository
	CasinoUserRepo *MockCasinoUserRepository
	JackpotRepo    *MockJackpotRepository
	JournalRepo    *MockJournalRepository

	Begun      int
	Committed  int
	RolledBack int
}

// NewFakeUnitOfWork creates a FakeUnitOfWork with fresh mocks
func NewFakeUnitOfWork() *FakeUnitOfWork {
	return &FakeUnitOfWork{
		DealRepo:       &MockDealRepository{},
		CasinoUserRepo: &MockCasinoUserRepository{},
		JackpotRepo:    &MockJackpotRepository{},
		JournalRepo:    &MockJournalRepository{},
	}
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) error {
	u.Begun++
	return nil
}

func (u *FakeUnitOfWork) Commit() error {
	u.Committed++
	return nil
}

func (u *FakeUnitOfWork) Rollback() error {
	// Rollback after commit is a no-op, mirroring the deferred-rollback
	// pattern in the services
	if u.Committed == 0 {
		u.RolledBack++
	}
	return nil
}

func (u *FakeUnitOfWork) DealRepository() interfaces.DealRepository {
	return u.DealRepo
}

func (u *FakeUnitOfWork) CasinoUserRepository() interfaces.CasinoUserRepository {
	return u.CasinoUserRepo
}

func (u *FakeUnitOfWork) JackpotRepository() interfaces.JackpotRepository {
	return u.JackpotRepo
}

func (u *FakeUnitOfWork) JournalRepository() interfaces.JournalRepository {
	return u.JournalRepo
}

// FakeUnitOfWorkFactory hands out a fixed sequence of units of work. When
// the sequence runs dry it keeps returning the last one.
type FakeUnitOfWorkFactory struct {
	Units []*FakeUnitOfWork
	next  int
}

// NewFakeUnitOfWorkFactory creates a factory over the given units
func NewFakeUnitOfWorkFactory(units ...*FakeUnitOfWork) *FakeUnitOfWorkFactory {
	return &FakeUnitOfWorkFactory{Units: units}
}

func (f *FakeUnitOfWorkFactory) Create() interfaces.UnitOfWork {
	if f.next >= len(f.Units) {
		return f.Units[len(f.Units)-1]
	}
	u := f.Units[f.next]
	f.next++
	return u
}
