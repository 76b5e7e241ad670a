package repository

import (
	"context"
	"testing"

	"dealer/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPersists(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	factory := NewUnitOfWorkFactory(testDB.DB)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	deal := testutil.CreateTestDeal(100)
	require.NoError(t, uow.DealRepository().Create(ctx, deal))
	require.NoError(t, uow.JackpotRepository().Accrue(ctx, 50_000_000))
	require.NoError(t, uow.Commit())

	// Visible outside the transaction after commit
	saved, err := NewDealRepository(testDB.DB).GetByID(ctx, deal.ID)
	require.NoError(t, err)
	assert.NotNil(t, saved)

	jackpot, err := NewJackpotRepository(testDB.DB).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50_000_000), jackpot.AmountNano)
}

func TestUnitOfWork_RollbackDiscards(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	factory := NewUnitOfWorkFactory(testDB.DB)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	deal := testutil.CreateTestDeal(100)
	require.NoError(t, uow.DealRepository().Create(ctx, deal))
	require.NoError(t, uow.JackpotRepository().Accrue(ctx, 50_000_000))
	require.NoError(t, uow.Rollback())

	saved, err := NewDealRepository(testDB.DB).GetByID(ctx, deal.ID)
	require.NoError(t, err)
	assert.Nil(t, saved)

	jackpot, err := NewJackpotRepository(testDB.DB).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), jackpot.AmountNano)
}

func TestUnitOfWork_RollbackAfterCommitIsSafe(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	factory := NewUnitOfWorkFactory(testDB.DB)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.JackpotRepository().Accrue(ctx, 1))
	require.NoError(t, uow.Commit())

	// Deferred rollbacks after a successful commit are a no-op
	assert.NoError(t, uow.Rollback())
}

func TestUnitOfWork_RepositoriesPanicBeforeBegin(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB)

	uow := factory.Create()
	assert.Panics(t, func() {
		uow.DealRepository()
	})
}
