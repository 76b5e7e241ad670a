package repository

import (
	"context"
	"testing"
	"time"

	"dealer/domain/entities"
	"dealer/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewJournalRepository(testDB.DB)

	entry := testutil.CreateTestJournalEntry(100)
	require.NoError(t, repo.Create(ctx, entry))
	require.NotZero(t, entry.ID, "Create populates the generated id")

	saved, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, entities.JournalKindWager, saved.Kind)
	assert.Equal(t, entities.JournalOutcomePending, saved.Outcome)
	assert.Equal(t, entry.AmountFromNano, saved.AmountFromNano)
	assert.Equal(t, entry.AmountToNano, saved.AmountToNano)
	require.NotNil(t, saved.TxHash)
	assert.Equal(t, *entry.TxHash, *saved.TxHash)
	assert.Nil(t, saved.PayoutRef)
	assert.Nil(t, saved.ClosedAt)
}

func TestJournalRepository_Close(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewJournalRepository(testDB.DB)

	entry := testutil.CreateTestJournalEntry(100)
	require.NoError(t, repo.Create(ctx, entry))

	ref := "payout_ref_1"
	closedAt := time.Now().Truncate(time.Second)
	err := repo.Close(ctx, entry.ID, entities.JournalOutcomeLoss, -2_000_000_000, &ref, closedAt)
	require.NoError(t, err)

	saved, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.JournalOutcomeLoss, saved.Outcome)
	assert.Equal(t, int64(-2_000_000_000), saved.PnLNano)
	require.NotNil(t, saved.PayoutRef)
	assert.Equal(t, ref, *saved.PayoutRef)
	require.NotNil(t, saved.ClosedAt)
	assert.True(t, closedAt.Equal(*saved.ClosedAt))
	assert.True(t, saved.IsClosed())
}

func TestJournalRepository_Close_OnlyOnce(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewJournalRepository(testDB.DB)

	entry := testutil.CreateTestJournalEntry(100)
	require.NoError(t, repo.Create(ctx, entry))

	require.NoError(t, repo.Close(ctx, entry.ID, entities.JournalOutcomeProfit, 1_000_000_000, nil, time.Now()))

	// A closed entry is immutable
	err := repo.Close(ctx, entry.ID, entities.JournalOutcomeLoss, -1, nil, time.Now())
	assert.True(t, entities.IsConflict(err))

	saved, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.JournalOutcomeProfit, saved.Outcome)
	assert.Equal(t, int64(1_000_000_000), saved.PnLNano)
}

func TestJournalRepository_Close_NilRefKeepsExisting(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewJournalRepository(testDB.DB)

	entry := testutil.CreateTestJournalEntry(100)
	require.NoError(t, repo.Create(ctx, entry))

	require.NoError(t, repo.Close(ctx, entry.ID, entities.JournalOutcomeProfit, 1, nil, time.Now()))

	saved, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Nil(t, saved.PayoutRef)
}

func TestJournalRepository_ListPendingOlderThan(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewJournalRepository(testDB.DB)

	older := testutil.CreateTestJournalEntry(100)
	older.Timestamp = time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	newer := testutil.CreateTestJournalEntry(100)
	newer.Timestamp = time.Now().Add(-1 * time.Hour).Truncate(time.Second)
	fresh := testutil.CreateTestJournalEntry(100)
	closed := testutil.CreateTestJournalEntry(100)
	closed.Timestamp = time.Now().Add(-3 * time.Hour).Truncate(time.Second)

	for _, e := range []*entities.JournalEntry{older, newer, fresh, closed} {
		require.NoError(t, repo.Create(ctx, e))
	}
	require.NoError(t, repo.Close(ctx, closed.ID, entities.JournalOutcomeNeutral, 0, nil, time.Now()))

	pending, err := repo.ListPendingOlderThan(ctx, time.Now().Add(-30*time.Minute))
	require.NoError(t, err)
	require.Len(t, pending, 2)
	// Oldest debt first
	assert.Equal(t, older.ID, pending[0].ID)
	assert.Equal(t, newer.ID, pending[1].ID)
}
