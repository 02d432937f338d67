package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBatchIDStrictlyIncreases(t *testing.T) {
	f := newFixture(t, nil)

	for want := uint64(1); want <= 3; want++ {
		require.NoError(t, f.ledger.OpenBatch(ownerAddr))
		require.Equal(t, Batch{ID: want, Open: true}, f.ledger.CurrentBatch())
		require.NoError(t, f.ledger.CloseBatch(ownerAddr))
		require.Equal(t, Batch{ID: want, Open: false}, f.ledger.CurrentBatch())
	}
}

func TestDoubleOpenFails(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.ledger.OpenBatch(ownerAddr))
	require.ErrorIs(t, f.ledger.OpenBatch(ownerAddr), ErrInvalidBatchState)
}

func TestCloseWithoutOpenFails(t *testing.T) {
	f := newFixture(t, nil)

	require.ErrorIs(t, f.ledger.CloseBatch(ownerAddr), ErrInvalidBatchState)

	require.NoError(t, f.ledger.OpenBatch(ownerAddr))
	require.NoError(t, f.ledger.CloseBatch(ownerAddr))
	require.ErrorIs(t, f.ledger.CloseBatch(ownerAddr), ErrInvalidBatchState)
}

func TestBatchOperationsRequireOwner(t *testing.T) {
	f := newFixture(t, nil)

	require.ErrorIs(t, f.ledger.OpenBatch(providerAddr), ErrNotOwner)
	require.NoError(t, f.ledger.OpenBatch(ownerAddr))
	require.ErrorIs(t, f.ledger.CloseBatch(providerAddr), ErrNotOwner)
}

func TestPauseGatesMutatingOperations(t *testing.T) {
	f := newFixture(t, nil)
	f.ready(t)
	postID := f.submit(t, 20, 10)

	require.ErrorIs(t, f.ledger.Pause(providerAddr), ErrNotOwner)
	require.NoError(t, f.ledger.Pause(ownerAddr))
	require.True(t, f.ledger.Paused())

	// Pause itself runs under the not-paused guard.
	require.ErrorIs(t, f.ledger.Pause(ownerAddr), ErrPaused)

	_, err := f.ledger.SubmitPost(providerAddr, f.encrypt(t, 1), f.encrypt(t, 1))
	require.ErrorIs(t, err, ErrPaused)
	_, err = f.ledger.ComputeScore(context.Background(), providerAddr, postID)
	require.ErrorIs(t, err, ErrPaused)
	require.ErrorIs(t, f.ledger.CloseBatch(ownerAddr), ErrPaused)
	require.ErrorIs(t, f.ledger.OpenBatch(ownerAddr), ErrPaused)

	require.NoError(t, f.ledger.Unpause(ownerAddr))
	require.False(t, f.ledger.Paused())

	_, err = f.ledger.ComputeScore(context.Background(), providerAddr, postID)
	require.NoError(t, err)
}

func TestUnpauseHasNoGuard(t *testing.T) {
	f := newFixture(t, nil)

	// Unpausing an unpaused ledger succeeds and emits nothing.
	require.NoError(t, f.ledger.Unpause(ownerAddr))
	require.Empty(t, f.sink.ofType(EventUnpaused))

	require.NoError(t, f.ledger.Pause(ownerAddr))
	require.NoError(t, f.ledger.Unpause(ownerAddr))
	require.NoError(t, f.ledger.Unpause(ownerAddr))
	require.Len(t, f.sink.ofType(EventUnpaused), 1)
	require.Len(t, f.sink.ofType(EventPaused), 1)
}
