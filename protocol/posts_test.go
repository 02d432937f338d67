package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
)

func TestSubmitRequiresOpenBatch(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.ledger.AddProvider(ownerAddr, providerAddr))

	_, err := f.ledger.SubmitPost(providerAddr, f.encrypt(t, 1), f.encrypt(t, 1))
	require.ErrorIs(t, err, ErrBatchClosed)

	require.NoError(t, f.ledger.OpenBatch(ownerAddr))
	f.submit(t, 1, 1)

	require.NoError(t, f.ledger.CloseBatch(ownerAddr))
	_, err = f.ledger.SubmitPost(providerAddr, f.encrypt(t, 1), f.encrypt(t, 1))
	require.ErrorIs(t, err, ErrBatchClosed)
}

func TestPostIDDeterminism(t *testing.T) {
	f := newFixture(t, nil)
	f.ready(t)

	content := f.encrypt(t, 20)

	id1, err := f.ledger.SubmitPost(providerAddr, content, f.encrypt(t, 10))
	require.NoError(t, err)

	// Same submitter, batch and content handle collide on the same id:
	// an idempotent overwrite, not a new post.
	id2, err := f.ledger.SubmitPost(providerAddr, content, f.encrypt(t, 99))
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	post, ok := f.ledger.Post(id1)
	require.True(t, ok)
	require.Equal(t, providerAddr, post.Submitter)
	require.Equal(t, uint64(1), post.BatchID)

	// A new batch yields a different id for the same content handle.
	require.NoError(t, f.ledger.CloseBatch(ownerAddr))
	require.NoError(t, f.ledger.OpenBatch(ownerAddr))
	id3, err := f.ledger.SubmitPost(providerAddr, content, f.encrypt(t, 10))
	require.NoError(t, err)
	require.NotEqual(t, id1, id3)

	// And so does a different submitter in the same batch.
	require.NoError(t, f.ledger.AddProvider(ownerAddr, otherAddr))
	id4, err := f.ledger.SubmitPost(otherAddr, content, f.encrypt(t, 10))
	require.NoError(t, err)
	require.NotEqual(t, id3, id4)
}

func TestSubmitMaterializesEmptyHandles(t *testing.T) {
	f := newFixture(t, nil)
	f.ready(t)

	id, err := f.ledger.SubmitPost(providerAddr, nil, nil)
	require.NoError(t, err)

	post, ok := f.ledger.Post(id)
	require.True(t, ok)
	require.True(t, post.Content.Initialized())
	require.True(t, post.Interaction.Initialized())

	// Trivial zero encryptions score to zero.
	reqID, err := f.ledger.ComputeScore(context.Background(), providerAddr, id)
	require.NoError(t, err)

	scoreCt := f.oracle.requests[reqID][0]
	p, err := f.scheme.Decrypt(scoreCt)
	require.NoError(t, err)
	require.True(t, p.IsZero())
}

func TestSubmitRejectsForeignHandles(t *testing.T) {
	f := newFixture(t, nil)
	f.ready(t)

	foreign := fhe.NewCiphertextFromBytes([]byte("not a real handle"))

	_, err := f.ledger.SubmitPost(providerAddr, foreign, f.encrypt(t, 1))
	require.ErrorIs(t, err, ErrUninitializedCiphertext)

	_, err = f.ledger.SubmitPost(providerAddr, f.encrypt(t, 1), foreign)
	require.ErrorIs(t, err, ErrUninitializedCiphertext)
}

func TestResubmissionDoesNotResetProcessed(t *testing.T) {
	f := newFixture(t, nil)
	f.ready(t)

	content := f.encrypt(t, 20)
	id, err := f.ledger.SubmitPost(providerAddr, content, f.encrypt(t, 10))
	require.NoError(t, err)

	_, err = f.ledger.ComputeScore(context.Background(), providerAddr, id)
	require.NoError(t, err)

	// Overwriting the processed post keeps the at-most-once guarantee.
	_, err = f.ledger.SubmitPost(providerAddr, content, f.encrypt(t, 50))
	require.NoError(t, err)

	_, err = f.ledger.ComputeScore(context.Background(), providerAddr, id)
	require.ErrorIs(t, err, ErrPostAlreadyProcessed)
}
