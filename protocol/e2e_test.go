package protocol_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/protocol"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/testutil"
)

// TestFullScoringFlow runs the whole protocol against the real in-memory
// oracle: a provider submits encrypted scores (20, 10) into batch 1,
// requests scoring, and the oracle delivers a proven result that finalizes
// to cleartext 2.
func TestFullScoringFlow(t *testing.T) {
	stack, err := testutil.NewStack(nil)
	require.NoError(t, err)

	ledger := stack.Ledger
	require.Equal(t, uint64(1), ledger.CurrentBatch().ID)

	postID, err := ledger.SubmitPost(stack.Provider, stack.Encrypt(20), stack.Encrypt(10))
	require.NoError(t, err)

	reqID, err := ledger.ComputeScore(context.Background(), stack.Provider, postID)
	require.NoError(t, err)
	require.Equal(t, []protocol.RequestID{reqID}, stack.Oracle.PendingRequests())

	// Submissions continue while the request is outstanding.
	_, err = ledger.SubmitPost(stack.Provider, stack.Encrypt(50), stack.Encrypt(10))
	require.NoError(t, err)

	require.NoError(t, stack.Oracle.DeliverPending())

	post, ok := ledger.Post(postID)
	require.True(t, ok)
	require.True(t, post.Processed)
	require.True(t, post.Revealed)
	require.Equal(t, uint64(2), post.RevealedScore.Uint64())

	req, ok := ledger.Request(reqID)
	require.True(t, ok)
	require.True(t, req.Finalized)
	require.Equal(t, uint64(1), req.BatchID)
	require.Equal(t, postID, req.PostID)
}

// TestReplayedDeliveryRejected re-delivers the exact oracle payload and
// expects the replay guard to reject it.
func TestReplayedDeliveryRejected(t *testing.T) {
	stack, err := testutil.NewStack(nil)
	require.NoError(t, err)
	ledger := stack.Ledger

	var (
		capturedID      protocol.RequestID
		capturedHandles []fhe.Ciphertext
		capturedClear   []byte
		capturedProof   []byte
	)
	stack.Oracle.RegisterCallback(func(id protocol.RequestID, handles []fhe.Ciphertext, cleartexts, proof []byte) (*protocol.ScoreReveal, error) {
		capturedID, capturedHandles, capturedClear, capturedProof = id, handles, cleartexts, proof
		return ledger.OnDecryptionResult(id, handles, cleartexts, proof)
	})

	postID, err := ledger.SubmitPost(stack.Provider, stack.Encrypt(20), stack.Encrypt(10))
	require.NoError(t, err)
	_, err = ledger.ComputeScore(context.Background(), stack.Provider, postID)
	require.NoError(t, err)
	require.NoError(t, stack.Oracle.DeliverPending())

	// Byte-identical replay of the delivered payload.
	_, err = ledger.OnDecryptionResult(capturedID, capturedHandles, capturedClear, capturedProof)
	require.ErrorIs(t, err, protocol.ErrReplay)
}
