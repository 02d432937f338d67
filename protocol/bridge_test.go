package protocol

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
)

// scoreRequest submits a 20/10 post, issues its decryption request, and
// returns the request id together with the ciphertexts the oracle received.
func scoreRequest(t *testing.T, f *fixture) (RequestID, []fhe.Ciphertext) {
	t.Helper()

	postID := f.submit(t, 20, 10)
	reqID, err := f.ledger.ComputeScore(context.Background(), providerAddr, postID)
	require.NoError(t, err)
	return reqID, f.oracle.requests[reqID]
}

// cleartextsFor decrypts the handles the way the oracle would.
func cleartextsFor(t *testing.T, f *fixture, handles []fhe.Ciphertext) []byte {
	t.Helper()

	var out []byte
	for _, ct := range handles {
		p, err := f.scheme.Decrypt(ct)
		require.NoError(t, err)
		word := p.Bytes32()
		out = append(out, word[:]...)
	}
	return out
}

func TestOnDecryptionResultFinalizes(t *testing.T) {
	f := newFixture(t, nil)
	f.ready(t)

	reqID, handles := scoreRequest(t, f)
	clear := cleartextsFor(t, f, handles)

	reveal, err := f.ledger.OnDecryptionResult(reqID, handles, clear, []byte("proof"))
	require.NoError(t, err)
	require.Equal(t, reqID, reveal.RequestID)
	require.Equal(t, uint64(1), reveal.BatchID)
	require.Equal(t, uint64(2), reveal.Score.Uint64())

	req, ok := f.ledger.Request(reqID)
	require.True(t, ok)
	require.True(t, req.Finalized)

	post, ok := f.ledger.Post(reveal.PostID)
	require.True(t, ok)
	require.True(t, post.Revealed)
	require.Equal(t, uint64(2), post.RevealedScore.Uint64())

	events := f.sink.ofType(EventScoreRevealed)
	require.Len(t, events, 1)
	require.Equal(t, reqID, events[0].RequestID)
}

func TestOnDecryptionResultUnknownRequest(t *testing.T) {
	f := newFixture(t, nil)
	f.ready(t)

	_, err := f.ledger.OnDecryptionResult(RequestID(42), nil, nil, nil)
	require.ErrorIs(t, err, ErrUnknownRequest)
}

func TestOnDecryptionResultReplayRejected(t *testing.T) {
	f := newFixture(t, nil)
	f.ready(t)

	reqID, handles := scoreRequest(t, f)
	clear := cleartextsFor(t, f, handles)

	_, err := f.ledger.OnDecryptionResult(reqID, handles, clear, []byte("proof"))
	require.NoError(t, err)

	// A second delivery is rejected regardless of payload.
	_, err = f.ledger.OnDecryptionResult(reqID, handles, clear, []byte("proof"))
	require.ErrorIs(t, err, ErrReplay)

	_, err = f.ledger.OnDecryptionResult(reqID, nil, []byte("garbage"), nil)
	require.ErrorIs(t, err, ErrReplay)
}

func TestOnDecryptionResultCommitmentMismatch(t *testing.T) {
	f := newFixture(t, nil)
	f.ready(t)

	reqID, handles := scoreRequest(t, f)
	clear := cleartextsFor(t, f, handles)

	// Echoing different ciphertexts than were committed is rejected with no
	// state change.
	swapped := []fhe.Ciphertext{f.encrypt(t, 2)}
	_, err := f.ledger.OnDecryptionResult(reqID, swapped, clear, []byte("proof"))
	require.ErrorIs(t, err, ErrStateMismatch)

	req, ok := f.ledger.Request(reqID)
	require.True(t, ok)
	require.False(t, req.Finalized)

	// The genuine delivery still goes through afterwards.
	_, err = f.ledger.OnDecryptionResult(reqID, handles, clear, []byte("proof"))
	require.NoError(t, err)
}

func TestOnDecryptionResultProofFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.ready(t)

	reqID, handles := scoreRequest(t, f)
	clear := cleartextsFor(t, f, handles)

	f.verifier.err = errors.New("stale quote")
	_, err := f.ledger.OnDecryptionResult(reqID, handles, clear, []byte("proof"))
	require.ErrorIs(t, err, ErrProofVerification)

	req, ok := f.ledger.Request(reqID)
	require.True(t, ok)
	require.False(t, req.Finalized)

	f.verifier.err = nil
	_, err = f.ledger.OnDecryptionResult(reqID, handles, clear, []byte("proof"))
	require.NoError(t, err)
}

func TestOnDecryptionResultMalformedCleartext(t *testing.T) {
	f := newFixture(t, nil)
	f.ready(t)

	reqID, handles := scoreRequest(t, f)
	clear := cleartextsFor(t, f, handles)

	_, err := f.ledger.OnDecryptionResult(reqID, handles, clear[:31], []byte("proof"))
	require.ErrorIs(t, err, ErrMalformedCleartext)

	_, err = f.ledger.OnDecryptionResult(reqID, handles, append(clear, 0), []byte("proof"))
	require.ErrorIs(t, err, ErrMalformedCleartext)

	_, err = f.ledger.OnDecryptionResult(reqID, handles, clear, []byte("proof"))
	require.NoError(t, err)
}

func TestUnfinalizedRequestIsNotAnError(t *testing.T) {
	f := newFixture(t, nil)
	f.ready(t)

	reqID, _ := scoreRequest(t, f)

	// The callback never arrives: the request stays pending forever and
	// other posts keep flowing.
	req, ok := f.ledger.Request(reqID)
	require.True(t, ok)
	require.False(t, req.Finalized)

	id2, err := f.ledger.SubmitPost(providerAddr, f.encrypt(t, 30), f.encrypt(t, 10))
	require.NoError(t, err)
	_, err = f.ledger.ComputeScore(context.Background(), providerAddr, id2)
	require.NoError(t, err)
}
