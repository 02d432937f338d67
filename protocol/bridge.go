package protocol

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
)

// ScoreReveal is the finalized outcome of a decryption request: the
// cleartext credibility score linked back to the post and batch that
// produced it.
type ScoreReveal struct {
	RequestID RequestID    `json:"request_id"`
	PostID    common.Hash  `json:"post_id"`
	BatchID   uint64       `json:"batch_id"`
	Score     *uint256.Int `json:"score"`
}

// OnDecryptionResult is the oracle callback entry point. The oracle echoes
// the ciphertext handles it decrypted together with the cleartext bytes and
// a proof of authenticity. Validation order:
//
//  1. the request id must be known (ErrUnknownRequest)
//  2. the request must not already be finalized (ErrReplay)
//  3. the echoed handles must reproduce the stored commitment
//     (ErrStateMismatch)
//  4. the proof must authenticate the cleartexts for this request id
//     (ErrProofVerification)
//  5. the cleartext length must match the expected fixed width
//     (ErrMalformedCleartext)
//
// Any rejection leaves all state unchanged; a rejected delivery can be
// retried by the oracle with corrected inputs, except a replay, which is
// final. On success the request finalizes irreversibly and the cleartext
// score is recorded on the originating post.
func (l *Ledger) OnDecryptionResult(requestID RequestID, handles []fhe.Ciphertext, cleartexts, proof []byte) (*ScoreReveal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	req, ok := l.requests[requestID]
	if !ok {
		return nil, ErrUnknownRequest
	}
	if req.Finalized {
		return nil, ErrReplay
	}

	if requestCommitment(l.instanceID, handles) != req.Commitment {
		return nil, ErrStateMismatch
	}

	if err := l.verifier.VerifyDecryptionProof(requestID, cleartexts, proof); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProofVerification, err)
	}

	if len(cleartexts) != l.cfg.CleartextWidth*len(handles) {
		return nil, ErrMalformedCleartext
	}

	score := new(uint256.Int).SetBytes(cleartexts[:l.cfg.CleartextWidth])

	req.Finalized = true
	post, ok := l.posts[req.PostID]
	if ok {
		post.Revealed = true
		post.RevealedScore = score
	}

	reveal := &ScoreReveal{
		RequestID: requestID,
		PostID:    req.PostID,
		BatchID:   req.BatchID,
		Score:     score,
	}
	l.emit(Event{Type: EventScoreRevealed, BatchID: req.BatchID, PostID: req.PostID, RequestID: requestID, Score: score})
	return reveal, nil
}
