package protocol

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
)

// requestCommitment binds a decryption request to the exact ciphertexts
// submitted and to this deployment. Handle bytes are length-prefixed so
// distinct handle lists can never hash identically.
func requestCommitment(instanceID common.Hash, cts []fhe.Ciphertext) common.Hash {
	parts := make([][]byte, 0, 2*len(cts)+1)
	for _, ct := range cts {
		var lenBytes [4]byte
		binary.BigEndian.PutUint32(lenBytes[:], uint32(len(ct.Bytes())))
		parts = append(parts, lenBytes[:], ct.Bytes())
	}
	parts = append(parts, instanceID.Bytes())
	return gethcrypto.Keccak256Hash(parts...)
}

// ComputeScore applies the fixed credibility formula
//
//	score = (content × interaction) / ScoreDivisor
//
// on ciphertexts, stores the encrypted result, marks the post processed, and
// issues a one-shot decryption request to the oracle. The division truncates
// toward zero and the protocol treats it as exact; Scheme implementations
// must honor that.
//
// The caller must be a provider, the ledger unpaused, and the decryption
// cooldown satisfied. A post is scoreable exactly once: a second call for
// the same id fails with ErrPostAlreadyProcessed, whether or not the first
// request has finalized.
//
// If the oracle rejects the request no state changes.
func (l *Ledger) ComputeScore(ctx context.Context, caller common.Address, postID common.Hash) (RequestID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireProvider(caller); err != nil {
		return 0, err
	}
	if l.paused {
		return 0, ErrPaused
	}

	now := l.now().Unix()
	if err := l.checkCooldown(caller, ActionDecrypt, now); err != nil {
		return 0, err
	}

	post, ok := l.posts[postID]
	if !ok {
		return 0, ErrUnknownPost
	}
	if post.Processed {
		return 0, ErrPostAlreadyProcessed
	}
	if !l.scheme.IsInitialized(post.Content) || !l.scheme.IsInitialized(post.Interaction) {
		return 0, ErrUninitializedCiphertext
	}

	product, err := l.scheme.Multiply(post.Content, post.Interaction)
	if err != nil {
		return 0, fmt.Errorf("homomorphic multiply: %w", err)
	}
	score, err := l.scheme.DivByConstant(product, l.cfg.ScoreDivisor)
	if err != nil {
		return 0, fmt.Errorf("homomorphic divide: %w", err)
	}

	handles := []fhe.Ciphertext{score}
	commitment := requestCommitment(l.instanceID, handles)

	requestID, err := l.oracle.RequestDecryption(ctx, handles)
	if err != nil {
		return 0, fmt.Errorf("requesting decryption: %w", err)
	}

	l.scores[postID] = score
	post.Processed = true
	l.requests[requestID] = &DecryptionRequest{
		ID:          requestID,
		PostID:      postID,
		BatchID:     post.BatchID,
		Commitment:  commitment,
		RequestedAt: l.now(),
	}
	l.bumpCooldown(caller, ActionDecrypt, now)
	l.emit(Event{Type: EventDecryptionRequested, Address: caller, BatchID: post.BatchID, PostID: postID, RequestID: requestID})
	return requestID, nil
}
