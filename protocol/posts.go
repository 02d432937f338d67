package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
)

// PostID derives the deterministic post id for a submission. Resubmitting
// the identical content handle by the same submitter in the same batch
// collides on the same id, making submission an idempotent overwrite rather
// than a new post.
func PostID(submitter common.Address, batchID uint64, content fhe.Ciphertext) common.Hash {
	var batchBytes [8]byte
	binary.BigEndian.PutUint64(batchBytes[:], batchID)
	return gethcrypto.Keccak256Hash(submitter.Bytes(), batchBytes[:], content.Bytes())
}

// SubmitPost stores an encrypted fact-check record for the current batch.
// The caller must be a provider, the ledger unpaused, a batch open, and the
// submission cooldown satisfied. Handles the submitter left uninitialized
// are materialized as trivial encryptions of zero; handles that claim to be
// initialized but are unknown to the scheme are rejected.
//
// Returns the post id. Submitting the same content handle again in the same
// batch overwrites the stored post with Processed reset to false only if the
// post was not yet processed; a processed post keeps its flag, preserving
// the at-most-once scoring guarantee.
func (l *Ledger) SubmitPost(caller common.Address, content, interaction fhe.Ciphertext) (common.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireProvider(caller); err != nil {
		return common.Hash{}, err
	}
	if l.paused {
		return common.Hash{}, ErrPaused
	}
	if !l.batch.Open {
		return common.Hash{}, ErrBatchClosed
	}

	now := l.now().Unix()
	if err := l.checkCooldown(caller, ActionSubmit, now); err != nil {
		return common.Hash{}, err
	}

	content, err := l.materialize(content)
	if err != nil {
		return common.Hash{}, fmt.Errorf("content handle: %w", err)
	}
	interaction, err = l.materialize(interaction)
	if err != nil {
		return common.Hash{}, fmt.Errorf("interaction handle: %w", err)
	}

	id := PostID(caller, l.batch.ID, content)

	post := &Post{
		ID:          id,
		Submitter:   caller,
		BatchID:     l.batch.ID,
		Content:     content,
		Interaction: interaction,
		SubmittedAt: l.now(),
	}
	if existing, ok := l.posts[id]; ok && existing.Processed {
		post.Processed = true
		post.Revealed = existing.Revealed
		post.RevealedScore = existing.RevealedScore
	}

	l.posts[id] = post
	l.bumpCooldown(caller, ActionSubmit, now)
	l.emit(Event{Type: EventPostSubmitted, Address: caller, BatchID: l.batch.ID, PostID: id})
	return id, nil
}

// materialize lazily initializes an empty handle to a trivial encryption of
// zero. A non-empty handle the scheme does not recognize is semantically
// invalid and rejected rather than silently accepted.
func (l *Ledger) materialize(ct fhe.Ciphertext) (fhe.Ciphertext, error) {
	if !ct.Initialized() {
		return l.scheme.Zero()
	}
	if !l.scheme.IsInitialized(ct) {
		return nil, ErrUninitializedCiphertext
	}
	return ct, nil
}
