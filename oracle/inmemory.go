package oracle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/protocol"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/tdx"
)

// Callback receives a decryption result. It matches the signature of the
// ledger's OnDecryptionResult entry point so the node can wire the two
// directly.
type Callback func(id protocol.RequestID, handles []fhe.Ciphertext, cleartexts, proof []byte) (*protocol.ScoreReveal, error)

// InMemoryOracle implements protocol.DecryptionOracle against a MockScheme.
// It queues requests and delivers results only when DeliverPending is
// called, so callers control the asynchronous gap between request and
// callback.
type InMemoryOracle struct {
	scheme   *fhe.MockScheme
	provider tdx.Provider

	mu       sync.Mutex
	nextID   uint64
	pending  map[protocol.RequestID][]fhe.Ciphertext
	callback Callback
}

// NewInMemoryOracle creates an oracle decrypting through the given scheme
// and proving results with the given provider.
func NewInMemoryOracle(scheme *fhe.MockScheme, provider tdx.Provider) *InMemoryOracle {
	return &InMemoryOracle{
		scheme:   scheme,
		provider: provider,
		nextID:   1,
		pending:  make(map[protocol.RequestID][]fhe.Ciphertext),
	}
}

// RegisterCallback sets the result delivery target. Must be called before
// DeliverPending.
func (o *InMemoryOracle) RegisterCallback(cb Callback) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.callback = cb
}

// RequestDecryption queues ciphertexts for decryption and returns the
// assigned request id. Handles unknown to the scheme are rejected up front.
func (o *InMemoryOracle) RequestDecryption(_ context.Context, cts []fhe.Ciphertext) (protocol.RequestID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(cts) == 0 {
		return 0, errors.New("no ciphertexts to decrypt")
	}
	for _, ct := range cts {
		if !o.scheme.IsInitialized(ct) {
			return 0, fhe.ErrUnknownHandle
		}
	}

	id := protocol.RequestID(o.nextID)
	o.nextID++

	queued := make([]fhe.Ciphertext, len(cts))
	copy(queued, cts)
	o.pending[id] = queued

	return id, nil
}

// PendingRequests returns the queued request ids in ascending order.
func (o *InMemoryOracle) PendingRequests() []protocol.RequestID {
	o.mu.Lock()
	defer o.mu.Unlock()

	ids := make([]protocol.RequestID, 0, len(o.pending))
	for id := range o.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Drop discards a queued request without delivering it, modeling a callback
// that never arrives.
func (o *InMemoryOracle) Drop(id protocol.RequestID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, id)
}

// DeliverPending decrypts every queued request in id order and invokes the
// registered callback with the cleartexts and a proof. Each request is
// delivered once regardless of the callback outcome; the first callback
// error is returned.
func (o *InMemoryOracle) DeliverPending() error {
	o.mu.Lock()
	if o.callback == nil {
		o.mu.Unlock()
		return errors.New("no callback registered")
	}

	ids := make([]protocol.RequestID, 0, len(o.pending))
	for id := range o.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	type delivery struct {
		id      protocol.RequestID
		handles []fhe.Ciphertext
	}
	deliveries := make([]delivery, 0, len(ids))
	for _, id := range ids {
		deliveries = append(deliveries, delivery{id, o.pending[id]})
		delete(o.pending, id)
	}
	cb := o.callback
	o.mu.Unlock()

	var firstErr error
	for _, d := range deliveries {
		cleartexts, err := o.decrypt(d.handles)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		proof, err := o.provider.Attest(ReportData(d.id, cleartexts))
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("attesting result: %w", err)
			}
			continue
		}

		if _, err := cb(d.id, d.handles, cleartexts, proof); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delivering request %d: %w", d.id, err)
		}
	}
	return firstErr
}

// decrypt produces the concatenated 32-byte big-endian cleartexts for a
// handle list.
func (o *InMemoryOracle) decrypt(handles []fhe.Ciphertext) ([]byte, error) {
	cleartexts := make([]byte, 0, 32*len(handles))
	for _, ct := range handles {
		p, err := o.scheme.Decrypt(ct)
		if err != nil {
			return nil, fmt.Errorf("decrypting handle %s: %w", ct, err)
		}
		word := p.Bytes32()
		cleartexts = append(cleartexts, word[:]...)
	}
	return cleartexts, nil
}
