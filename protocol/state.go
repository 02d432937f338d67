package protocol

import (
	"crypto/rand"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
)

// Batch is the single mutable submission window. At most one batch is open
// at any time; ids increase strictly on each open.
type Batch struct {
	ID   uint64 `json:"id"`
	Open bool   `json:"open"`
}

// Post holds a submitted encrypted record: two ciphertext handles and the
// processing status. Posts are never deleted; resubmitting the identical
// content handle in the same batch overwrites the same post id.
type Post struct {
	ID          common.Hash    `json:"id"`
	Submitter   common.Address `json:"submitter"`
	BatchID     uint64         `json:"batch_id"`
	Content     fhe.Ciphertext `json:"content"`
	Interaction fhe.Ciphertext `json:"interaction"`

	// Processed flips to true exactly once, when a decryption request is
	// issued for this post. It permanently gates re-scoring.
	Processed bool `json:"processed"`

	// Revealed and RevealedScore are set when the post's decryption
	// request finalizes. A post whose request never finalizes stays
	// processed but unrevealed.
	Revealed      bool         `json:"revealed"`
	RevealedScore *uint256.Int `json:"revealed_score,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`
}

// DecryptionRequest tracks one decryption issued to the oracle. Finalized
// flips to true exactly once and the transition is irreversible.
type DecryptionRequest struct {
	ID         RequestID   `json:"id"`
	PostID     common.Hash `json:"post_id"`
	BatchID    uint64      `json:"batch_id"`
	Commitment common.Hash `json:"commitment"`
	Finalized  bool        `json:"finalized"`

	RequestedAt time.Time `json:"requested_at"`
}

// ActionClass distinguishes the two independently rate-limited action
// classes. They share one configured cooldown duration but keep independent
// per-address last-action clocks.
type ActionClass int

const (
	ActionSubmit ActionClass = iota
	ActionDecrypt
)

type cooldownKey struct {
	addr  common.Address
	class ActionClass
}

// Ledger owns all protocol state. One mutex serializes every mutating
// operation, modeling the sequential execution of the underlying ledger.
type Ledger struct {
	cfg      *Config
	scheme   fhe.Scheme
	oracle   DecryptionOracle
	verifier ProofVerifier
	sink     EventSink
	now      func() time.Time

	// instanceID distinguishes this protocol deployment in request
	// commitments, so a commitment from one deployment can never validate
	// on another.
	instanceID common.Hash

	mu              sync.Mutex
	owner           common.Address
	providers       map[common.Address]bool
	paused          bool
	batch           Batch
	cooldownSeconds uint64
	lastAction      map[cooldownKey]int64

	posts    map[common.Hash]*Post
	scores   map[common.Hash]fhe.Ciphertext
	requests map[RequestID]*DecryptionRequest
}

// Option customizes a Ledger at construction time.
type Option func(*Ledger)

// WithEventSink routes protocol events to the given sink.
func WithEventSink(sink EventSink) Option {
	return func(l *Ledger) { l.sink = sink }
}

// WithClock overrides the ledger's time source. Only used in tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithInstanceID pins the deployment identity instead of generating one.
func WithInstanceID(id common.Hash) Option {
	return func(l *Ledger) { l.instanceID = id }
}

// NewLedger creates a ledger owned by the given address. The scheme is the
// homomorphic capability, the oracle the external decryption network, and
// the verifier authenticates oracle results.
func NewLedger(owner common.Address, cfg *Config, scheme fhe.Scheme, oracle DecryptionOracle, verifier ProofVerifier, opts ...Option) (*Ledger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.ScoreDivisor == 0 {
		cfg.ScoreDivisor = DefaultScoreDivisor
	}
	if cfg.CleartextWidth == 0 {
		cfg.CleartextWidth = DefaultCleartextWidth
	}

	var instanceID common.Hash
	if _, err := io.ReadFull(rand.Reader, instanceID[:]); err != nil {
		return nil, err
	}

	l := &Ledger{
		cfg:             cfg,
		scheme:          scheme,
		oracle:          oracle,
		verifier:        verifier,
		sink:            &SlogSink{Log: slog.Default()},
		now:             time.Now,
		instanceID:      instanceID,
		owner:           owner,
		providers:       make(map[common.Address]bool),
		cooldownSeconds: cfg.CooldownSeconds,
		lastAction:      make(map[cooldownKey]int64),
		posts:           make(map[common.Hash]*Post),
		scores:          make(map[common.Hash]fhe.Ciphertext),
		requests:        make(map[RequestID]*DecryptionRequest),
	}

	for _, opt := range opts {
		opt(l)
	}
	if l.sink == nil {
		l.sink = nopSink{}
	}

	return l, nil
}

// InstanceID returns the deployment identity bound into request commitments.
func (l *Ledger) InstanceID() common.Hash {
	return l.instanceID
}

// Owner returns the current owner address.
func (l *Ledger) Owner() common.Address {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner
}

// IsProvider reports whether the address is in the provider set.
func (l *Ledger) IsProvider(addr common.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.providers[addr]
}

// Paused reports whether mutating operations are currently gated.
func (l *Ledger) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// CurrentBatch returns the current batch descriptor.
func (l *Ledger) CurrentBatch() Batch {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.batch
}

// CooldownSeconds returns the shared cooldown duration.
func (l *Ledger) CooldownSeconds() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cooldownSeconds
}

// Post returns a copy of the post with the given id.
func (l *Ledger) Post(id common.Hash) (Post, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.posts[id]
	if !ok {
		return Post{}, false
	}
	return *p, true
}

// Request returns a copy of the decryption request with the given id.
func (l *Ledger) Request(id RequestID) (DecryptionRequest, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.requests[id]
	if !ok {
		return DecryptionRequest{}, false
	}
	return *r, true
}

// EncryptedScore returns the encrypted score handle for a processed post.
// The handle stays opaque until a user-authorized decrypt path outside this
// core produces a cleartext.
func (l *Ledger) EncryptedScore(postID common.Hash) (fhe.Ciphertext, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ct, ok := l.scores[postID]
	return ct, ok
}

// emit delivers an event to the configured sink. Callers hold l.mu.
func (l *Ledger) emit(e Event) {
	e.At = l.now()
	l.sink.ProtocolEvent(e)
}
