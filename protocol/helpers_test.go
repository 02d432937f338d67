package protocol

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
)

var (
	ownerAddr    = common.HexToAddress("0x0000000000000000000000000000000000000001")
	providerAddr = common.HexToAddress("0x0000000000000000000000000000000000000002")
	otherAddr    = common.HexToAddress("0x0000000000000000000000000000000000000003")
)

// stubOracle assigns sequential request ids and can be forced to fail.
type stubOracle struct {
	nextID   uint64
	err      error
	requests map[RequestID][]fhe.Ciphertext
}

func newStubOracle() *stubOracle {
	return &stubOracle{nextID: 1, requests: make(map[RequestID][]fhe.Ciphertext)}
}

func (o *stubOracle) RequestDecryption(_ context.Context, cts []fhe.Ciphertext) (RequestID, error) {
	if o.err != nil {
		return 0, o.err
	}
	id := RequestID(o.nextID)
	o.nextID++
	o.requests[id] = cts
	return id, nil
}

// stubVerifier accepts every proof unless primed with an error.
type stubVerifier struct {
	err error
}

func (v *stubVerifier) VerifyDecryptionProof(RequestID, []byte, []byte) error {
	return v.err
}

// recordSink captures emitted events for assertions.
type recordSink struct {
	events []Event
}

func (s *recordSink) ProtocolEvent(e Event) {
	s.events = append(s.events, e)
}

func (s *recordSink) ofType(t EventType) []Event {
	var out []Event
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// fakeClock is an adjustable time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time           { return c.now }
func (c *fakeClock) Advance(d time.Duration)  { c.now = c.now.Add(d) }

type fixture struct {
	ledger   *Ledger
	scheme   *fhe.MockScheme
	oracle   *stubOracle
	verifier *stubVerifier
	sink     *recordSink
	clock    *fakeClock
}

// newFixture builds a ledger with no cooldown, a registered provider and an
// open batch unless options disable those steps.
func newFixture(t *testing.T, cfg *Config) *fixture {
	t.Helper()

	scheme, err := fhe.NewMockScheme()
	require.NoError(t, err)

	f := &fixture{
		scheme:   scheme,
		oracle:   newStubOracle(),
		verifier: &stubVerifier{},
		sink:     &recordSink{},
		clock:    &fakeClock{now: time.Unix(1_700_000_000, 0)},
	}

	if cfg == nil {
		cfg = &Config{CooldownSeconds: 0, ScoreDivisor: 100, CleartextWidth: 32}
	}

	f.ledger, err = NewLedger(ownerAddr, cfg, scheme, f.oracle, f.verifier,
		WithEventSink(f.sink), WithClock(f.clock.Now))
	require.NoError(t, err)
	return f
}

// ready registers the provider and opens the first batch.
func (f *fixture) ready(t *testing.T) {
	t.Helper()
	require.NoError(t, f.ledger.AddProvider(ownerAddr, providerAddr))
	require.NoError(t, f.ledger.OpenBatch(ownerAddr))
}

func (f *fixture) encrypt(t *testing.T, v uint64) fhe.Ciphertext {
	t.Helper()
	ct, err := f.scheme.EncryptUint64(v)
	require.NoError(t, err)
	return ct
}

func (f *fixture) submit(t *testing.T, content, interaction uint64) common.Hash {
	t.Helper()
	id, err := f.ledger.SubmitPost(providerAddr, f.encrypt(t, content), f.encrypt(t, interaction))
	require.NoError(t, err)
	return id
}
