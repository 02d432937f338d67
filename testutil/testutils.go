package testutil

import (
	"crypto/rand"

	"github.com/ethereum/go-ethereum/common"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/oracle"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/protocol"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/tdx"
)

// Stack is a fully wired scoring deployment for tests: the oracle delivers
// results straight into the ledger's callback, one provider is permissioned,
// and batch 1 is open.
type Stack struct {
	Scheme   *fhe.MockScheme
	Oracle   *oracle.InMemoryOracle
	Attester *tdx.HMACProvider
	Verifier *oracle.Verifier
	Ledger   *protocol.Ledger

	Owner    common.Address
	Provider common.Address
}

// NewStack builds a Stack. A nil cfg uses the protocol defaults with the
// cooldown disabled, which is what most tests want.
func NewStack(cfg *protocol.Config, opts ...protocol.Option) (*Stack, error) {
	if cfg == nil {
		cfg = protocol.DefaultConfig()
		cfg.CooldownSeconds = 0
	}

	scheme, err := fhe.NewMockScheme()
	if err != nil {
		return nil, err
	}

	attester := &tdx.HMACProvider{Key: []byte("testutil-oracle-key")}
	orc := oracle.NewInMemoryOracle(scheme, attester)
	verifier := &oracle.Verifier{Provider: attester}

	owner := RandomAddress()
	provider := RandomAddress()

	ledger, err := protocol.NewLedger(owner, cfg, scheme, orc, verifier, opts...)
	if err != nil {
		return nil, err
	}
	orc.RegisterCallback(ledger.OnDecryptionResult)

	if err := ledger.AddProvider(owner, provider); err != nil {
		return nil, err
	}
	if err := ledger.OpenBatch(owner); err != nil {
		return nil, err
	}

	return &Stack{
		Scheme:   scheme,
		Oracle:   orc,
		Attester: attester,
		Verifier: verifier,
		Ledger:   ledger,
		Owner:    owner,
		Provider: provider,
	}, nil
}

// Encrypt returns a fresh handle for the value, panicking on scheme failure.
// Fixture-only convenience; production code checks the error.
func (s *Stack) Encrypt(value uint64) fhe.Ciphertext {
	ct, err := s.Scheme.EncryptUint64(value)
	if err != nil {
		panic(err)
	}
	return ct
}

// RandomAddress returns a random account address.
func RandomAddress() common.Address {
	var addr common.Address
	if _, err := rand.Read(addr[:]); err != nil {
		panic(err)
	}
	return addr
}

// RandomHash returns a random 32-byte hash.
func RandomHash() common.Hash {
	var h common.Hash
	if _, err := rand.Read(h[:]); err != nil {
		panic(err)
	}
	return h
}
