package fhe

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"github.com/holiman/uint256"
)

// MockScheme implements the Scheme interface for testing and demo purposes.
// It simulates homomorphic encryption by keeping plaintexts in memory keyed
// by random handles, and provides no cryptographic hiding.
type MockScheme struct {
	// A unique identifier for this scheme instance
	instanceID []byte

	mu         sync.Mutex
	plaintexts map[string]*uint256.Int
}

// NewMockScheme creates a new in-memory scheme instance. Each instance has
// its own handle space; handles from one instance are unknown to another.
func NewMockScheme() (*MockScheme, error) {
	instanceID := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, instanceID); err != nil {
		return nil, fmt.Errorf("failed to generate instance ID: %w", err)
	}

	return &MockScheme{
		instanceID: instanceID,
		plaintexts: make(map[string]*uint256.Int),
	}, nil
}

// newHandle issues a fresh random 32-byte handle bound to the given plaintext.
// Callers must hold s.mu.
func (s *MockScheme) newHandle(value *uint256.Int) (Ciphertext, error) {
	handle := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, handle); err != nil {
		return nil, fmt.Errorf("failed to generate handle: %w", err)
	}

	ct := Ciphertext(handle)
	s.plaintexts[ct.String()] = value.Clone()
	return ct, nil
}

// EncryptUint64 encrypts a value and returns a fresh handle.
func (s *MockScheme) EncryptUint64(value uint64) (Ciphertext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.newHandle(uint256.NewInt(value))
}

// Zero returns a trivial encryption of zero.
func (s *MockScheme) Zero() (Ciphertext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.newHandle(uint256.NewInt(0))
}

// Multiply homomorphically multiplies two ciphertexts. The result wraps
// modulo 2^256, matching the fixed-width encrypted integer model.
func (s *MockScheme) Multiply(a, b Ciphertext) (Ciphertext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pa, ok := s.plaintexts[a.String()]
	if !ok {
		return nil, ErrUnknownHandle
	}
	pb, ok := s.plaintexts[b.String()]
	if !ok {
		return nil, ErrUnknownHandle
	}

	return s.newHandle(new(uint256.Int).Mul(pa, pb))
}

// DivByConstant divides a ciphertext by a public constant, truncating toward
// zero.
func (s *MockScheme) DivByConstant(ct Ciphertext, divisor uint64) (Ciphertext, error) {
	if divisor == 0 {
		return nil, ErrDivisionByZero
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plaintexts[ct.String()]
	if !ok {
		return nil, ErrUnknownHandle
	}

	return s.newHandle(new(uint256.Int).Div(p, uint256.NewInt(divisor)))
}

// IsInitialized reports whether the handle refers to a ciphertext known to
// this scheme instance.
func (s *MockScheme) IsInitialized(ct Ciphertext) bool {
	if !ct.Initialized() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.plaintexts[ct.String()]
	return ok
}

// Decrypt reveals the plaintext behind a handle. This is the oracle-side
// capability; the protocol core never calls it.
func (s *MockScheme) Decrypt(ct Ciphertext) (*uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plaintexts[ct.String()]
	if !ok {
		return nil, ErrUnknownHandle
	}
	return p.Clone(), nil
}

// InstanceID returns the unique identifier for this scheme instance.
// This is primarily for testing purposes.
func (s *MockScheme) InstanceID() []byte {
	return s.instanceID
}
