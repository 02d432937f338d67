package fhe

import (
	"bytes"
	"encoding/hex"
	"errors"
)

// Ciphertext is an opaque handle referencing an encrypted value held by a
// Scheme. A zero-length handle is uninitialized. Handles are only meaningful
// to the scheme that issued them.
type Ciphertext []byte

// NewCiphertextFromBytes creates a Ciphertext handle from a byte slice.
// The input is copied to keep the handle immutable.
func NewCiphertextFromBytes(data []byte) Ciphertext {
	ct := make([]byte, len(data))
	copy(ct, data)
	return Ciphertext(ct)
}

// NewCiphertextFromString creates a Ciphertext handle from a hex-encoded string.
func NewCiphertextFromString(data string) (Ciphertext, error) {
	rawBytes, err := hex.DecodeString(data)
	if err != nil {
		return nil, err
	}
	return NewCiphertextFromBytes(rawBytes), nil
}

// Bytes returns the raw handle bytes. These are the canonical bytes used
// when a handle is bound into a decryption request commitment.
func (ct Ciphertext) Bytes() []byte {
	return ct
}

// Initialized reports whether the handle refers to a ciphertext at all.
// An Initialized handle may still be unknown to a given scheme.
func (ct Ciphertext) Initialized() bool {
	return len(ct) > 0
}

// Equal compares two handles for byte equality.
func (ct Ciphertext) Equal(other Ciphertext) bool {
	return bytes.Equal(ct, other)
}

// String returns a hex-encoded representation of the handle, for logging
// and for use as a map key.
func (ct Ciphertext) String() string {
	return hex.EncodeToString(ct)
}

// MarshalText encodes the handle as hex for JSON transport.
func (ct Ciphertext) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(ct)), nil
}

// UnmarshalText decodes a hex-encoded handle.
func (ct *Ciphertext) UnmarshalText(text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	*ct = raw
	return nil
}

var (
	// ErrUnknownHandle is returned when a handle does not refer to a
	// ciphertext held by the scheme.
	ErrUnknownHandle = errors.New("fhe: unknown ciphertext handle")

	// ErrDivisionByZero is returned by DivByConstant with a zero divisor.
	ErrDivisionByZero = errors.New("fhe: division by zero constant")
)

// Scheme is the homomorphic capability the protocol operates through.
// Implementations must provide exact truncating integer division in
// DivByConstant; the scoring formula depends on it.
type Scheme interface {
	// EncryptUint64 encrypts a value and returns a fresh handle.
	EncryptUint64(value uint64) (Ciphertext, error)

	// Zero returns a trivial encryption of zero. Used to materialize
	// handles a submitter left uninitialized.
	Zero() (Ciphertext, error)

	// Multiply homomorphically multiplies two ciphertexts.
	Multiply(a, b Ciphertext) (Ciphertext, error)

	// DivByConstant divides a ciphertext by a public constant, truncating
	// toward zero.
	DivByConstant(ct Ciphertext, divisor uint64) (Ciphertext, error)

	// IsInitialized reports whether the handle refers to a ciphertext
	// known to this scheme.
	IsInitialized(ct Ciphertext) bool
}
