package protocol

import "errors"

// Authorization errors. Caller-correctable: retry once the caller holds the
// required role.
var (
	ErrNotOwner    = errors.New("caller is not the owner")
	ErrNotProvider = errors.New("caller is not a registered provider")
)

// Lifecycle errors. Caller-correctable: retry once the system is in the
// required state.
var (
	ErrPaused            = errors.New("protocol is paused")
	ErrInvalidBatchState = errors.New("invalid batch state transition")
	ErrBatchClosed       = errors.New("no batch is open for submissions")
)

// Rate-limit errors. Time-correctable.
var ErrCooldownActive = errors.New("cooldown active for this action")

// Duplicate-work errors.
var ErrPostAlreadyProcessed = errors.New("post has already been processed")

// Integrity errors. Never retried with the same request: they indicate a
// genuine attack or a protocol bug.
var (
	ErrUnknownRequest    = errors.New("unknown decryption request")
	ErrReplay            = errors.New("decryption request already finalized")
	ErrStateMismatch     = errors.New("ciphertexts do not match request commitment")
	ErrProofVerification = errors.New("decryption proof verification failed")
	ErrMalformedCleartext = errors.New("cleartext length does not match expected width")
)

// Precondition errors.
var (
	ErrUninitializedCiphertext = errors.New("ciphertext handle is not initialized")
	ErrUnknownPost             = errors.New("unknown post")
)
