package protocol

import (
	"context"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
)

// RequestID identifies a decryption request issued to the oracle. Ids are
// assigned by the oracle and returned synchronously.
type RequestID uint64

// DecryptionOracle is the external decryption network as seen by the
// protocol: a synchronous "issue request, get id" call whose result arrives
// later through the ledger's OnDecryptionResult entry point.
//
// The oracle is untrusted until proved. Nothing in the protocol blocks on a
// result arriving; a request whose result never arrives simply stays
// pending.
type DecryptionOracle interface {
	// RequestDecryption submits ciphertext handles for asynchronous
	// decryption and returns the assigned request id.
	RequestDecryption(ctx context.Context, cts []fhe.Ciphertext) (RequestID, error)
}

// ProofVerifier authenticates an oracle result: the proof must bind the
// request id and the exact cleartext bytes delivered. Implementations wrap
// a tdx.Provider (DCAP quotes or keyed MACs).
type ProofVerifier interface {
	VerifyDecryptionProof(id RequestID, cleartexts, proof []byte) error
}
