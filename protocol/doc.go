// Package protocol implements the confidential fact-check scoring protocol.
//
// The protocol accepts opaque encrypted fact-check scores for posts, derives
// a homomorphically computed credibility score from them, and reveals the
// cleartext result through an asynchronous decryption oracle. It guarantees
// that each post is scored at most once, that decryption results cannot be
// replayed, and that write access is restricted to a permissioned provider
// set under owner control with batch and pause gating.
//
// # Architecture
//
// All protocol state is owned by a single Ledger value. Every state-mutating
// operation takes the caller's address explicitly and runs under one mutex,
// modeling the sequential, globally ordered execution of the ledger the
// protocol is resident on. There is no other locking discipline.
//
//   - Access control: one transferable owner; a provider set the owner
//     curates. Providers submit posts and request scoring.
//   - Rate gating: a shared cooldown duration with independent per-address
//     clocks for the two action classes (submission, decryption request).
//   - Batch lifecycle: at most one open batch; ids strictly increase on
//     each open. Submissions require an open batch.
//   - Scoring: credibility = content × interaction / 100, computed entirely
//     on ciphertexts through the fhe.Scheme capability. Division truncates
//     toward zero and the protocol treats it as exact.
//   - Oracle bridge: ComputeScore issues a one-shot decryption request and
//     records a commitment over the exact ciphertexts submitted.
//     OnDecryptionResult validates the asynchronous callback against that
//     commitment and a proof of authenticity, then finalizes the request
//     exactly once.
//
// # Request/callback gap
//
// A decryption request returns an id synchronously; the result arrives at an
// arbitrary later time from an untrusted-until-proved caller. The protocol
// tolerates the callback never arriving (the request simply stays pending),
// arriving with mismatched ciphertexts or a bad proof (rejected, no state
// change), or arriving twice (second delivery rejected with ErrReplay). No
// operation blocks waiting for a callback.
//
// # Errors
//
// All failures are synchronous rejections with no partial state mutation.
// Sentinel errors are grouped by taxonomy in errors.go; integrity errors
// (replay, commitment mismatch, proof failure, malformed cleartext) indicate
// an attack or a protocol bug and should be surfaced to operators rather
// than retried.
package protocol
