// Package oracle implements the decryption oracle side of the scoring
// protocol's request/callback contract.
//
// The protocol submits ciphertext handles through the DecryptionOracle
// interface and receives the cleartexts later, through its OnDecryptionResult
// entry point, together with a proof binding the request id to the exact
// cleartext bytes delivered. Request ids are assigned by the oracle and
// increase monotonically.
//
// Proofs are attestations over a 64-byte report derived from the result (see
// ReportData), produced and checked through a tdx.Provider: DCAP quotes when
// the oracle runs in a TDX enclave, keyed MACs otherwise. Verifier adapts a
// provider into the protocol's ProofVerifier.
//
// InMemoryOracle is the in-process oracle used by the demo node and the test
// suite. Deliveries are pumped explicitly with DeliverPending so callers
// control the gap between request and callback; requests can also be dropped
// to model a callback that never arrives.
package oracle
