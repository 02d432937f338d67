// Package testutil provides fixtures for testing the scoring protocol.
//
// Stack assembles a working deployment of the ledger together with the mock
// scheme, the in-memory oracle, and a keyed attestation provider, wired the
// way cmd/factcheck-node wires them. Tests that need fine-grained control
// over a single component still construct it directly; Stack covers the
// common case of an end-to-end flow.
//
// This package is intended for testing purposes only.
package testutil
