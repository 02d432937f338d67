// Package tdx provides attestation providers used to authenticate decryption
// oracle results.
//
// The decryption oracle runs outside the protocol and is untrusted until
// proved: every result it delivers carries a proof binding the request id,
// the ciphertext commitment and the cleartext bytes. When the oracle runs
// inside an Intel TDX enclave that proof is a DCAP quote whose report data
// commits to those values; this package generates and verifies such quotes.
//
// Three providers are available:
//
//   - TDXProvider: quotes from the local TDX device (configfs-tsm)
//   - RemoteDCAPProvider: quotes fetched from a remote attestation service,
//     verified locally
//   - HMACProvider: keyed MACs instead of quotes, for tests and demo
//     deployments without TEE hardware
//
// Quote verification checks the DCAP certificate chain and collateral and
// validates the report data against the expected binding.
package tdx
