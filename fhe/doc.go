// Package fhe defines the homomorphic ciphertext capability used by the
// scoring protocol.
//
// Ciphertexts are opaque handles: the protocol core never inspects the
// encrypted value, it only moves handles between operations declared on the
// Scheme interface. The capability set is deliberately small:
//
//   - EncryptUint64: encrypt a small integer (used by submitters and tests)
//   - Zero: trivial encryption of zero, used to lazily materialize handles
//     a submitter left uninitialized
//   - Multiply: ciphertext-by-ciphertext multiplication
//   - DivByConstant: division of a ciphertext by a public constant
//   - IsInitialized: whether a handle refers to a live ciphertext
//
// Division semantics: DivByConstant truncates toward zero. Real homomorphic
// schemes often provide only approximate division; the scoring protocol
// depends on exact truncating integer division and any Scheme implementation
// must provide it. This is tested explicitly in the protocol package.
//
// MockScheme is the in-process implementation used by the demo node and the
// test suite. It keeps plaintexts in memory keyed by random handles and
// provides no actual cryptographic hiding.
package fhe
