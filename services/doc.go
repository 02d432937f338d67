// Package services exposes the scoring ledger over HTTP.
//
// NodeService registers the public API and the admin control surface on a
// chi router. Write operations travel inside Signed envelopes; the submitter
// address is recovered from the secp256k1 signature rather than trusted from
// the request body, mirroring how a ledger would see msg.sender. The oracle
// callback endpoint is unauthenticated because the ledger validates the
// commitment and the attestation proof itself.
//
// The package also provides EventStore implementations (PostgreSQL and
// in-memory) that persist the ledger's event feed.
package services
