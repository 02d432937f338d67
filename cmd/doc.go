// Package cmd provides CLI commands for the fact-check scoring node.
//
// # Commands
//
// factcheck-node: Runs a scoring node: the ledger, the HTTP API, the admin
// control surface, and an in-process decryption oracle delivering results
// back through the callback endpoint.
//
//	go run ./cmd/factcheck-node --addr=:8080 --owner=0xabc... --admin-token=admin:secret
//	go run ./cmd/factcheck-node --postgres-host=localhost --postgres-db=factcheck
//
// factcheck-cli: CLI for interacting with a running node. Write operations
// are signed with a secp256k1 key; the node recovers the caller address from
// the signature.
//
//	go run ./cmd/factcheck-cli submit -n http://localhost:8080 -k <hexkey> --content 20 --interaction 10
//	go run ./cmd/factcheck-cli score -n http://localhost:8080 -k <hexkey> --post 0x...
//	go run ./cmd/factcheck-cli status -n http://localhost:8080
//
// Admin operations additionally authenticate with the node's admin token:
//
//	go run ./cmd/factcheck-cli admin open -n http://localhost:8080 -k <ownerkey> -t admin:secret
package cmd
