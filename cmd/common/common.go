// Package common provides shared utilities for the fact-check CLI commands.
//
// This package contains helpers used by the standalone binaries (node, cli)
// to reduce duplication: secp256k1 key loading, attestation provider and
// measurement source construction.
package common

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/tdx"
)

// LoadOrGenerateKey loads a secp256k1 private key from a hex string, or
// generates a fresh key if hexKey is empty.
func LoadOrGenerateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	if hexKey != "" {
		key, err := gethcrypto.HexToECDSA(hexKey)
		if err != nil {
			return nil, fmt.Errorf("invalid key hex: %w", err)
		}
		return key, nil
	}
	return gethcrypto.GenerateKey()
}

// NewAttestationProvider creates the oracle proof provider based on flags.
// Returns TDXProvider or RemoteDCAPProvider when useTDX is true, otherwise an
// HMACProvider keyed with hmacKey for deployments without TDX hardware.
func NewAttestationProvider(useTDX bool, remoteTDXURL, hmacKey string) tdx.Provider {
	if useTDX {
		if remoteTDXURL != "" {
			return &tdx.RemoteDCAPProvider{URL: remoteTDXURL, Timeout: 30 * time.Second}
		}
		return &tdx.TDXProvider{}
	}
	return &tdx.HMACProvider{Key: []byte(hmacKey)}
}

// NewMeasurementSource creates a measurement source from a URL. Returns nil
// if measurementsURL is empty, indicating proofs are accepted from any
// oracle build.
func NewMeasurementSource(measurementsURL string) tdx.MeasurementSource {
	if measurementsURL != "" {
		return tdx.NewRemoteMeasurementSource(measurementsURL)
	}
	return nil
}
