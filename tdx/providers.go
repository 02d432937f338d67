package tdx

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
)

// Provider generates and verifies attestations over 64 bytes of report data.
// The report data is chosen by the caller and binds the attested statement;
// for oracle proofs it is a hash of (request id, commitment, cleartexts).
type Provider interface {
	// AttestationType identifies the proof format produced by this provider.
	AttestationType() string

	// Attest produces an attestation binding the report data.
	Attest(reportData [64]byte) ([]byte, error)

	// Verify validates an attestation against the expected report data and
	// returns the attested measurements if valid.
	Verify(attestation []byte, expectedReportData [64]byte) (map[int][]byte, error)
}

// HMACProvider authenticates report data with a shared key instead of a TEE
// quote. It is used in tests and demo deployments without TDX hardware; it
// proves the result came from a holder of the key, nothing more.
type HMACProvider struct {
	Key []byte
}

func (p *HMACProvider) AttestationType() string {
	return "hmac-sha256"
}

// Attest returns an HMAC-SHA256 tag over the report data.
func (p *HMACProvider) Attest(reportData [64]byte) ([]byte, error) {
	h := hmac.New(sha256.New, p.Key)
	h.Write(reportData[:])
	return h.Sum(nil), nil
}

// Verify checks the tag against the expected report data.
func (p *HMACProvider) Verify(attestation []byte, expectedReportData [64]byte) (map[int][]byte, error) {
	h := hmac.New(sha256.New, p.Key)
	h.Write(expectedReportData[:])
	expected := h.Sum(nil)

	if !hmac.Equal(attestation, expected) {
		return nil, errors.New("hmac attestation mismatch")
	}

	// No measurements to report for a keyed MAC.
	return map[int][]byte{}, nil
}
