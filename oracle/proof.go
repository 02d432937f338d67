package oracle

import (
	"encoding/binary"
	"fmt"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/protocol"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/tdx"
)

// ReportData derives the 64-byte attestation report binding a decryption
// result: the first 32 bytes are keccak256(requestID || cleartexts), the
// rest are zero. Both the oracle (attesting) and the node (verifying)
// compute it the same way.
func ReportData(id protocol.RequestID, cleartexts []byte) [64]byte {
	var idBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], uint64(id))

	digest := gethcrypto.Keccak256(idBytes[:], cleartexts)

	var report [64]byte
	copy(report[:32], digest)
	return report
}

// Verifier adapts an attestation provider into the protocol's ProofVerifier.
// When Measurements is set, the attested measurements must additionally match
// one of the published oracle builds.
type Verifier struct {
	Provider     tdx.Provider
	Measurements tdx.MeasurementSource
}

// VerifyDecryptionProof checks that the proof attests the report data
// derived from the request id and cleartexts.
func (v *Verifier) VerifyDecryptionProof(id protocol.RequestID, cleartexts, proof []byte) error {
	measurements, err := v.Provider.Verify(proof, ReportData(id, cleartexts))
	if err != nil {
		return fmt.Errorf("%s attestation: %w", v.Provider.AttestationType(), err)
	}

	if v.Measurements != nil {
		allowed, err := v.Measurements.GetAllowedMeasurements()
		if err != nil {
			return fmt.Errorf("loading allowed measurements: %w", err)
		}
		if _, err := tdx.VerifyMeasurementsMatch(allowed, measurements); err != nil {
			return fmt.Errorf("oracle build not allowed: %w", err)
		}
	}

	return nil
}
