package tdx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHMACProviderRoundTrip(t *testing.T) {
	p := &HMACProvider{Key: []byte("test-oracle-key")}

	var reportData [64]byte
	copy(reportData[:], "binding bytes")

	proof, err := p.Attest(reportData)
	require.NoError(t, err)
	require.Len(t, proof, 32)

	_, err = p.Verify(proof, reportData)
	require.NoError(t, err)
}

func TestHMACProviderRejectsTamperedReportData(t *testing.T) {
	p := &HMACProvider{Key: []byte("test-oracle-key")}

	var reportData [64]byte
	copy(reportData[:], "binding bytes")

	proof, err := p.Attest(reportData)
	require.NoError(t, err)

	reportData[0] ^= 0xff
	_, err = p.Verify(proof, reportData)
	require.Error(t, err)
}

func TestHMACProviderRejectsWrongKey(t *testing.T) {
	var reportData [64]byte

	proof, err := (&HMACProvider{Key: []byte("key-a")}).Attest(reportData)
	require.NoError(t, err)

	_, err = (&HMACProvider{Key: []byte("key-b")}).Verify(proof, reportData)
	require.Error(t, err)
}
