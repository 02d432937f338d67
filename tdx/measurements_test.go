package tdx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticMeasurementSource(t *testing.T) {
	measurements := PublishedMeasurements{
		{
			MeasurementID: "build-1",
			Measurements: map[int]MeasurementValue{
				0: {Expected: "0102"},
				1: {Expected: "0304"},
			},
		},
		{
			MeasurementID: "build-2",
			Measurements: map[int]MeasurementValue{
				0: {Expected: "0506"},
				1: {Expected: "0708"},
			},
		},
	}

	source := NewStaticMeasurementSource(measurements)

	retrieved, err := source.GetAllowedMeasurements()
	require.NoError(t, err)
	require.Len(t, retrieved, 2)
	require.Equal(t, "build-1", retrieved[0].MeasurementID)
	require.Equal(t, "0102", retrieved[0].Measurements[0].Expected)
}

func TestVerifyMeasurementsMatch(t *testing.T) {
	allowed := PublishedMeasurements{
		{
			MeasurementID: "build-1",
			Measurements: map[int]MeasurementValue{
				0: {Expected: "01"},
				1: {Expected: "02"},
			},
		},
		{
			MeasurementID: "build-2",
			Measurements: map[int]MeasurementValue{
				0: {Expected: "03"},
				1: {Expected: "04"},
			},
		},
	}

	matched, err := VerifyMeasurementsMatch(allowed, Measurements{0: []byte{0x01}, 1: []byte{0x02}})
	require.NoError(t, err)
	require.Equal(t, "build-1", matched.MeasurementID)

	matched, err = VerifyMeasurementsMatch(allowed, Measurements{0: []byte{0x03}, 1: []byte{0x04}})
	require.NoError(t, err)
	require.Equal(t, "build-2", matched.MeasurementID)

	_, err = VerifyMeasurementsMatch(allowed, Measurements{0: []byte{0x01}, 1: []byte{0x04}})
	require.Error(t, err)

	// Missing register index is a mismatch.
	_, err = VerifyMeasurementsMatch(allowed, Measurements{0: []byte{0x01}})
	require.Error(t, err)
}

func TestMeasurementEntryToMeasurements(t *testing.T) {
	entry := MeasurementEntry{
		MeasurementID: "build-1",
		Measurements: map[int]MeasurementValue{
			0: {Expected: "0a0b"},
			3: {Expected: "ff"},
		},
	}

	m, err := entry.ToMeasurements()
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0x0b}, m[0])
	require.Equal(t, []byte{0xff}, m[3])

	entry.Measurements[1] = MeasurementValue{Expected: "not-hex"}
	_, err = entry.ToMeasurements()
	require.Error(t, err)
}

func TestRemoteMeasurementSource(t *testing.T) {
	published := PublishedMeasurements{
		{
			MeasurementID: "build-remote",
			Measurements:  map[int]MeasurementValue{0: {Expected: "aa"}},
		},
	}

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		require.NoError(t, json.NewEncoder(w).Encode(published))
	}))
	defer srv.Close()

	source := NewRemoteMeasurementSource(srv.URL)

	got, err := source.GetAllowedMeasurements()
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "build-remote", got[0].MeasurementID)

	// Second call is served from cache.
	_, err = source.GetAllowedMeasurements()
	require.NoError(t, err)
	require.Equal(t, 1, hits)
}

func TestRemoteMeasurementSourceHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	source := NewRemoteMeasurementSource(srv.URL)
	_, err := source.GetAllowedMeasurements()
	require.Error(t, err)
}
