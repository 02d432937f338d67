package services

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/protocol"
)

func TestMemoryEventStore(t *testing.T) {
	store := NewMemoryEventStore()

	events, err := store.Events(10)
	require.NoError(t, err)
	require.Empty(t, events)

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.SaveEvent(protocol.Event{
			Type:    protocol.EventBatchOpened,
			At:      time.Unix(int64(i), 0),
			BatchID: uint64(i),
		}))
	}

	events, err = store.Events(2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, uint64(3), events[0].BatchID)
	require.Equal(t, uint64(2), events[1].BatchID)

	// Limit larger than the stored count returns everything.
	events, err = store.Events(10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	require.NoError(t, store.Close())
}

func TestStoreSink(t *testing.T) {
	store := NewMemoryEventStore()
	sink := &StoreSink{Store: store}

	sink.ProtocolEvent(protocol.Event{
		Type:   protocol.EventScoreRevealed,
		PostID: common.HexToHash("0x01"),
		Score:  uint256.NewInt(7),
	})

	events, err := store.Events(1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, protocol.EventScoreRevealed, events[0].Type)
	require.True(t, events[0].Score.Eq(uint256.NewInt(7)))
}

func TestPostgresConnectionString(t *testing.T) {
	cfg := &PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "factcheck",
		Password: "secret",
		Database: "events",
	}
	require.Equal(t,
		"host=localhost port=5432 user=factcheck password=secret dbname=events sslmode=disable",
		cfg.ConnectionString())

	cfg.SSLMode = "require"
	require.Contains(t, cfg.ConnectionString(), "sslmode=require")
}

func TestSignedRoundtrip(t *testing.T) {
	key, err := gethcrypto.GenerateKey()
	require.NoError(t, err)

	req := &CooldownRequest{Seconds: 42}
	signed, err := NewSigned(key, req)
	require.NoError(t, err)

	got, signer, err := signed.Recover()
	require.NoError(t, err)
	require.Equal(t, uint64(42), got.Seconds)
	require.Equal(t, gethcrypto.PubkeyToAddress(key.PublicKey), signer)

	// Tampering with the body changes the recovered address.
	signed.Object.Seconds = 43
	_, tampered, err := signed.Recover()
	require.NoError(t, err)
	require.NotEqual(t, signer, tampered)
}
