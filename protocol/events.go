package protocol

import (
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// EventType identifies a protocol event.
type EventType string

const (
	EventOwnershipTransferred EventType = "ownership_transferred"
	EventProviderAdded        EventType = "provider_added"
	EventProviderRemoved      EventType = "provider_removed"
	EventCooldownChanged      EventType = "cooldown_changed"
	EventPaused               EventType = "paused"
	EventUnpaused             EventType = "unpaused"
	EventBatchOpened          EventType = "batch_opened"
	EventBatchClosed          EventType = "batch_closed"
	EventPostSubmitted        EventType = "post_submitted"
	EventDecryptionRequested  EventType = "decryption_requested"
	EventScoreRevealed        EventType = "score_revealed"
)

// Event is emitted after every successful state mutation, for auditors and
// the presentation layer. Fields not relevant to the event type are zero.
type Event struct {
	Type EventType `json:"type"`
	At   time.Time `json:"at"`

	// Address is the affected address: the new owner, the provider added
	// or removed, or the submitter of a post.
	Address common.Address `json:"address,omitempty"`

	BatchID   uint64       `json:"batch_id,omitempty"`
	PostID    common.Hash  `json:"post_id,omitempty"`
	RequestID RequestID    `json:"request_id,omitempty"`
	Cooldown  uint64       `json:"cooldown_seconds,omitempty"`
	Score     *uint256.Int `json:"score,omitempty"`
}

// EventSink receives protocol events. Sinks must not call back into the
// Ledger: events are delivered while the ledger mutex is held.
type EventSink interface {
	ProtocolEvent(e Event)
}

// SlogSink logs events through a structured logger.
type SlogSink struct {
	Log *slog.Logger
}

func (s *SlogSink) ProtocolEvent(e Event) {
	attrs := []any{"type", string(e.Type)}
	if e.Address != (common.Address{}) {
		attrs = append(attrs, "address", e.Address.Hex())
	}
	if e.BatchID != 0 {
		attrs = append(attrs, "batchID", e.BatchID)
	}
	if e.PostID != (common.Hash{}) {
		attrs = append(attrs, "postID", e.PostID.Hex())
	}
	if e.RequestID != 0 {
		attrs = append(attrs, "requestID", uint64(e.RequestID))
	}
	if e.Score != nil {
		attrs = append(attrs, "score", e.Score.Dec())
	}
	s.Log.Info("protocol event", attrs...)
}

// MultiSink fans an event out to several sinks.
type MultiSink []EventSink

func (m MultiSink) ProtocolEvent(e Event) {
	for _, s := range m {
		s.ProtocolEvent(e)
	}
}

// nopSink drops events. Used when no sink is configured.
type nopSink struct{}

func (nopSink) ProtocolEvent(Event) {}
