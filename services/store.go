package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	_ "github.com/lib/pq"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/protocol"
)

// EventStore persists the ledger's event feed.
type EventStore interface {
	// SaveEvent appends one event.
	SaveEvent(e protocol.Event) error

	// Events returns up to limit events, most recent first.
	Events(limit int) ([]protocol.Event, error)

	// Close releases store resources.
	Close() error
}

// StoreSink forwards ledger events to an EventStore. Persistence failures
// are logged and never block the ledger.
type StoreSink struct {
	Store EventStore
	Log   *slog.Logger
}

// ProtocolEvent implements protocol.EventSink.
func (s *StoreSink) ProtocolEvent(e protocol.Event) {
	if err := s.Store.SaveEvent(e); err != nil && s.Log != nil {
		s.Log.Error("persisting ledger event", "type", string(e.Type), "err", err)
	}
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ConnectionString returns the PostgreSQL connection string.
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslMode)
}

// PostgresEventStore implements EventStore with PostgreSQL persistence.
type PostgresEventStore struct {
	db *sql.DB
}

// NewPostgresEventStore connects to PostgreSQL and runs migrations.
func NewPostgresEventStore(config *PostgresConfig) (*PostgresEventStore, error) {
	db, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	store := &PostgresEventStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return store, nil
}

func (s *PostgresEventStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ledger_events (
		id BIGSERIAL PRIMARY KEY,
		event_type VARCHAR(64) NOT NULL,
		emitted_at TIMESTAMP WITH TIME ZONE NOT NULL,
		address VARCHAR(42),
		batch_id BIGINT NOT NULL,
		post_id VARCHAR(66),
		request_id BIGINT NOT NULL,
		cooldown_seconds BIGINT NOT NULL,
		score NUMERIC(78),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_events_type ON ledger_events(event_type);
	CREATE INDEX IF NOT EXISTS idx_ledger_events_post ON ledger_events(post_id);
	`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveEvent appends one event.
func (s *PostgresEventStore) SaveEvent(e protocol.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var score any
	if e.Score != nil {
		score = e.Score.Dec()
	}

	query := `
	INSERT INTO ledger_events
		(event_type, emitted_at, address, batch_id, post_id, request_id, cooldown_seconds, score)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		string(e.Type),
		e.At,
		e.Address.Hex(),
		e.BatchID,
		e.PostID.Hex(),
		uint64(e.RequestID),
		e.Cooldown,
		score,
	)
	return err
}

// Events returns up to limit events, most recent first.
func (s *PostgresEventStore) Events(limit int) ([]protocol.Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_type, emitted_at, address, batch_id, post_id, request_id, cooldown_seconds, score
		FROM ledger_events
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []protocol.Event
	for rows.Next() {
		var (
			eventType string
			emittedAt time.Time
			address   string
			batchID   uint64
			postID    string
			requestID uint64
			cooldown  uint64
			score     sql.NullString
		)

		if err := rows.Scan(&eventType, &emittedAt, &address, &batchID, &postID, &requestID, &cooldown, &score); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		e := protocol.Event{
			Type:      protocol.EventType(eventType),
			At:        emittedAt,
			Address:   common.HexToAddress(address),
			BatchID:   batchID,
			PostID:    common.HexToHash(postID),
			RequestID: protocol.RequestID(requestID),
			Cooldown:  cooldown,
		}
		if score.Valid {
			parsed, err := uint256.FromDecimal(score.String)
			if err != nil {
				return nil, fmt.Errorf("parsing stored score: %w", err)
			}
			e.Score = parsed
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// Close closes the database connection.
func (s *PostgresEventStore) Close() error {
	return s.db.Close()
}

// MemoryEventStore implements EventStore for testing without a database.
type MemoryEventStore struct {
	mu     sync.RWMutex
	events []protocol.Event
}

// NewMemoryEventStore creates an in-memory store.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{}
}

// SaveEvent appends one event.
func (s *MemoryEventStore) SaveEvent(e protocol.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

// Events returns up to limit events, most recent first.
func (s *MemoryEventStore) Events(limit int) ([]protocol.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.events)
	if limit > n {
		limit = n
	}

	out := make([]protocol.Event, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryEventStore) Close() error {
	return nil
}
