package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"

	"prosperity_go/internal/domain"
	"prosperity_go/internal/obs"
)

// TickStore handles persistent storage of session ticks in SQLite.
//
// Two append-only tables back it: snapshots holds the per-tick market view
// keyed by timestamp, decisions holds the quoting output for analysis. A
// metadata table carries the serialized tracker state so a session can be
// resumed.
type TickStore struct {
	db *sql.DB
}

// snapshotPayload is the JSON wire form of one market snapshot.
type snapshotPayload struct {
	OrderDepths map[string]*domain.OrderDepth `json:"order_depths"`
	Position    map[string]int                `json:"position"`
}

// NewTickStore creates a new SQLite tick store with WAL mode enabled.
func NewTickStore(dbPath string) (*TickStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			ts INTEGER PRIMARY KEY,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshots table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS decisions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			symbol TEXT NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create decisions table: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_decisions_ts ON decisions (ts);`)
	if err != nil {
		return nil, fmt.Errorf("failed to create decisions index: %w", err)
	}

	return &TickStore{db: db}, nil
}

// SaveSnapshot stores one tick's market view. The timestamp is the key, so
// re-recording a tick overwrites the earlier snapshot.
func (s *TickStore) SaveSnapshot(ctx context.Context, st domain.TradingState) error {
	payload, err := json.Marshal(snapshotPayload{
		OrderDepths: st.OrderDepths,
		Position:    st.Position,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO snapshots (ts, payload) VALUES (?, ?) ON CONFLICT(ts) DO UPDATE SET payload=excluded.payload",
		st.Timestamp, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// LoadSnapshots loads all snapshots from fromTs (inclusive) in timestamp
// order. Used to replay a recorded session.
func (s *TickStore) LoadSnapshots(ctx context.Context, fromTs int64) ([]domain.TradingState, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT ts, payload FROM snapshots WHERE ts >= ? ORDER BY ts ASC",
		fromTs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var states []domain.TradingState
	for rows.Next() {
		var ts int64
		var payload []byte
		if err := rows.Scan(&ts, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		var snap snapshotPayload
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot %d: %w", ts, err)
		}
		states = append(states, domain.TradingState{
			Timestamp:   ts,
			OrderDepths: snap.OrderDepths,
			Position:    snap.Position,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return states, nil
}

// SaveDecision stores one instrument's quoting decision.
func (s *TickStore) SaveDecision(ctx context.Context, d obs.TickDecision) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO decisions (ts, symbol, payload) VALUES (?, ?, ?)",
		d.Timestamp, d.Symbol, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert decision: %w", err)
	}
	return nil
}

// LoadDecisions loads all stored decisions in insertion order.
func (s *TickStore) LoadDecisions(ctx context.Context) ([]obs.TickDecision, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, payload FROM decisions ORDER BY id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var decisions []obs.TickDecision
	for rows.Next() {
		var id int64
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}

		var d obs.TickDecision
		if err := json.Unmarshal(payload, &d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal decision %d: %w", id, err)
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return decisions, nil
}

// UpsertMetadata saves a key-value pair to the metadata table.
func (s *TickStore) UpsertMetadata(ctx context.Context, key, value string, ts int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, ts,
	)
	return err
}

// GetMetadata retrieves a value from the metadata table. Missing keys
// return an empty string.
func (s *TickStore) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// LastTimestamp returns the highest snapshot timestamp stored, or -1 if
// the store is empty.
func (s *TickStore) LastTimestamp(ctx context.Context) (int64, error) {
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MAX(ts) FROM snapshots").Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to get last timestamp: %w", err)
	}
	if !last.Valid {
		return -1, nil
	}
	return last.Int64, nil
}

// Close closes the database connection.
func (s *TickStore) Close() error {
	return s.db.Close()
}

// Recorder adapts a TickStore to the decision emitter interface. Write
// failures are logged rather than surfaced, so a broken disk never stalls
// the quoting loop.
type Recorder struct {
	store *TickStore
	log   *slog.Logger
}

// NewRecorder wraps a store for use as an emitter.
func NewRecorder(store *TickStore, log *slog.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

func (r *Recorder) EmitTick(d obs.TickDecision) {
	if err := r.store.SaveDecision(context.Background(), d); err != nil {
		r.log.Error("failed to record decision",
			slog.String("symbol", d.Symbol),
			slog.Int64("ts", d.Timestamp),
			slog.String("error", err.Error()))
	}
}
