package backtest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"prosperity_go/internal/domain"
	"prosperity_go/internal/storage"
)

// Source supplies a recorded session as a timestamp-ordered tick sequence.
type Source interface {
	Ticks(ctx context.Context) ([]domain.TradingState, error)
}

// StoreSource replays snapshots out of a SQLite tick store.
type StoreSource struct {
	store *storage.TickStore
}

// NewStoreSource wraps an open tick store.
func NewStoreSource(store *storage.TickStore) *StoreSource {
	return &StoreSource{store: store}
}

func (s *StoreSource) Ticks(ctx context.Context) ([]domain.TradingState, error) {
	return s.store.LoadSnapshots(ctx, 0)
}

// tickLine is the JSON-lines wire form of one recorded tick.
type tickLine struct {
	Timestamp   int64                         `json:"timestamp"`
	OrderDepths map[string]*domain.OrderDepth `json:"order_depths"`
}

// FileSource replays a JSON-lines session file, one tick per line. Blank
// lines are skipped; ticks are sorted by timestamp before replay.
type FileSource struct {
	path string
}

// NewFileSource points at a session file on disk.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Ticks(ctx context.Context) ([]domain.TradingState, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}
	defer f.Close()

	var states []domain.TradingState
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var t tickLine
		if err := json.Unmarshal(line, &t); err != nil {
			return nil, fmt.Errorf("bad tick on line %d: %w", lineNo, err)
		}
		for _, depth := range t.OrderDepths {
			depth.Normalize()
		}
		states = append(states, domain.TradingState{
			Timestamp:   t.Timestamp,
			OrderDepths: t.OrderDepths,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].Timestamp < states[j].Timestamp
	})
	return states, nil
}
