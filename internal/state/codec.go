// Package state encodes and decodes the opaque blob that carries engine
// state between ticks.
package state

import (
	"encoding/json"

	"prosperity_go/internal/history"
)

// seriesBlob is the wire shape of one instrument's rolling series.
type seriesBlob struct {
	Prices  []float64 `json:"prices"`
	Spreads []float64 `json:"spreads"`
	Volumes []float64 `json:"volumes"`
}

// Encode serializes the state book. An empty book encodes to "{}".
func Encode(book *history.Book) string {
	blob := make(map[string]seriesBlob)
	for _, sym := range book.Symbols() {
		s := book.Series(sym)
		blob[sym] = seriesBlob{
			Prices:  s.Prices,
			Spreads: s.Spreads,
			Volumes: s.Volumes,
		}
	}

	data, err := json.Marshal(blob)
	if err != nil {
		// Plain float slices cannot fail to marshal; keep the contract of
		// always returning a valid blob anyway.
		return "{}"
	}
	return string(data)
}

// Decode parses a blob into a state book bounded at maxLen samples per
// series. An empty or unparsable blob yields an empty book; a decode failure
// never reaches the caller. Oversized series are trimmed to the newest
// maxLen samples.
func Decode(raw string, maxLen int) *history.Book {
	book := history.NewBook(maxLen)
	if raw == "" {
		return book
	}

	var blob map[string]seriesBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return history.NewBook(maxLen)
	}

	for sym, sb := range blob {
		n := len(sb.Prices)
		if len(sb.Spreads) != n || len(sb.Volumes) != n {
			// Inconsistent record: drop this instrument, keep the rest.
			continue
		}
		start := 0
		if n > maxLen {
			start = n - maxLen
		}
		s := book.Series(sym)
		for i := start; i < n; i++ {
			s.Append(sb.Prices[i], sb.Spreads[i], sb.Volumes[i])
		}
	}
	return book
}
