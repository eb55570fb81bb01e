package store

import (
	"sync"
	"time"
)

const (
	historyCap   = 1000
	historyPrune = 500
)

// LogEntry is one completed exchange in the conversation log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	Sentiment string    `json:"sentiment"`
}

// HistorySnapshot is the JSON shape persisted to history.json.
type HistorySnapshot struct {
	Conversations []LogEntry `json:"conversations"`
}

// HistoryLog records completed exchanges across all sessions. Once the log
// passes historyCap entries it is pruned to the most recent historyPrune.
type HistoryLog struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewHistoryLog() *HistoryLog {
	return &HistoryLog{}
}

// Append records one exchange.
func (h *HistoryLog) Append(entry LogEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, entry)
	if len(h.entries) > historyCap {
		h.entries = h.entries[len(h.entries)-historyPrune:]
	}
}

// Recent returns up to limit most recent entries, oldest first, plus the
// total count.
func (h *HistoryLog) Recent(limit int) ([]LogEntry, int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := h.entries
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]LogEntry, len(entries))
	copy(out, entries)
	return out, len(h.entries)
}

// Snapshot returns a copy safe to serialize.
func (h *HistoryLog) Snapshot() HistorySnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap := HistorySnapshot{Conversations: make([]LogEntry, len(h.entries))}
	copy(snap.Conversations, h.entries)
	return snap
}

// Restore replaces the log with persisted state.
func (h *HistoryLog) Restore(snap HistorySnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = snap.Conversations
	if len(h.entries) > historyCap {
		h.entries = h.entries[len(h.entries)-historyPrune:]
	}
}
