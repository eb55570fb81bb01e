package store

import (
	"sync"
)

// MaxFacts caps the persisted fact list at the most recent unique entries.
const MaxFacts = 50

// MemorySnapshot is the JSON shape persisted to memory.json and returned
// by GET /api/memory.
type MemorySnapshot struct {
	Facts       []string          `json:"facts"`
	Preferences map[string]string `json:"preferences"`
}

// MemoryStore holds user facts extracted from assistant replies plus free-
// form preferences. Facts are deduplicated and capped to the most recent
// MaxFacts. Changes fire an optional callback so the chat relay can
// invalidate its cached system preamble.
type MemoryStore struct {
	mu       sync.Mutex
	facts    []string
	prefs    map[string]string
	onChange func()
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]string)}
}

// OnChange registers a callback fired after every mutation.
func (m *MemoryStore) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// AddFacts appends facts, dropping duplicates while keeping a repeated
// fact's original position, then trims to the most recent MaxFacts.
func (m *MemoryStore) AddFacts(facts ...string) {
	if len(facts) == 0 {
		return
	}
	m.mu.Lock()
	m.facts = dedup(append(m.facts, facts...))
	if len(m.facts) > MaxFacts {
		m.facts = m.facts[len(m.facts)-MaxFacts:]
	}
	cb := m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// SetPreferences merges key/value preferences.
func (m *MemoryStore) SetPreferences(prefs map[string]string) {
	if len(prefs) == 0 {
		return
	}
	m.mu.Lock()
	for k, v := range prefs {
		m.prefs[k] = v
	}
	cb := m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Clear resets facts and preferences.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	m.facts = nil
	m.prefs = make(map[string]string)
	cb := m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Snapshot returns a copy safe to serialize.
func (m *MemoryStore) Snapshot() MemorySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MemorySnapshot{
		Facts:       make([]string, len(m.facts)),
		Preferences: make(map[string]string, len(m.prefs)),
	}
	copy(snap.Facts, m.facts)
	for k, v := range m.prefs {
		snap.Preferences[k] = v
	}
	return snap
}

// Restore replaces the store contents, used when loading persisted state.
// The change callback does not fire.
func (m *MemoryStore) Restore(snap MemorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.facts = dedup(snap.Facts)
	if len(m.facts) > MaxFacts {
		m.facts = m.facts[len(m.facts)-MaxFacts:]
	}
	m.prefs = make(map[string]string, len(snap.Preferences))
	for k, v := range snap.Preferences {
		m.prefs[k] = v
	}
}

// RecentFacts returns up to n most recent facts, oldest first.
func (m *MemoryStore) RecentFacts(n int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	facts := m.facts
	if n > 0 && len(facts) > n {
		facts = facts[len(facts)-n:]
	}
	out := make([]string, len(facts))
	copy(out, facts)
	return out
}

// Count reports the stored fact count.
func (m *MemoryStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.facts)
}

func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
