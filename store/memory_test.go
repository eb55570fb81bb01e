package store

import (
	"fmt"
	"reflect"
	"testing"
)

func TestMemoryStoreAddFactsDedup(t *testing.T) {
	m := NewMemoryStore()
	m.AddFacts("gosta de café", "tem um cachorro")
	m.AddFacts("gosta de café", "mora em Recife")

	want := []string{"gosta de café", "tem um cachorro", "mora em Recife"}
	if got := m.RecentFacts(0); !reflect.DeepEqual(got, want) {
		t.Errorf("RecentFacts = %v, want %v", got, want)
	}
	if got := m.Count(); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
}

func TestMemoryStoreCapsFacts(t *testing.T) {
	m := NewMemoryStore()
	for i := 0; i < MaxFacts+10; i++ {
		m.AddFacts(fmt.Sprintf("fato %d", i))
	}

	if got := m.Count(); got != MaxFacts {
		t.Fatalf("Count = %d, want %d", got, MaxFacts)
	}
	facts := m.RecentFacts(0)
	if facts[0] != "fato 10" {
		t.Errorf("oldest fact = %q, want %q", facts[0], "fato 10")
	}
	if facts[len(facts)-1] != fmt.Sprintf("fato %d", MaxFacts+9) {
		t.Errorf("newest fact = %q, want %q", facts[len(facts)-1], fmt.Sprintf("fato %d", MaxFacts+9))
	}
}

func TestMemoryStoreIgnoresEmptyFacts(t *testing.T) {
	m := NewMemoryStore()
	m.AddFacts("", "real")
	if got := m.Count(); got != 1 {
		t.Errorf("Count = %d, want 1", got)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	m := NewMemoryStore()
	m.AddFacts("algo")
	m.SetPreferences(map[string]string{"tom": "informal"})
	m.Clear()

	if got := m.Count(); got != 0 {
		t.Errorf("Count = %d, want 0", got)
	}
	if snap := m.Snapshot(); len(snap.Preferences) != 0 {
		t.Errorf("Preferences = %v, want empty", snap.Preferences)
	}
}

func TestMemoryStoreOnChange(t *testing.T) {
	m := NewMemoryStore()
	fired := 0
	m.OnChange(func() { fired++ })

	m.AddFacts("um")
	m.SetPreferences(map[string]string{"k": "v"})
	m.Clear()
	if fired != 3 {
		t.Errorf("callback fired %d times, want 3", fired)
	}

	// Restore rehydrates persisted state and must not fire.
	m.Restore(MemorySnapshot{Facts: []string{"a", "a", "b"}})
	if fired != 3 {
		t.Errorf("callback fired %d times after Restore, want 3", fired)
	}
	if got := m.Count(); got != 2 {
		t.Errorf("Count after Restore = %d, want 2 (deduplicated)", got)
	}
}

func TestMemoryStoreSnapshotIsCopy(t *testing.T) {
	m := NewMemoryStore()
	m.AddFacts("original")
	snap := m.Snapshot()
	snap.Facts[0] = "mutated"
	snap.Preferences["x"] = "y"

	if got := m.RecentFacts(0)[0]; got != "original" {
		t.Errorf("stored fact = %q, want %q", got, "original")
	}
	if len(m.Snapshot().Preferences) != 0 {
		t.Error("snapshot mutation leaked into store")
	}
}
