package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"ariavoice/core"
)

// Standard file names under the data directory.
const (
	MemoryFile   = "memory.json"
	HistoryFile  = "history.json"
	SettingsFile = "settings.json"
)

// LoadJSON reads a JSON file into out. A missing file is not an error; the
// caller keeps its defaults.
func LoadJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// SaveJSON writes v as JSON via a temp file and rename, so a crash mid-write
// never leaves a truncated file behind.
func SaveJSON(path string, v interface{}) error {
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Flusher periodically persists the mutable stores to the data directory
// and flushes once more on shutdown.
type Flusher struct {
	DataDir  string
	Memory   *MemoryStore
	History  *HistoryLog
	Settings *SettingsStore

	Clock    core.Clock
	Interval int // seconds between flushes; zero means 30
	Logger   *core.Logger
}

// Run blocks until ctx is cancelled, flushing every Interval seconds. The
// final flush happens after cancellation.
func (f *Flusher) Run(ctx context.Context) {
	clock := f.Clock
	if clock == nil {
		clock = core.RealClock{}
	}
	interval := f.Interval
	if interval <= 0 {
		interval = 30
	}
	tick := clock.Tick(time.Duration(interval) * time.Second)
	for {
		select {
		case <-tick:
			f.Flush()
		case <-ctx.Done():
			f.Flush()
			return
		}
	}
}

// Flush persists all stores, logging failures individually.
func (f *Flusher) Flush() {
	logger := f.Logger
	if logger == nil {
		logger = core.GetLogger()
	}
	if f.Memory != nil {
		if err := SaveJSON(filepath.Join(f.DataDir, MemoryFile), f.Memory.Snapshot()); err != nil {
			logger.Error("failed to persist memory", "error", err)
		}
	}
	if f.History != nil {
		if err := SaveJSON(filepath.Join(f.DataDir, HistoryFile), f.History.Snapshot()); err != nil {
			logger.Error("failed to persist history", "error", err)
		}
	}
	if f.Settings != nil {
		if err := SaveJSON(filepath.Join(f.DataDir, SettingsFile), f.Settings.Get()); err != nil {
			logger.Error("failed to persist settings", "error", err)
		}
	}
}

// Load restores all stores from the data directory, ignoring missing files.
func (f *Flusher) Load() {
	logger := f.Logger
	if logger == nil {
		logger = core.GetLogger()
	}
	if f.Memory != nil {
		var snap MemorySnapshot
		if err := LoadJSON(filepath.Join(f.DataDir, MemoryFile), &snap); err != nil {
			logger.Warn("failed to load memory", "error", err)
		} else if snap.Facts != nil || snap.Preferences != nil {
			f.Memory.Restore(snap)
		}
	}
	if f.History != nil {
		var snap HistorySnapshot
		if err := LoadJSON(filepath.Join(f.DataDir, HistoryFile), &snap); err != nil {
			logger.Warn("failed to load history", "error", err)
		} else if snap.Conversations != nil {
			f.History.Restore(snap)
		}
	}
	if f.Settings != nil {
		loaded := DefaultSettings()
		if err := LoadJSON(filepath.Join(f.DataDir, SettingsFile), &loaded); err != nil {
			logger.Warn("failed to load settings", "error", err)
		} else {
			f.Settings.Restore(loaded)
		}
	}
}
