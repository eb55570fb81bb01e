package core

import "time"

// Clock abstracts time for the cache sweeper, the store flusher, and the
// orchestrator's retry timers, so tests never sleep on real timers.
type Clock interface {
	Now() time.Time
	Tick(d time.Duration) <-chan time.Time
	After(d time.Duration) <-chan time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) Tick(d time.Duration) <-chan time.Time { return time.Tick(d) }

func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
