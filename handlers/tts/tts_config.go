package tts

import "time"

// TTSConfig controls relay-level behaviour: where synthesized audio lives,
// how it is served, and how the cache is swept.
type TTSConfig struct {
	// AudioDir receives synthesized mp3 files, keyed by content hash.
	AudioDir string
	// URLPrefix is the public path under which AudioDir is served.
	URLPrefix string
	// SweepInterval is the period between cache sweeps.
	SweepInterval time.Duration
	// TTL is the age past which cached files are deleted. Serving a file
	// does not refresh its TTL.
	TTL time.Duration
}

// DefaultConfig returns a TTSConfig with the standard sweep cadence.
func DefaultConfig() TTSConfig {
	return TTSConfig{
		AudioDir:      "public/audio",
		URLPrefix:     "/audio",
		SweepInterval: 60 * time.Second,
		TTL:           10 * time.Minute,
	}
}
