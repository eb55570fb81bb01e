package orchestrator

import "time"

// Config controls orchestrator timing and behaviour. Zero values fall back
// to the defaults below.
type Config struct {
	// SilenceTimeout is how long to wait after the last interim transcript
	// before treating it as final.
	SilenceTimeout time.Duration
	// RequestTimeout bounds one assistant round trip. Once the upstream
	// call is dispatched the server runs it to completion regardless.
	RequestTimeout time.Duration
	// ErrorCooldown is the pause in the error state before returning to
	// idle.
	ErrorCooldown time.Duration
	// RetryBase is the first transient-recognition retry delay; each retry
	// doubles it.
	RetryBase time.Duration
	// MaxRetries caps transient-recognition retries before giving up.
	MaxRetries int
	// Continuous re-enters listening automatically after each reply.
	Continuous bool
	// WakeWord gates dispatch until a wake word is heard.
	WakeWord bool
	// WakeWords are the accepted trigger phrases, lowercase.
	WakeWords []string
}

// DefaultConfig returns the standard timing profile.
func DefaultConfig() Config {
	return Config{
		SilenceTimeout: time.Second,
		RequestTimeout: 30 * time.Second,
		ErrorCooldown:  2 * time.Second,
		RetryBase:      time.Second,
		MaxRetries:     3,
		Continuous:     true,
		WakeWords:      []string{"aria", "ei aria", "oi aria", "olá aria"},
	}
}
