package tts

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	mp3 "github.com/hajimehoshi/go-mp3"

	"ariavoice/core"
	"ariavoice/store"
	"ariavoice/utils/text"
)

// SpeechSynthesizer is the TTS engine contract. Implementations live under
// services/<vendor>/tts and are swappable without touching the relay.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, voice store.Voice, rate string) ([]byte, error)
}

// Result describes one synthesized (or cache-served) audio file.
type Result struct {
	URL      string        `json:"audioUrl"`
	Cached   bool          `json:"cached"`
	Duration time.Duration `json:"-"`
}

// TTSRelay hashes (text, voice) to a file name, serves cache hits from
// disk, and otherwise invokes the synthesizer. Concurrent identical
// requests are not coalesced: both invoke the engine and the second write
// wins, which wastes an upstream call but stays correct.
type TTSRelay struct {
	synthesizer SpeechSynthesizer
	config      TTSConfig
	clock       core.Clock
	logger      *core.Logger
}

func NewTTSRelay(synthesizer SpeechSynthesizer, config TTSConfig, clock core.Clock, logger *core.Logger) *TTSRelay {
	def := DefaultConfig()
	if config.AudioDir == "" {
		config.AudioDir = def.AudioDir
	}
	if config.URLPrefix == "" {
		config.URLPrefix = def.URLPrefix
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = def.SweepInterval
	}
	if config.TTL <= 0 {
		config.TTL = def.TTL
	}
	if clock == nil {
		clock = core.RealClock{}
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &TTSRelay{
		synthesizer: synthesizer,
		config:      config,
		clock:       clock,
		logger:      logger,
	}
}

// CacheKey derives the deterministic cache key for a (text, voice) pair:
// the first 12 hex chars of the md5 digest.
func CacheKey(text, voiceID string) string {
	sum := md5.Sum([]byte(text + voiceID))
	return hex.EncodeToString(sum[:])[:12]
}

// FormatRate renders a speed percentage the way the engine expects, e.g.
// "+10%" or "-25%".
func FormatRate(speed int) string {
	if speed >= 0 {
		return fmt.Sprintf("+%d%%", speed)
	}
	return fmt.Sprintf("%d%%", speed)
}

// Synthesize returns audio for the given text and voice, from cache when
// possible. A synthesis failure leaves no cache entry behind.
func (r *TTSRelay) Synthesize(ctx context.Context, rawText, voiceID string, speed int) (Result, error) {
	if len(bytes.TrimSpace([]byte(rawText))) == 0 {
		return Result{}, &core.InvalidInputError{Field: "text", Reason: "must not be empty"}
	}

	voice := store.LookupVoice(voiceID)
	key := CacheKey(rawText, voice.ID)
	filename := key + ".mp3"
	path := filepath.Join(r.config.AudioDir, filename)
	url := r.config.URLPrefix + "/" + filename

	if data, err := os.ReadFile(path); err == nil {
		return Result{URL: url, Cached: true, Duration: mp3Duration(data)}, nil
	}

	speech := text.SanitizeForSpeech(rawText)
	data, err := r.synthesizer.Synthesize(ctx, speech, voice, FormatRate(speed))
	if err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(r.config.AudioDir, 0o755); err != nil {
		return Result{}, &core.SynthesisError{Engine: "cache", Err: err}
	}
	// Write-then-rename so a concurrent request never serves a partial file.
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return Result{}, &core.SynthesisError{Engine: "cache", Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return Result{}, &core.SynthesisError{Engine: "cache", Err: err}
	}

	return Result{URL: url, Cached: false, Duration: mp3Duration(data)}, nil
}

// ReadCached returns the raw bytes for a previously synthesized result.
func (r *TTSRelay) ReadCached(url string) ([]byte, error) {
	return os.ReadFile(filepath.Join(r.config.AudioDir, filepath.Base(url)))
}

// SweepLoop blocks until ctx is cancelled, deleting cached files older than
// the TTL on every tick.
func (r *TTSRelay) SweepLoop(ctx context.Context) {
	tick := r.clock.Tick(r.config.SweepInterval)
	for {
		select {
		case <-tick:
			r.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

// Sweep deletes expired cache files once.
func (r *TTSRelay) Sweep() {
	entries, err := os.ReadDir(r.config.AudioDir)
	if err != nil {
		return
	}
	now := r.clock.Now()
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > r.config.TTL {
			if os.Remove(filepath.Join(r.config.AudioDir, entry.Name())) == nil {
				removed++
			}
		}
	}
	if removed > 0 {
		r.logger.Debug("swept audio cache", "removed", removed)
	}
}

// mp3Duration estimates playback length by decoding the stream header.
// Best effort: zero when the stream cannot be decoded.
func mp3Duration(data []byte) time.Duration {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return 0
	}
	// Decoded output is 16-bit stereo PCM: 4 bytes per sample frame.
	n := dec.Length()
	sr := dec.SampleRate()
	if n <= 0 || sr <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(4*sr)
}
