package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"ariavoice/core"
	"ariavoice/store"
)

// Config holds the configuration for the edge-tts subprocess synthesizer.
type Config struct {
	// Binary is the edge-tts executable name or path.
	Binary string
	// WorkDir receives intermediate media files; defaults to the OS temp dir.
	WorkDir string
}

// DefaultConfig returns a Config using the edge-tts binary from PATH.
func DefaultConfig() Config {
	return Config{Binary: "edge-tts"}
}

// EdgeTTSService synthesizes speech by invoking the edge-tts CLI. The
// subprocess writes an mp3 to a scratch file which is read back and
// removed, so callers own persistence.
type EdgeTTSService struct {
	config Config
	logger *core.Logger
}

func NewEdgeTTSService(config Config, logger *core.Logger) *EdgeTTSService {
	if config.Binary == "" {
		config.Binary = "edge-tts"
	}
	if config.WorkDir == "" {
		config.WorkDir = os.TempDir()
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &EdgeTTSService{config: config, logger: logger}
}

// Synthesize runs the engine with the given voice and rate (e.g. "+10%")
// and returns the generated mp3 bytes. Text must already be sanitized and
// truncated by the caller.
func (s *EdgeTTSService) Synthesize(ctx context.Context, text string, voice store.Voice, rate string) ([]byte, error) {
	if text == "" {
		return nil, &core.SynthesisError{Engine: "edge-tts", Err: errors.New("empty text")}
	}

	scratch := filepath.Join(s.config.WorkDir, fmt.Sprintf("edgetts-%s.mp3", uuid.NewString()))
	defer os.Remove(scratch)

	cmd := exec.CommandContext(ctx, s.config.Binary,
		"--voice", voice.EngineID,
		"--rate", rate,
		"--text", text,
		"--write-media", scratch,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		s.logger.Warn("edge-tts invocation failed", "voice", voice.EngineID, "error", err)
		return nil, &core.SynthesisError{
			Engine: "edge-tts",
			Err:    fmt.Errorf("%w: %s", err, firstLine(out)),
		}
	}

	data, err := os.ReadFile(scratch)
	if err != nil {
		return nil, &core.SynthesisError{Engine: "edge-tts", Err: errors.New("no output file produced")}
	}
	if len(data) == 0 {
		return nil, &core.SynthesisError{Engine: "edge-tts", Err: errors.New("empty output file")}
	}
	return data, nil
}

func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' {
			return string(out[:i])
		}
	}
	return string(out)
}
