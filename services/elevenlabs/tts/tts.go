package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"ariavoice/core"
	"ariavoice/store"
)

// Config holds configuration for the ElevenLabs HTTP synthesizer, the
// hosted alternative to the local edge-tts engine.
type Config struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	// VoiceID is the default ElevenLabs voice used when VoiceMap has no
	// entry for the requested catalog voice.
	VoiceID string `json:"voice_id"`
	ModelID string `json:"model_id"`
	// VoiceMap translates catalog voice IDs to ElevenLabs voice IDs.
	VoiceMap map[string]string `json:"voice_map,omitempty"`

	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// DefaultConfig mirrors the provider defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:         "https://api.elevenlabs.io/v1/text-to-speech",
		VoiceID:         "21m00Tcm4TlvDq8ikWAM", // Rachel
		ModelID:         "eleven_turbo_v2_5",
		Stability:       0.5,
		SimilarityBoost: 0.75,
	}
}

// ElevenLabsTTSService synthesizes speech via the ElevenLabs REST API and
// returns mp3 bytes. The rate parameter is ignored; ElevenLabs controls
// pacing through voice settings instead.
type ElevenLabsTTSService struct {
	config Config
	client *http.Client
	logger *core.Logger
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func NewElevenLabsTTSService(config Config, logger *core.Logger) *ElevenLabsTTSService {
	def := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	if config.VoiceID == "" {
		config.VoiceID = def.VoiceID
	}
	if config.ModelID == "" {
		config.ModelID = def.ModelID
	}
	if config.Stability == 0 {
		config.Stability = def.Stability
	}
	if config.SimilarityBoost == 0 {
		config.SimilarityBoost = def.SimilarityBoost
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &ElevenLabsTTSService{
		config: config,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Synthesize posts the text to ElevenLabs and returns the mp3 payload.
func (s *ElevenLabsTTSService) Synthesize(ctx context.Context, text string, voice store.Voice, rate string) ([]byte, error) {
	if s.config.APIKey == "" {
		return nil, &core.SynthesisError{Engine: "elevenlabs", Err: errors.New("API key not configured")}
	}
	if text == "" {
		return nil, &core.SynthesisError{Engine: "elevenlabs", Err: errors.New("empty text")}
	}

	voiceID := s.config.VoiceID
	if mapped, ok := s.config.VoiceMap[voice.ID]; ok {
		voiceID = mapped
	}

	body, err := sonic.Marshal(synthesisRequest{
		Text:    text,
		ModelID: s.config.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       s.config.Stability,
			SimilarityBoost: s.config.SimilarityBoost,
		},
	})
	if err != nil {
		return nil, &core.SynthesisError{Engine: "elevenlabs", Err: err}
	}

	url := fmt.Sprintf("%s/%s?output_format=mp3_44100_128", s.config.BaseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &core.SynthesisError{Engine: "elevenlabs", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &core.SynthesisError{Engine: "elevenlabs", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &core.SynthesisError{
			Engine: "elevenlabs",
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode, string(detail)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.SynthesisError{Engine: "elevenlabs", Err: err}
	}
	if len(data) == 0 {
		return nil, &core.SynthesisError{Engine: "elevenlabs", Err: errors.New("empty audio response")}
	}
	return data, nil
}
