// Package client is a typed HTTP client for the assistant server API. It
// is what the desktop orchestrator and the ariactl tool talk through.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"ariavoice/core"
	"ariavoice/orchestrator"
	"ariavoice/store"
)

const defaultTimeout = 30 * time.Second

// Config configures the API client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *core.Logger
}

// Client calls the assistant server's REST API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *core.Logger
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = core.GetLogger()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger.With(map[string]interface{}{"component": "client"}),
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: server returned %d: %s", e.Status, e.Message)
}

// ChatResult is the text-only chat answer.
type ChatResult struct {
	Response         string  `json:"response"`
	Sentiment        string  `json:"sentiment"`
	SessionID        string  `json:"sessionId"`
	AudioURL         *string `json:"audioUrl"`
	ProcessingTimeMs int64   `json:"processingTime"`
}

// Chat sends one message through the text pipeline.
func (c *Client) Chat(ctx context.Context, message, sessionID, model string) (ChatResult, error) {
	var out ChatResult
	err := c.post(ctx, "/api/chat", map[string]string{
		"message":   message,
		"sessionId": sessionID,
		"model":     model,
	}, &out)
	return out, err
}

// VoiceResult is the combined chat-plus-speech answer.
type VoiceResult struct {
	Response         string  `json:"response"`
	AudioURL         *string `json:"audioUrl"`
	Sentiment        string  `json:"sentiment"`
	Cached           bool    `json:"cached"`
	ProcessingTimeMs int64   `json:"processingTime"`
}

// Voice sends one message through the voice pipeline: chat plus speech
// synthesis in a single round trip.
func (c *Client) Voice(ctx context.Context, message, sessionID string) (orchestrator.VoiceReply, error) {
	var out VoiceResult
	err := c.post(ctx, "/api/voice", map[string]string{
		"message":   message,
		"sessionId": sessionID,
	}, &out)
	if err != nil {
		return orchestrator.VoiceReply{}, err
	}
	reply := orchestrator.VoiceReply{Text: out.Response, Sentiment: out.Sentiment}
	if out.AudioURL != nil {
		reply.AudioURL = c.baseURL + *out.AudioURL
	}
	return reply, nil
}

// SpeechResult references one synthesized clip.
type SpeechResult struct {
	AudioURL   string `json:"audioUrl"`
	Cached     bool   `json:"cached"`
	DurationMs int64  `json:"durationMs,omitempty"`
}

// Synthesize converts text to speech without touching the conversation.
// Voice and rate are optional; nil rate uses the server's configured speed.
func (c *Client) Synthesize(ctx context.Context, text, voice string, rate *int) (SpeechResult, error) {
	body := map[string]interface{}{"text": text}
	if voice != "" {
		body["voice"] = voice
	}
	if rate != nil {
		body["rate"] = *rate
	}
	var out SpeechResult
	err := c.post(ctx, "/api/tts", body, &out)
	return out, err
}

// FetchAudio downloads a synthesized clip by its server-relative URL.
func (c *Client) FetchAudio(ctx context.Context, audioURL string) ([]byte, error) {
	target := audioURL
	if u, err := url.Parse(audioURL); err == nil && !u.IsAbs() {
		target = c.baseURL + audioURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: fetch audio: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Message: "audio fetch failed"}
	}
	return io.ReadAll(resp.Body)
}

// Clear discards a session's conversation history.
func (c *Client) Clear(ctx context.Context, sessionID string) error {
	return c.post(ctx, "/api/clear", map[string]string{"sessionId": sessionID}, nil)
}

// Settings reads the current assistant settings.
func (c *Client) Settings(ctx context.Context) (store.Settings, error) {
	var out store.Settings
	err := c.get(ctx, "/api/settings", &out)
	return out, err
}

// UpdateSettings applies a partial settings update and returns the
// resulting state.
func (c *Client) UpdateSettings(ctx context.Context, patch store.SettingsPatch) (store.Settings, error) {
	var out store.Settings
	err := c.post(ctx, "/api/settings", patch, &out)
	return out, err
}

// Memory is the persistent-memory snapshot.
type Memory struct {
	Facts       []string          `json:"facts"`
	Preferences map[string]string `json:"preferences"`
	Count       int               `json:"count"`
}

// Memory reads the assistant's long-term memory.
func (c *Client) Memory(ctx context.Context) (Memory, error) {
	var out Memory
	err := c.get(ctx, "/api/memory", &out)
	return out, err
}

// AddFact stores one remembered fact.
func (c *Client) AddFact(ctx context.Context, fact string) error {
	return c.post(ctx, "/api/memory", map[string]string{"fact": fact}, nil)
}

// ClearMemory wipes all remembered facts and preferences.
func (c *Client) ClearMemory(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/memory", nil)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	return c.do(req, nil)
}

// Health is the server liveness report.
type Health struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Model   string  `json:"model"`
	Memory  int     `json:"memory"`
	Uptime  float64 `json:"uptime"`
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.get(ctx, "/api/health", &out)
	return out, err
}

// Models lists the selectable language models.
func (c *Client) Models(ctx context.Context) ([]store.Model, string, error) {
	var out struct {
		Models  []store.Model `json:"models"`
		Current string        `json:"current"`
	}
	err := c.get(ctx, "/api/models", &out)
	return out.Models, out.Current, err
}

// Voices lists the available synthesis voices.
func (c *Client) Voices(ctx context.Context) ([]store.Voice, error) {
	var out struct {
		Voices []store.Voice `json:"voices"`
	}
	err := c.get(ctx, "/api/voices", &out)
	return out.Voices, err
}

// History returns the most recent logged exchanges.
func (c *Client) History(ctx context.Context, limit int) ([]store.LogEntry, int, error) {
	path := "/api/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Conversations []store.LogEntry `json:"conversations"`
		Total         int              `json:"total"`
	}
	err := c.get(ctx, path, &out)
	return out.Conversations, out.Total, err
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("client: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = sonic.Unmarshal(data, &errBody)
		if errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}
