package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"ariavoice/core"
	"ariavoice/handlers/chat"
	"ariavoice/handlers/tts"
	"ariavoice/store"
)

// Config holds server-level settings.
type Config struct {
	// Version is reported by /api/health.
	Version string
	// AudioDir is served under /audio for synthesized files.
	AudioDir string
	// PublicDir, when non-empty, is served at the root for the browser
	// client.
	PublicDir string
}

// Server exposes the voice-assistant HTTP API. All state lives in the
// injected relays and stores, so tests construct isolated instances.
type Server struct {
	config   Config
	chat     *chat.ChatRelay
	tts      *tts.TTSRelay
	sessions *store.SessionStore
	memory   *store.MemoryStore
	settings *store.SettingsStore
	history  *store.HistoryLog
	clock    core.Clock
	logger   *core.Logger
	started  time.Time

	mux *http.ServeMux
}

func NewServer(
	config Config,
	chatRelay *chat.ChatRelay,
	ttsRelay *tts.TTSRelay,
	sessions *store.SessionStore,
	memory *store.MemoryStore,
	settings *store.SettingsStore,
	history *store.HistoryLog,
	clock core.Clock,
	logger *core.Logger,
) *Server {
	if clock == nil {
		clock = core.RealClock{}
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	s := &Server{
		config:   config,
		chat:     chatRelay,
		tts:      ttsRelay,
		sessions: sessions,
		memory:   memory,
		settings: settings,
		history:  history,
		clock:    clock,
		logger:   logger,
		started:  clock.Now(),
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("POST /api/voice", s.handleVoice)
	s.mux.HandleFunc("POST /api/tts", s.handleTTS)
	s.mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.mux.HandleFunc("POST /api/settings", s.handleSetSettings)
	s.mux.HandleFunc("GET /api/memory", s.handleGetMemory)
	s.mux.HandleFunc("POST /api/memory", s.handleAddMemory)
	s.mux.HandleFunc("DELETE /api/memory", s.handleClearMemory)
	s.mux.HandleFunc("POST /api/clear", s.handleClear)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/models", s.handleModels)
	s.mux.HandleFunc("GET /api/voices", s.handleVoices)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("GET /ws/voice", s.handleVoiceSocket)

	if s.config.AudioDir != "" {
		s.mux.Handle("GET /audio/", http.StripPrefix("/audio/", http.FileServer(http.Dir(s.config.AudioDir))))
	}
	if s.config.PublicDir != "" {
		s.mux.Handle("GET /", http.FileServer(http.Dir(s.config.PublicDir)))
	}
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// readJSON decodes a request body, rejecting malformed payloads.
func readJSON(r *http.Request, v interface{}) error {
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(v); err != nil {
		return &core.InvalidInputError{Field: "body", Reason: "malformed JSON"}
	}
	return nil
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"encoding failure"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeError maps the error taxonomy onto HTTP statuses: invalid input is
// 400, everything else surfaces as 500 with best-effort detail.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var invalid *core.InvalidInputError
	if errors.As(err, &invalid) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: invalid.Error()})
		return
	}

	var upstream *core.UpstreamError
	if errors.As(err, &upstream) {
		s.logger.Error("upstream failure", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "provider request failed",
			Details: upstream.Error(),
		})
		return
	}

	var synth *core.SynthesisError
	if errors.As(err, &synth) {
		s.logger.Error("synthesis failure", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "speech synthesis failed"})
		return
	}

	s.logger.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
