package server

import (
	"net/http"
	"sort"
	"strconv"

	"ariavoice/core"
	"ariavoice/store"
	"ariavoice/utils/text"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	Model     string `json:"model,omitempty"`
}

type chatResponse struct {
	Response         string  `json:"response"`
	Sentiment        string  `json:"sentiment"`
	SessionID        string  `json:"sessionId"`
	AudioURL         *string `json:"audioUrl"`
	ProcessingTimeMs int64   `json:"processingTime"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := s.clock.Now()

	var req chatRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	sentiment := text.AnalyzeSentiment(req.Message)

	reply, err := s.chat.Chat(r.Context(), req.Message, req.SessionID, req.Model)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logExchange(req.Message, reply, sentiment)

	elapsed := s.clock.Now().Sub(start)
	s.logger.Infof("chat [%s] %dms", sentiment, elapsed.Milliseconds())

	writeJSON(w, http.StatusOK, chatResponse{
		Response:         reply,
		Sentiment:        string(sentiment),
		SessionID:        req.SessionID,
		ProcessingTimeMs: elapsed.Milliseconds(),
	})
}

type voiceRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	Voice     string `json:"voice,omitempty"`
}

type voiceResponse struct {
	Response         string  `json:"response"`
	AudioURL         *string `json:"audioUrl"`
	Sentiment        string  `json:"sentiment"`
	Cached           bool    `json:"cached"`
	ProcessingTimeMs int64   `json:"processingTime"`
}

// handleVoice runs chat then synthesis sequentially. Synthesis failure
// degrades to audioUrl null with a 200 so the client can fall back to
// local speech synthesis.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	start := s.clock.Now()

	var req voiceRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}
	settings := s.settings.Get()
	if req.Voice == "" {
		req.Voice = settings.Voice
	}

	sentiment := text.AnalyzeSentiment(req.Message)

	reply, err := s.chat.Chat(r.Context(), req.Message, req.SessionID, "")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logExchange(req.Message, reply, sentiment)

	resp := voiceResponse{
		Response:  reply,
		Sentiment: string(sentiment),
	}
	result, err := s.tts.Synthesize(r.Context(), reply, req.Voice, settings.Speed)
	if err != nil {
		s.logger.Warn("voice synthesis failed, returning text only", "error", err)
	} else {
		resp.AudioURL = &result.URL
		resp.Cached = result.Cached
	}
	resp.ProcessingTimeMs = s.clock.Now().Sub(start).Milliseconds()
	writeJSON(w, http.StatusOK, resp)
}

type ttsRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
	Rate  *int   `json:"rate,omitempty"`
}

type ttsResponse struct {
	AudioURL   string `json:"audioUrl"`
	Cached     bool   `json:"cached"`
	DurationMs int64  `json:"durationMs,omitempty"`
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	settings := s.settings.Get()
	if req.Voice == "" {
		req.Voice = settings.Voice
	}
	rate := settings.Speed
	if req.Rate != nil {
		rate = *req.Rate
	}

	result, err := s.tts.Synthesize(r.Context(), req.Text, req.Voice, rate)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ttsResponse{
		AudioURL:   result.URL,
		Cached:     result.Cached,
		DurationMs: result.Duration.Milliseconds(),
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Get())
}

func (s *Server) handleSetSettings(w http.ResponseWriter, r *http.Request) {
	var patch store.SettingsPatch
	if err := readJSON(r, &patch); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.settings.Apply(patch))
}

type memoryResponse struct {
	Facts       []string          `json:"facts"`
	Preferences map[string]string `json:"preferences"`
	Count       int               `json:"count"`
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	snap := s.memory.Snapshot()
	writeJSON(w, http.StatusOK, memoryResponse{
		Facts:       snap.Facts,
		Preferences: snap.Preferences,
		Count:       len(snap.Facts),
	})
}

type addMemoryRequest struct {
	Fact       string            `json:"fact,omitempty"`
	Preference map[string]string `json:"preference,omitempty"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleAddMemory(w http.ResponseWriter, r *http.Request) {
	var req addMemoryRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Fact == "" && len(req.Preference) == 0 {
		s.writeError(w, &core.InvalidInputError{Field: "fact", Reason: "fact or preference required"})
		return
	}
	if req.Fact != "" {
		s.memory.AddFacts(req.Fact)
	}
	s.memory.SetPreferences(req.Preference)

	snap := s.memory.Snapshot()
	writeJSON(w, http.StatusOK, struct {
		Success bool           `json:"success"`
		Memory  memoryResponse `json:"memory"`
	}{true, memoryResponse{snap.Facts, snap.Preferences, len(snap.Facts)}})
}

func (s *Server) handleClearMemory(w http.ResponseWriter, r *http.Request) {
	s.memory.Clear()
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

type clearRequest struct {
	SessionID string `json:"sessionId"`
}

// handleClear drops one session's history. Clearing an already-clear
// session still reports success.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.SessionID != "" {
		s.sessions.Clear(req.SessionID)
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status  string  `json:"status"`
		Version string  `json:"version"`
		Model   string  `json:"model"`
		Memory  int     `json:"memory"`
		Uptime  float64 `json:"uptime"`
	}{
		Status:  "ok",
		Version: s.config.Version,
		Model:   s.settings.Get().Model,
		Memory:  s.memory.Count(),
		Uptime:  s.clock.Now().Sub(s.started).Seconds(),
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models := make([]store.Model, 0, len(store.Models))
	for _, m := range store.Models {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	writeJSON(w, http.StatusOK, struct {
		Models  []store.Model `json:"models"`
		Current string        `json:"current"`
	}{models, s.settings.Get().Model})
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	voices := make([]store.Voice, 0, len(store.Voices))
	for _, v := range store.Voices {
		voices = append(voices, v)
	}
	sort.Slice(voices, func(i, j int) bool { return voices[i].ID < voices[j].ID })
	writeJSON(w, http.StatusOK, struct {
		Voices []store.Voice `json:"voices"`
	}{voices})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	entries, total := s.history.Recent(limit)
	writeJSON(w, http.StatusOK, struct {
		Conversations []store.LogEntry `json:"conversations"`
		Total         int              `json:"total"`
	}{entries, total})
}

// logExchange records a completed exchange in the cross-session log.
func (s *Server) logExchange(user, assistant string, sentiment core.Sentiment) {
	if s.history == nil {
		return
	}
	s.history.Append(store.LogEntry{
		Timestamp: s.clock.Now(),
		User:      user,
		Assistant: assistant,
		Sentiment: string(sentiment),
	})
}
