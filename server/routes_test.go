package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"

	"ariavoice/core"
	"ariavoice/handlers/chat"
	"ariavoice/handlers/tts"
	"ariavoice/store"
)

type scriptedLLM struct {
	reply string
	err   error
}

func (s *scriptedLLM) Complete(ctx context.Context, model string, messages []core.ChatMessage) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type scriptedSynth struct {
	err error
}

func (s *scriptedSynth) Synthesize(ctx context.Context, text string, voice store.Voice, rate string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("mp3"), nil
}

type testEnv struct {
	server   *Server
	sessions *store.SessionStore
	memory   *store.MemoryStore
	settings *store.SettingsStore
	history  *store.HistoryLog
}

func newTestEnv(t *testing.T, llm *scriptedLLM, synth *scriptedSynth) *testEnv {
	t.Helper()

	sessions := store.NewSessionStore(0)
	memory := store.NewMemoryStore()
	settings := store.NewSettingsStore()
	history := store.NewHistoryLog()

	chatRelay := chat.NewChatRelay(llm, sessions, memory, settings, chat.ChatConfig{}, nil)
	ttsRelay := tts.NewTTSRelay(synth, tts.TTSConfig{AudioDir: t.TempDir()}, nil, nil)

	srv := NewServer(
		Config{Version: "test"},
		chatRelay, ttsRelay,
		sessions, memory, settings, history,
		nil, nil,
	)
	return &testEnv{server: srv, sessions: sessions, memory: memory, settings: settings, history: history}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		buf.Write(data)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return out
}

func TestChatEndpoint(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{reply: "Olá! [LEMBRAR: gosta de música]"}, &scriptedSynth{})

	rec := env.do(t, http.MethodPost, "/api/chat", map[string]string{
		"message":   "oi, estou muito feliz hoje",
		"sessionId": "s1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decode[chatResponse](t, rec)
	if resp.Response != "Olá!" {
		t.Errorf("response = %q, want marker stripped", resp.Response)
	}
	if resp.Sentiment != "positive" {
		t.Errorf("sentiment = %q, want positive", resp.Sentiment)
	}
	if resp.SessionID != "s1" {
		t.Errorf("sessionId = %q, want s1", resp.SessionID)
	}
	if got := env.memory.Count(); got != 1 {
		t.Errorf("memory count = %d, want 1", got)
	}
	if _, total := env.history.Recent(0); total != 1 {
		t.Errorf("history total = %d, want 1", total)
	}
}

func TestChatEndpointEmptyMessage(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{reply: "x"}, &scriptedSynth{})

	rec := env.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChatEndpointMalformedBody(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{reply: "x"}, &scriptedSynth{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChatEndpointUpstreamFailure(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{err: &core.UpstreamError{Provider: "openrouter", Status: 502}}, &scriptedSynth{})

	rec := env.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "oi"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestVoiceEndpoint(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{reply: "Claro!"}, &scriptedSynth{})

	rec := env.do(t, http.MethodPost, "/api/voice", map[string]string{"message": "me ajuda?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[voiceResponse](t, rec)
	if resp.Response != "Claro!" {
		t.Errorf("response = %q", resp.Response)
	}
	if resp.AudioURL == nil {
		t.Error("audioUrl = nil, want synthesized URL")
	}
	if resp.Sentiment != "curious" {
		t.Errorf("sentiment = %q, want curious", resp.Sentiment)
	}
}

func TestVoiceEndpointSynthesisFailureDegradesToText(t *testing.T) {
	synthErr := &core.SynthesisError{Engine: "edge-tts", Err: context.DeadlineExceeded}
	env := newTestEnv(t, &scriptedLLM{reply: "Claro!"}, &scriptedSynth{err: synthErr})

	rec := env.do(t, http.MethodPost, "/api/voice", map[string]string{"message": "oi"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite synthesis failure", rec.Code)
	}
	resp := decode[voiceResponse](t, rec)
	if resp.AudioURL != nil {
		t.Errorf("audioUrl = %v, want null", *resp.AudioURL)
	}
	if resp.Response != "Claro!" {
		t.Errorf("response = %q", resp.Response)
	}
}

func TestTTSEndpoint(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{reply: "x"}, &scriptedSynth{})

	rec := env.do(t, http.MethodPost, "/api/tts", map[string]interface{}{"text": "olá", "voice": "yara"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[ttsResponse](t, rec)
	if resp.AudioURL == "" {
		t.Error("audioUrl empty")
	}
	if resp.Cached {
		t.Error("first synthesis reported cached")
	}

	// Identical request is served from cache.
	rec = env.do(t, http.MethodPost, "/api/tts", map[string]interface{}{"text": "olá", "voice": "yara"})
	if resp := decode[ttsResponse](t, rec); !resp.Cached {
		t.Error("second synthesis not cached")
	}
}

func TestTTSEndpointFailureIsError(t *testing.T) {
	synthErr := &core.SynthesisError{Engine: "edge-tts", Err: context.DeadlineExceeded}
	env := newTestEnv(t, &scriptedLLM{reply: "x"}, &scriptedSynth{err: synthErr})

	rec := env.do(t, http.MethodPost, "/api/tts", map[string]string{"text": "olá"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{reply: "x"}, &scriptedSynth{})

	rec := env.do(t, http.MethodGet, "/api/settings", nil)
	got := decode[store.Settings](t, rec)
	if got != store.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", got)
	}

	rec = env.do(t, http.MethodPost, "/api/settings", map[string]interface{}{
		"voice": "antonio",
		"speed": 200,
	})
	got = decode[store.Settings](t, rec)
	if got.Voice != "antonio" {
		t.Errorf("voice = %q, want antonio", got.Voice)
	}
	if got.Speed != store.MaxSpeed {
		t.Errorf("speed = %d, want clamped %d", got.Speed, store.MaxSpeed)
	}
}

func TestMemoryEndpoints(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{reply: "x"}, &scriptedSynth{})

	rec := env.do(t, http.MethodPost, "/api/memory", map[string]string{"fact": "tem um gato"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/memory", nil)
	mem := decode[memoryResponse](t, rec)
	if mem.Count != 1 || mem.Facts[0] != "tem um gato" {
		t.Errorf("memory = %+v", mem)
	}

	rec = env.do(t, http.MethodDelete, "/api/memory", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/memory", nil)
	if mem := decode[memoryResponse](t, rec); mem.Count != 0 {
		t.Errorf("count after clear = %d, want 0", mem.Count)
	}
}

func TestAddMemoryRequiresContent(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{reply: "x"}, &scriptedSynth{})

	rec := env.do(t, http.MethodPost, "/api/memory", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestClearEndpointIdempotent(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{reply: "oi"}, &scriptedSynth{})

	env.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "oi", "sessionId": "s1"})
	if got := env.sessions.Len("s1"); got != 2 {
		t.Fatalf("turns = %d, want 2", got)
	}

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/api/clear", map[string]string{"sessionId": "s1"})
		if rec.Code != http.StatusOK {
			t.Fatalf("clear #%d status = %d", i+1, rec.Code)
		}
		if resp := decode[successResponse](t, rec); !resp.Success {
			t.Errorf("clear #%d success = false", i+1)
		}
	}
	if got := env.sessions.Len("s1"); got != 0 {
		t.Errorf("turns after clear = %d, want 0", got)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{reply: "x"}, &scriptedSynth{})

	rec := env.do(t, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	health := decode[struct {
		Status  string `json:"status"`
		Version string `json:"version"`
		Model   string `json:"model"`
	}](t, rec)
	if health.Status != "ok" {
		t.Errorf("status = %q, want ok", health.Status)
	}
	if health.Version != "test" {
		t.Errorf("version = %q, want test", health.Version)
	}
	if health.Model != store.DefaultModel {
		t.Errorf("model = %q, want default", health.Model)
	}
}

func TestModelsAndVoicesSorted(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{reply: "x"}, &scriptedSynth{})

	rec := env.do(t, http.MethodGet, "/api/models", nil)
	models := decode[struct {
		Models  []store.Model `json:"models"`
		Current string        `json:"current"`
	}](t, rec)
	if len(models.Models) != len(store.Models) {
		t.Errorf("models = %d, want %d", len(models.Models), len(store.Models))
	}
	for i := 1; i < len(models.Models); i++ {
		if models.Models[i-1].ID > models.Models[i].ID {
			t.Errorf("models not sorted at %d", i)
		}
	}

	rec = env.do(t, http.MethodGet, "/api/voices", nil)
	voices := decode[struct {
		Voices []store.Voice `json:"voices"`
	}](t, rec)
	if len(voices.Voices) != len(store.Voices) {
		t.Errorf("voices = %d, want %d", len(voices.Voices), len(store.Voices))
	}
}

func TestHistoryEndpointLimit(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{reply: "ok"}, &scriptedSynth{})

	for i := 0; i < 5; i++ {
		env.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "oi"})
	}
	rec := env.do(t, http.MethodGet, "/api/history?limit=2", nil)
	hist := decode[struct {
		Conversations []store.LogEntry `json:"conversations"`
		Total         int              `json:"total"`
	}](t, rec)
	if len(hist.Conversations) != 2 {
		t.Errorf("entries = %d, want 2", len(hist.Conversations))
	}
	if hist.Total != 5 {
		t.Errorf("total = %d, want 5", hist.Total)
	}
}
