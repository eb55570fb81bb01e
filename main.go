package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ariavoice/core"
	"ariavoice/handlers/chat"
	"ariavoice/handlers/tts"
	"ariavoice/server"
	edgetts "ariavoice/services/edgetts/tts"
	elevenlabs "ariavoice/services/elevenlabs/tts"
	"ariavoice/services/openrouter/llm"
	"ariavoice/store"
)

const version = "2.0.0"

func main() {
	_ = godotenv.Load()

	logger := core.GetLogger()

	port := envOr("PORT", "3000")
	dataDir := envOr("DATA_DIR", "data")
	audioDir := envOr("AUDIO_DIR", "public/audio")
	publicDir := os.Getenv("PUBLIC_DIR")

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		logger.Warn("OPENROUTER_API_KEY not set; chat requests will fail")
	}

	// Stores, rehydrated from the data directory.
	sessions := store.NewSessionStore(0)
	memory := store.NewMemoryStore()
	settings := store.NewSettingsStore()
	history := store.NewHistoryLog()

	flusher := &store.Flusher{
		DataDir:  dataDir,
		Memory:   memory,
		History:  history,
		Settings: settings,
		Clock:    core.RealClock{},
		Logger:   logger,
	}
	flusher.Load()

	llmConfig := llm.DefaultConfig()
	llmConfig.APIKey = apiKey
	if base := os.Getenv("OPENROUTER_BASE_URL"); base != "" {
		llmConfig.BaseURL = base
	}
	llmService := llm.NewOpenRouterLLMService(llmConfig, logger)

	synthesizer := newSynthesizer(logger)

	chatRelay := chat.NewChatRelay(llmService, sessions, memory, settings, chat.DefaultConfig(), logger)

	ttsConfig := tts.DefaultConfig()
	ttsConfig.AudioDir = audioDir
	ttsRelay := tts.NewTTSRelay(synthesizer, ttsConfig, core.RealClock{}, logger)

	srv := server.NewServer(
		server.Config{Version: version, AudioDir: audioDir, PublicDir: publicDir},
		chatRelay,
		ttsRelay,
		sessions,
		memory,
		settings,
		history,
		core.RealClock{},
		logger,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go ttsRelay.SweepLoop(ctx)
	go flusher.Run(ctx)

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: srv.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.With(map[string]interface{}{"port": port, "version": version}).Info("server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	// Run flushes once more on ctx cancellation; give it a moment.
	time.Sleep(100 * time.Millisecond)
	logger.Info("server stopped")
}

// newSynthesizer selects the speech engine from TTS_ENGINE: "edge"
// (default) shells out to the edge-tts CLI, "elevenlabs" uses the REST
// API.
func newSynthesizer(logger *core.Logger) tts.SpeechSynthesizer {
	switch envOr("TTS_ENGINE", "edge") {
	case "elevenlabs":
		cfg := elevenlabs.DefaultConfig()
		cfg.APIKey = os.Getenv("ELEVENLABS_API_KEY")
		if cfg.APIKey == "" {
			logger.Warn("ELEVENLABS_API_KEY not set; falling back to edge-tts")
			break
		}
		return elevenlabs.NewElevenLabsTTSService(cfg, logger)
	case "edge":
	default:
		logger.Warn("unknown TTS_ENGINE; using edge-tts", "engine", os.Getenv("TTS_ENGINE"))
	}
	cfg := edgetts.DefaultConfig()
	if bin := os.Getenv("EDGE_TTS_BINARY"); bin != "" {
		cfg.Binary = bin
	}
	return edgetts.NewEdgeTTSService(cfg, logger)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
