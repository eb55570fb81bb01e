package chat

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ariavoice/core"
	"ariavoice/store"
	"ariavoice/utils/text"
)

// LLMService is the chat-completion provider contract. Implementations live
// under services/<vendor>/llm.
type LLMService interface {
	Complete(ctx context.Context, model string, messages []core.ChatMessage) (string, error)
}

// ChatRelay forwards user messages to the chat-completion provider: it
// assembles the bounded message list, post-processes the raw reply, and
// maintains session history and extracted memory facts.
type ChatRelay struct {
	service  LLMService
	sessions *store.SessionStore
	memory   *store.MemoryStore
	settings *store.SettingsStore
	config   ChatConfig
	logger   *core.Logger

	preambleMu    sync.Mutex
	preamble      string
	preambleValid bool
}

// NewChatRelay wires the relay to its stores. The memory store's change
// callback is registered here so fact updates invalidate the cached
// preamble.
func NewChatRelay(
	service LLMService,
	sessions *store.SessionStore,
	memory *store.MemoryStore,
	settings *store.SettingsStore,
	config ChatConfig,
	logger *core.Logger,
) *ChatRelay {
	if config.HistoryWindow <= 0 {
		config.HistoryWindow = DefaultConfig().HistoryWindow
	}
	if config.MemoryFactsInPrompt <= 0 {
		config.MemoryFactsInPrompt = DefaultConfig().MemoryFactsInPrompt
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	r := &ChatRelay{
		service:  service,
		sessions: sessions,
		memory:   memory,
		settings: settings,
		config:   config,
		logger:   logger,
	}
	memory.OnChange(r.invalidatePreamble)
	return r
}

// Chat sends one user message through the provider and returns the cleaned
// reply. model may be empty; unknown models fall back to the configured
// default.
func (r *ChatRelay) Chat(ctx context.Context, message, sessionID, model string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", &core.InvalidInputError{Field: "message", Reason: "must not be empty"}
	}
	if sessionID == "" {
		sessionID = "default"
	}
	if _, ok := store.Models[model]; !ok {
		model = r.settings.Get().Model
	}

	messages := r.buildMessages(sessionID, message)

	raw, err := r.service.Complete(ctx, model, messages)
	if err != nil {
		return "", err
	}

	// Remember markers come out before markdown stripping so bracketed
	// facts never leak into the spoken reply.
	cleaned, facts := text.ExtractMemories(raw)
	if len(facts) > 0 {
		r.memory.AddFacts(facts...)
		r.logger.Info("extracted memory facts", "count", len(facts))
	}
	reply := text.StripMarkdown(cleaned)

	r.sessions.AppendExchange(sessionID, message, reply)
	return reply, nil
}

// ClearSession drops one session's history. Safe to call repeatedly.
func (r *ChatRelay) ClearSession(sessionID string) {
	r.sessions.Clear(sessionID)
}

func (r *ChatRelay) buildMessages(sessionID, message string) []core.ChatMessage {
	window := r.sessions.Window(sessionID, r.config.HistoryWindow)

	messages := make([]core.ChatMessage, 0, len(window)+2)
	messages = append(messages, core.ChatMessage{
		Role:    core.ChatRoleSystem,
		Content: r.systemPreamble(),
	})
	for _, turn := range window {
		messages = append(messages, core.ChatMessage{
			Role:    core.ChatRole(turn.Role),
			Content: turn.Text,
		})
	}
	return append(messages, core.ChatMessage{
		Role:    core.ChatRoleUser,
		Content: message,
	})
}

// systemPreamble returns the persona plus interpolated memory, rebuilt only
// after memory changes.
func (r *ChatRelay) systemPreamble() string {
	r.preambleMu.Lock()
	defer r.preambleMu.Unlock()

	if r.preambleValid {
		return r.preamble
	}

	persona := r.config.Persona
	if persona == "" {
		persona = defaultPersona
	}

	var b strings.Builder
	b.WriteString(persona)

	if facts := r.memory.RecentFacts(r.config.MemoryFactsInPrompt); len(facts) > 0 {
		b.WriteString("\n\nMEMÓRIA DO USUÁRIO:\n")
		b.WriteString(strings.Join(facts, "\n"))
	}
	if prefs := r.memory.Snapshot().Preferences; len(prefs) > 0 {
		b.WriteString("\n\nPREFERÊNCIAS:")
		keys := make([]string, 0, len(prefs))
		for k := range prefs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString("\n- ")
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(prefs[k])
		}
	}

	r.preamble = b.String()
	r.preambleValid = true
	return r.preamble
}

func (r *ChatRelay) invalidatePreamble() {
	r.preambleMu.Lock()
	r.preambleValid = false
	r.preambleMu.Unlock()
}
