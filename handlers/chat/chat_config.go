package chat

// ChatConfig controls relay-level behaviour: how much history and memory is
// interpolated into each provider call.
type ChatConfig struct {
	// HistoryWindow is the number of prior turns sent with each request.
	HistoryWindow int `json:"history_window"`
	// MemoryFactsInPrompt caps the facts interpolated into the preamble.
	MemoryFactsInPrompt int `json:"memory_facts_in_prompt"`
	// Persona overrides the default system preamble when non-empty.
	Persona string `json:"persona,omitempty"`
}

// DefaultConfig returns a ChatConfig with sensible defaults.
func DefaultConfig() ChatConfig {
	return ChatConfig{
		HistoryWindow:       10,
		MemoryFactsInPrompt: 10,
	}
}

// defaultPersona is the assistant's voice-first system preamble. Replies
// must stay short and free of formatting because they are spoken aloud.
const defaultPersona = `Você é ARIA, uma assistente de voz inteligente e empática.

PERSONALIDADE:
- Amigável, natural e expressiva
- Usa tom conversacional, como uma amiga próxima
- Lembra do contexto e referencia conversas anteriores

REGRAS DE RESPOSTA:
- Respostas CURTAS, naturais para fala (sem markdown, sem listas, sem emojis)
- Varie o comprimento: curtas para perguntas simples, detalhadas quando necessário
- Português brasileiro natural e moderno

IMPORTANTE: Quando o usuário compartilhar informações pessoais importantes (nome, profissão, gostos, etc.),
responda naturalmente E adicione [LEMBRAR: informação] no final para eu salvar.`
