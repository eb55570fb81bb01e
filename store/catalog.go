package store

// Voice describes one synthesis voice. ID is the short key used by the API,
// EngineID is the neural voice identifier passed to the TTS engine.
type Voice struct {
	ID       string `json:"id"`
	EngineID string `json:"engineId"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Style    string `json:"style"`
	Lang     string `json:"lang,omitempty"`
}

// Voices is the catalog of supported voices, keyed by short ID.
var Voices = map[string]Voice{
	// Brazilian Portuguese, female
	"francisca": {ID: "francisca", EngineID: "pt-BR-FranciscaNeural", Name: "Francisca", Gender: "F", Style: "friendly"},
	"thalita":   {ID: "thalita", EngineID: "pt-BR-ThalitaNeural", Name: "Thalita", Gender: "F", Style: "cheerful"},
	"leila":     {ID: "leila", EngineID: "pt-BR-LeilaNeural", Name: "Leila", Gender: "F", Style: "calm"},
	"leticia":   {ID: "leticia", EngineID: "pt-BR-LeticiaNeural", Name: "Letícia", Gender: "F", Style: "professional"},
	"manuela":   {ID: "manuela", EngineID: "pt-BR-ManuelaNeural", Name: "Manuela", Gender: "F", Style: "warm"},
	"yara":      {ID: "yara", EngineID: "pt-BR-YaraNeural", Name: "Yara", Gender: "F", Style: "expressive"},
	// Brazilian Portuguese, male
	"antonio":  {ID: "antonio", EngineID: "pt-BR-AntonioNeural", Name: "Antonio", Gender: "M", Style: "friendly"},
	"fabio":    {ID: "fabio", EngineID: "pt-BR-FabioNeural", Name: "Fábio", Gender: "M", Style: "casual"},
	"humberto": {ID: "humberto", EngineID: "pt-BR-HumbertoNeural", Name: "Humberto", Gender: "M", Style: "professional"},
	// English
	"jenny":   {ID: "jenny", EngineID: "en-US-JennyNeural", Name: "Jenny (EN)", Gender: "F", Style: "friendly", Lang: "en"},
	"guy":     {ID: "guy", EngineID: "en-US-GuyNeural", Name: "Guy (EN)", Gender: "M", Style: "casual", Lang: "en"},
	"aria-en": {ID: "aria-en", EngineID: "en-US-AriaNeural", Name: "Aria (EN)", Gender: "F", Style: "expressive", Lang: "en"},
}

// DefaultVoice is used when a request names no voice or an unknown one.
const DefaultVoice = "francisca"

// LookupVoice resolves a short voice ID, falling back to DefaultVoice.
func LookupVoice(id string) Voice {
	if v, ok := Voices[id]; ok {
		return v
	}
	return Voices[DefaultVoice]
}

// Model describes one chat-completion model routed through the provider.
type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tier string `json:"tier"`
}

// Models is the catalog of selectable chat models.
var Models = map[string]Model{
	"openai/gpt-4o-mini":                  {ID: "openai/gpt-4o-mini", Name: "GPT-4o Mini", Tier: "fast"},
	"openai/gpt-4o":                       {ID: "openai/gpt-4o", Name: "GPT-4o", Tier: "premium"},
	"anthropic/claude-3.5-sonnet":         {ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet", Tier: "premium"},
	"anthropic/claude-3-haiku":            {ID: "anthropic/claude-3-haiku", Name: "Claude 3 Haiku", Tier: "fast"},
	"meta-llama/llama-3.1-70b-instruct":   {ID: "meta-llama/llama-3.1-70b-instruct", Name: "Llama 3.1 70B", Tier: "mid"},
	"meta-llama/llama-3.1-8b-instruct":    {ID: "meta-llama/llama-3.1-8b-instruct", Name: "Llama 3.1 8B", Tier: "free"},
	"google/gemini-pro-1.5":               {ID: "google/gemini-pro-1.5", Name: "Gemini Pro 1.5", Tier: "mid"},
	"mistralai/mistral-7b-instruct":       {ID: "mistralai/mistral-7b-instruct", Name: "Mistral 7B", Tier: "free"},
}

// DefaultModel is used when settings or the request name no model.
const DefaultModel = "openai/gpt-4o-mini"
