package store

import "sync"

// Speed bounds, in percent relative to the voice's natural rate.
const (
	MinSpeed = -50
	MaxSpeed = 50
)

// Settings is the user-tunable configuration persisted to settings.json.
// Speed is an integer percentage in [MinSpeed, MaxSpeed].
type Settings struct {
	Voice      string `json:"voice"`
	Speed      int    `json:"speed"`
	Model      string `json:"model"`
	Language   string `json:"language"`
	WakeWord   bool   `json:"wakeWord"`
	Continuous bool   `json:"continuousMode"`
}

// DefaultSettings returns the factory configuration.
func DefaultSettings() Settings {
	return Settings{
		Voice:      DefaultVoice,
		Speed:      0,
		Model:      DefaultModel,
		Language:   "pt-BR",
		WakeWord:   false,
		Continuous: true,
	}
}

// SettingsPatch is a partial update; nil fields keep their current value.
type SettingsPatch struct {
	Voice      *string `json:"voice,omitempty"`
	Speed      *int    `json:"speed,omitempty"`
	Model      *string `json:"model,omitempty"`
	Language   *string `json:"language,omitempty"`
	WakeWord   *bool   `json:"wakeWord,omitempty"`
	Continuous *bool   `json:"continuousMode,omitempty"`
}

// SettingsStore guards the current settings and applies validated partial
// updates: unknown voices and models are ignored, speed is clamped.
type SettingsStore struct {
	mu      sync.Mutex
	current Settings
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{current: DefaultSettings()}
}

// Get returns the current settings.
func (s *SettingsStore) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Apply merges a patch and returns the resulting settings. Invalid
// enumerated values leave the prior value untouched rather than failing the
// whole update.
func (s *SettingsStore) Apply(patch SettingsPatch) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Voice != nil {
		if _, ok := Voices[*patch.Voice]; ok {
			s.current.Voice = *patch.Voice
		}
	}
	if patch.Speed != nil {
		s.current.Speed = clampSpeed(*patch.Speed)
	}
	if patch.Model != nil {
		if _, ok := Models[*patch.Model]; ok {
			s.current.Model = *patch.Model
		}
	}
	if patch.Language != nil && *patch.Language != "" {
		s.current.Language = *patch.Language
	}
	if patch.WakeWord != nil {
		s.current.WakeWord = *patch.WakeWord
	}
	if patch.Continuous != nil {
		s.current.Continuous = *patch.Continuous
	}
	return s.current
}

// Restore replaces the settings with persisted state, re-validating each
// field against the catalogs in case the file predates a catalog change.
func (s *SettingsStore) Restore(loaded Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def := DefaultSettings()
	if _, ok := Voices[loaded.Voice]; !ok {
		loaded.Voice = def.Voice
	}
	if _, ok := Models[loaded.Model]; !ok {
		loaded.Model = def.Model
	}
	loaded.Speed = clampSpeed(loaded.Speed)
	if loaded.Language == "" {
		loaded.Language = def.Language
	}
	s.current = loaded
}

func clampSpeed(v int) int {
	if v < MinSpeed {
		return MinSpeed
	}
	if v > MaxSpeed {
		return MaxSpeed
	}
	return v
}
