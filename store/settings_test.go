package store

import "testing"

func ptr[T any](v T) *T { return &v }

func TestSettingsStoreApply(t *testing.T) {
	s := NewSettingsStore()

	got := s.Apply(SettingsPatch{
		Voice: ptr("thalita"),
		Speed: ptr(25),
		Model: ptr("anthropic/claude-3-haiku"),
	})
	if got.Voice != "thalita" {
		t.Errorf("Voice = %q, want %q", got.Voice, "thalita")
	}
	if got.Speed != 25 {
		t.Errorf("Speed = %d, want 25", got.Speed)
	}
	if got.Model != "anthropic/claude-3-haiku" {
		t.Errorf("Model = %q, want %q", got.Model, "anthropic/claude-3-haiku")
	}
	// Untouched fields keep defaults.
	if got.Language != "pt-BR" {
		t.Errorf("Language = %q, want %q", got.Language, "pt-BR")
	}
}

func TestSettingsStoreClampsSpeed(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{999, MaxSpeed},
		{-999, MinSpeed},
		{MaxSpeed, MaxSpeed},
		{0, 0},
	}
	for _, tt := range tests {
		s := NewSettingsStore()
		if got := s.Apply(SettingsPatch{Speed: ptr(tt.in)}); got.Speed != tt.want {
			t.Errorf("Apply(Speed=%d).Speed = %d, want %d", tt.in, got.Speed, tt.want)
		}
	}
}

func TestSettingsStoreIgnoresUnknownEnums(t *testing.T) {
	s := NewSettingsStore()
	before := s.Get()

	got := s.Apply(SettingsPatch{
		Voice: ptr("nonexistent"),
		Model: ptr("nobody/fake-model"),
		Speed: ptr(10),
	})
	if got.Voice != before.Voice {
		t.Errorf("Voice = %q, want unchanged %q", got.Voice, before.Voice)
	}
	if got.Model != before.Model {
		t.Errorf("Model = %q, want unchanged %q", got.Model, before.Model)
	}
	// Valid fields in the same patch still apply.
	if got.Speed != 10 {
		t.Errorf("Speed = %d, want 10", got.Speed)
	}
}

func TestSettingsStoreRestoreRevalidates(t *testing.T) {
	s := NewSettingsStore()
	s.Restore(Settings{
		Voice: "deleted-voice",
		Model: "deleted/model",
		Speed: 400,
	})

	got := s.Get()
	def := DefaultSettings()
	if got.Voice != def.Voice {
		t.Errorf("Voice = %q, want default %q", got.Voice, def.Voice)
	}
	if got.Model != def.Model {
		t.Errorf("Model = %q, want default %q", got.Model, def.Model)
	}
	if got.Speed != MaxSpeed {
		t.Errorf("Speed = %d, want clamped %d", got.Speed, MaxSpeed)
	}
	if got.Language != def.Language {
		t.Errorf("Language = %q, want default %q", got.Language, def.Language)
	}
}

func TestLookupVoiceFallback(t *testing.T) {
	if v := LookupVoice("nonexistent"); v.ID != DefaultVoice {
		t.Errorf("LookupVoice fallback = %q, want %q", v.ID, DefaultVoice)
	}
	if v := LookupVoice("antonio"); v.EngineID != "pt-BR-AntonioNeural" {
		t.Errorf("EngineID = %q, want %q", v.EngineID, "pt-BR-AntonioNeural")
	}
}
