package text

import "strings"

// MaxSpeechLength bounds the text handed to the TTS engine. Longer replies
// are cut at a rune boundary.
const MaxSpeechLength = 800

// SanitizeForSpeech normalizes a reply before it reaches the TTS engine:
// double quotes become apostrophes (they break subprocess argument
// quoting), newlines become spaces, and the result is truncated to
// MaxSpeechLength runes.
func SanitizeForSpeech(s string) string {
	s = strings.ReplaceAll(s, `"`, "'")
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) > MaxSpeechLength {
		runes = runes[:MaxSpeechLength]
	}
	return strings.TrimSpace(string(runes))
}
