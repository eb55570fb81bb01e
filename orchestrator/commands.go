package orchestrator

import "strings"

// Command is a special voice command short-circuited before dispatch.
type Command string

const (
	CommandNone   Command = ""
	CommandStop   Command = "stop"
	CommandClear  Command = "clear"
	CommandRepeat Command = "repeat"
)

// Detection is first-match substring containment, case-insensitive, in the
// order stop → clear → repeat.
var commandPhrases = []struct {
	command Command
	phrases []string
}{
	{CommandStop, []string{"pare", "para", "stop", "silêncio", "cala a boca"}},
	{CommandClear, []string{"nova conversa", "recomeçar", "limpar conversa", "novo chat"}},
	{CommandRepeat, []string{"repita", "repetir", "de novo", "outra vez"}},
}

// DetectCommand resolves a transcript to a special command, or CommandNone.
func DetectCommand(transcript string) Command {
	lower := strings.ToLower(strings.TrimSpace(transcript))
	for _, group := range commandPhrases {
		for _, phrase := range group.phrases {
			if strings.Contains(lower, phrase) {
				return group.command
			}
		}
	}
	return CommandNone
}

// containsWakeWord reports whether the transcript names any wake word.
func containsWakeWord(transcript string, wakeWords []string) bool {
	lower := strings.ToLower(transcript)
	for _, w := range wakeWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
