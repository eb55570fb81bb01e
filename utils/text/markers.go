package text

import (
	"regexp"
	"strings"
)

// The assistant flags facts worth persisting by appending
// "[LEMBRAR: fact]" to its raw output. Markers are stripped from the
// visible reply and the captured facts go to the memory store.
var rememberMarkerRegex = regexp.MustCompile(`(?i)\[LEMBRAR:\s*(.+?)\]`)

// ExtractMemories returns the reply with all remember markers removed,
// plus the captured facts in order of appearance.
func ExtractMemories(s string) (clean string, facts []string) {
	for _, m := range rememberMarkerRegex.FindAllStringSubmatch(s, -1) {
		fact := strings.TrimSpace(m[1])
		if fact != "" {
			facts = append(facts, fact)
		}
	}
	clean = strings.TrimSpace(rememberMarkerRegex.ReplaceAllString(s, ""))
	return clean, facts
}
