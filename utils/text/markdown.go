package text

import (
	"regexp"
	"strings"
)

// stripRule is one ordered substitution applied while flattening markdown
// into speakable text.
type stripRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// stripRules is applied strictly in order. The order is load-bearing: code
// fences must go before inline code, triple emphasis before double before
// single, and the residual control-character sweep must run last.
var stripRules = []stripRule{
	{regexp.MustCompile("(?s)```.*?```"), ""},           // fenced code blocks
	{regexp.MustCompile("`([^`]+)`"), "$1"},             // inline code
	{regexp.MustCompile(`\*\*\*(.+?)\*\*\*`), "$1"},     // bold italic
	{regexp.MustCompile(`\*\*(.+?)\*\*`), "$1"},         // bold
	{regexp.MustCompile(`\*(.+?)\*`), "$1"},             // italic
	{regexp.MustCompile(`___(.+?)___`), "$1"},           // bold italic (underscore)
	{regexp.MustCompile(`__(.+?)__`), "$1"},             // bold (underscore)
	{regexp.MustCompile(`_(.+?)_`), "$1"},               // italic (underscore)
	{regexp.MustCompile(`(?m)^#{1,6}\s*`), ""},          // headers
	{regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`), ""},  // images
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"}, // links
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},        // unordered lists
	{regexp.MustCompile(`(?m)^\s*\d+\.\s+`), ""},        // ordered lists
	{regexp.MustCompile(`(?m)^\s*>\s*`), ""},            // blockquotes
	{regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`), ""},      // horizontal rules
	{regexp.MustCompile(`\|`), ","},                     // table pipes
	{regexp.MustCompile(`\n{3,}`), "\n\n"},              // excess blank lines
	{regexp.MustCompile(`  +`), " "},                    // repeated spaces
	{regexp.MustCompile("[*_~`#]"), ""},                 // residual control chars
}

// StripMarkdown flattens markdown formatting into plain text suitable for
// speech synthesis. Substitutions run in a fixed documented order.
func StripMarkdown(s string) string {
	for _, r := range stripRules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return strings.TrimSpace(s)
}
