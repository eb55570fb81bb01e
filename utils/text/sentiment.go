package text

import (
	"regexp"

	"ariavoice/core"
)

// Keyword lists are pt-BR, matching the assistant's target audience.
// Question detection doubles as "curious".
var (
	positiveRegex = regexp.MustCompile(`(?i)feliz|ótimo|maravilh|incr[íi]vel|ador[eo]|am[oe]|bom|legal|massa|top|show|perfeito|excelente`)
	negativeRegex = regexp.MustCompile(`(?i)triste|ruim|péssimo|horrível|odeio|chato|irritad|nervos|bravo|ansios|preocupad|medo|cansad`)
	questionRegex = regexp.MustCompile(`(?i)\?|como|quando|onde|quem|qual|por\s?que|o\s?que`)
)

// AnalyzeSentiment tags a user message by first keyword match: positive,
// then negative, then curious, defaulting to neutral.
func AnalyzeSentiment(s string) core.Sentiment {
	switch {
	case positiveRegex.MatchString(s):
		return core.SentimentPositive
	case negativeRegex.MatchString(s):
		return core.SentimentNegative
	case questionRegex.MatchString(s):
		return core.SentimentCurious
	default:
		return core.SentimentNeutral
	}
}
