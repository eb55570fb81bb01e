package core

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleSystem    ChatRole = "system"
)

// Turn is one message within a session, assistant text already cleaned of
// markdown.
type Turn struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// ChatMessage is a message as sent to the chat-completion provider.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Sentiment is a lightweight tag computed from the user's message via fixed
// keyword lists.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentCurious  Sentiment = "curious"
	SentimentNeutral  Sentiment = "neutral"
)
