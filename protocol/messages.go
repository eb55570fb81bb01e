// Package protocol defines the envelope and message types spoken over the
// /ws/voice transport. Each websocket frame is a JSON Envelope whose
// payload shape depends on the type.
package protocol

import "encoding/json"

type MessageType string

// Client → server.
const (
	// MsgTranscript carries one final speech transcript.
	MsgTranscript MessageType = "transcript"
	// MsgCommand carries a special voice command resolved client-side.
	MsgCommand MessageType = "command"
)

// Server → client.
const (
	// MsgState announces an assistant state change.
	MsgState MessageType = "state"
	// MsgReply carries the cleaned assistant reply text.
	MsgReply MessageType = "reply"
	// MsgAudio carries one base64 μ-law audio frame.
	MsgAudio MessageType = "audio"
	// MsgAudioEnd marks the end of the audio stream for a reply.
	MsgAudioEnd MessageType = "audio_end"
	// MsgError reports a failure for the current exchange.
	MsgError MessageType = "error"
)

// Envelope is the wire frame: a type tag plus a raw payload.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TranscriptPayload is the client's transcript submission.
type TranscriptPayload struct {
	Text string `json:"text"`
}

// CommandName enumerates the special voice commands.
type CommandName string

const (
	CommandStop   CommandName = "stop"
	CommandClear  CommandName = "clear"
	CommandRepeat CommandName = "repeat"
)

// CommandPayload is a client-side special command.
type CommandPayload struct {
	Name CommandName `json:"name"`
}

// StatePayload announces the assistant state: idle, listening, thinking,
// speaking, error.
type StatePayload struct {
	State string `json:"state"`
}

// ReplyPayload carries the assistant's cleaned reply.
type ReplyPayload struct {
	Text             string `json:"text"`
	Sentiment        string `json:"sentiment"`
	ProcessingTimeMs int64  `json:"processingTime"`
}

// AudioPayload is one frame of 8 kHz mono μ-law audio, base64 encoded.
type AudioPayload struct {
	Data       string `json:"data"`
	SampleRate int    `json:"sampleRate"`
	Encoding   string `json:"encoding"` // "ulaw"
	Seq        int    `json:"seq"`
}

// ErrorPayload reports a failed exchange; the session stays open.
type ErrorPayload struct {
	Message string `json:"message"`
}
