package core

import "fmt"

// InvalidInputError reports a request rejected before any provider call:
// empty message, empty text, unknown session payload.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// UpstreamError reports a non-success response from the chat-completion
// provider. The provider's own error text is carried through.
type UpstreamError struct {
	Provider string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream error [%s] status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("upstream error [%s]: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// SynthesisError reports a TTS engine failure: subprocess exit, HTTP
// failure, or missing output file. Callers fall back to client-side
// synthesis.
type SynthesisError struct {
	Engine string
	Err    error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis error [%s]: %v", e.Engine, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// RecognitionErrorKind classifies speech-recognition failures on the
// capture side.
type RecognitionErrorKind string

const (
	// RecognitionFatal is surfaced to the user and stops the capture loop
	// (e.g. microphone permission denied).
	RecognitionFatal RecognitionErrorKind = "fatal"
	// RecognitionTransient is retried with exponential backoff (e.g.
	// network or service errors).
	RecognitionTransient RecognitionErrorKind = "transient"
	// RecognitionIgnorable is expected noise ("no speech", "aborted") and
	// restarts capture after a short delay.
	RecognitionIgnorable RecognitionErrorKind = "ignorable"
	// RecognitionOther restarts capture after a fixed delay.
	RecognitionOther RecognitionErrorKind = "other"
)

// RecognitionError reports a classified speech-recognition failure.
type RecognitionError struct {
	Code string // engine error code, e.g. "not-allowed", "network"
	Kind RecognitionErrorKind
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("recognition error [%s]: %s", e.Kind, e.Code)
}

// ClassifyRecognitionError maps an engine error code onto a retry policy.
func ClassifyRecognitionError(code string) *RecognitionError {
	kind := RecognitionOther
	switch code {
	case "not-allowed":
		kind = RecognitionFatal
	case "network", "service-not-allowed":
		kind = RecognitionTransient
	case "no-speech", "aborted":
		kind = RecognitionIgnorable
	}
	return &RecognitionError{Code: code, Kind: kind}
}
