// Package orchestrator drives the client-side conversation loop: a state
// machine stepping idle → listening → thinking → speaking → idle, fed by a
// speech recognizer and acting through an assistant client and an audio
// player. All collaborators are injected so the machine is fully testable
// without real audio or network.
package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ariavoice/core"
)

// State is the orchestrator's externally visible condition.
type State string

const (
	StateIdle      State = "idle"
	StateListening State = "listening"
	StateThinking  State = "thinking"
	StateSpeaking  State = "speaking"
	StateError     State = "error"
)

// Recognizer is a speech capture engine. Transcripts and errors flow back
// through the orchestrator's Handle* methods.
type Recognizer interface {
	Start() error
	Stop() error
}

// Player plays a synthesized reply by reference. Play blocks until
// playback finishes or Stop interrupts it.
type Player interface {
	Play(ctx context.Context, audioURL string) error
	Stop()
}

// LocalSpeaker is the fallback when the server returns no audio.
type LocalSpeaker interface {
	Speak(ctx context.Context, text string) error
}

// VoiceReply is one assistant answer.
type VoiceReply struct {
	Text      string
	AudioURL  string
	Sentiment string
}

// Assistant is the server-side conversation API.
type Assistant interface {
	Voice(ctx context.Context, message, sessionID string) (VoiceReply, error)
	Clear(ctx context.Context, sessionID string) error
}

// Orchestrator is the conversation state machine. At most one chat request
// and one capture session are outstanding at a time; redundant Listen
// calls are no-ops.
type Orchestrator struct {
	config     Config
	assistant  Assistant
	recognizer Recognizer
	player     Player
	fallback   LocalSpeaker
	clock      core.Clock
	logger     *core.Logger

	mu           sync.Mutex
	state        State
	gen          uint64 // bumped on every transition; stale timers check it
	sessionID    string
	interim      string
	retryCount   int
	wakeActive   bool
	lastAudioURL string
	onState      func(State)
}

func New(
	config Config,
	assistant Assistant,
	recognizer Recognizer,
	player Player,
	fallback LocalSpeaker,
	clock core.Clock,
	logger *core.Logger,
) *Orchestrator {
	def := DefaultConfig()
	if config.SilenceTimeout <= 0 {
		config.SilenceTimeout = def.SilenceTimeout
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = def.RequestTimeout
	}
	if config.ErrorCooldown <= 0 {
		config.ErrorCooldown = def.ErrorCooldown
	}
	if config.RetryBase <= 0 {
		config.RetryBase = def.RetryBase
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = def.MaxRetries
	}
	if len(config.WakeWords) == 0 {
		config.WakeWords = def.WakeWords
	}
	if clock == nil {
		clock = core.RealClock{}
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Orchestrator{
		config:     config,
		assistant:  assistant,
		recognizer: recognizer,
		player:     player,
		fallback:   fallback,
		clock:      clock,
		logger:     logger,
		state:      StateIdle,
		sessionID:  "session_" + uuid.NewString(),
	}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SessionID returns the current conversation session id.
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

// OnStateChange registers a callback fired outside the lock on every
// transition.
func (o *Orchestrator) OnStateChange(fn func(State)) {
	o.mu.Lock()
	o.onState = fn
	o.mu.Unlock()
}

// Listen starts a capture session. Redundant calls while already
// listening, thinking, or speaking are ignored.
func (o *Orchestrator) Listen() {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return
	}
	o.interim = ""
	o.retryCount = 0
	notify := o.transition(StateListening)
	o.mu.Unlock()
	notify()

	if err := o.recognizer.Start(); err != nil {
		o.logger.Warn("recognizer start failed", "error", err)
		o.toIdle()
	}
}

// Stop is the explicit user stop: interrupt playback and capture and
// return to idle from any state.
func (o *Orchestrator) Stop() {
	o.player.Stop()
	o.recognizer.Stop()
	o.toIdle()
}

// HandleInterim records a partial transcript and (re)arms the silence
// timer; if no further speech arrives the interim text is dispatched.
func (o *Orchestrator) HandleInterim(transcript string) {
	o.mu.Lock()
	if o.state != StateListening {
		o.mu.Unlock()
		return
	}
	o.interim = transcript
	gen := o.bump()
	o.mu.Unlock()

	o.afterGen(gen, o.config.SilenceTimeout, func() {
		o.mu.Lock()
		pending := strings.TrimSpace(o.interim)
		o.interim = ""
		o.mu.Unlock()
		if pending != "" {
			o.HandleFinal(pending)
		}
	})
}

// HandleFinal receives a final transcript: wake-word gating and special
// commands run first, then the text is dispatched to the assistant.
func (o *Orchestrator) HandleFinal(transcript string) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return
	}

	o.mu.Lock()
	if o.state != StateListening {
		o.mu.Unlock()
		return
	}

	if o.config.WakeWord && !o.wakeActive {
		if containsWakeWord(transcript, o.config.WakeWords) {
			o.wakeActive = true
		}
		o.mu.Unlock()
		return
	}

	switch DetectCommand(transcript) {
	case CommandStop:
		o.mu.Unlock()
		o.player.Stop()
		return
	case CommandClear:
		sessionID := o.sessionID
		o.sessionID = "session_" + uuid.NewString()
		o.mu.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), o.config.RequestTimeout)
		defer cancel()
		if err := o.assistant.Clear(ctx, sessionID); err != nil {
			o.logger.Warn("clear failed", "error", err)
		}
		return
	case CommandRepeat:
		url := o.lastAudioURL
		o.mu.Unlock()
		if url != "" {
			o.playAndResume(url, "")
		}
		return
	}

	o.wakeActive = false
	notify := o.transition(StateThinking)
	o.mu.Unlock()
	notify()

	o.recognizer.Stop()
	go o.process(transcript)
}

// HandleRecognitionError applies the retry policy for a classified capture
// failure.
func (o *Orchestrator) HandleRecognitionError(code string) {
	recErr := core.ClassifyRecognitionError(code)

	switch recErr.Kind {
	case core.RecognitionFatal:
		o.logger.Error("recognition blocked", "code", code)
		o.mu.Lock()
		notify := o.transition(StateError)
		o.mu.Unlock()
		notify()

	case core.RecognitionTransient:
		o.mu.Lock()
		if o.retryCount >= o.config.MaxRetries {
			o.retryCount = 0
			notify := o.transition(StateError)
			o.mu.Unlock()
			notify()
			o.scheduleIdle(o.config.ErrorCooldown)
			return
		}
		delay := o.config.RetryBase << o.retryCount
		o.retryCount++
		notify := o.transition(StateIdle)
		gen := o.gen
		o.mu.Unlock()
		notify()
		o.afterGen(gen, delay, o.Listen)

	case core.RecognitionIgnorable:
		// Expected noise; restart capture almost immediately.
		o.restartAfter(200 * time.Millisecond)

	default:
		o.restartAfter(time.Second)
	}
}

// process runs one assistant round trip, then plays the reply.
func (o *Orchestrator) process(transcript string) {
	ctx, cancel := context.WithTimeout(context.Background(), o.config.RequestTimeout)
	defer cancel()

	o.mu.Lock()
	sessionID := o.sessionID
	o.mu.Unlock()

	reply, err := o.assistant.Voice(ctx, transcript, sessionID)
	if err != nil {
		o.logger.Warn("assistant request failed", "error", err)
		o.mu.Lock()
		notify := o.transition(StateError)
		o.mu.Unlock()
		notify()
		o.scheduleIdle(o.config.ErrorCooldown)
		return
	}

	o.mu.Lock()
	if reply.AudioURL != "" {
		o.lastAudioURL = reply.AudioURL
	}
	o.mu.Unlock()

	o.playAndResume(reply.AudioURL, reply.Text)
}

// playAndResume speaks a reply (remote audio, or local fallback when the
// URL is empty) and returns to idle, re-listening in continuous mode.
func (o *Orchestrator) playAndResume(audioURL, fallbackText string) {
	o.mu.Lock()
	notify := o.transition(StateSpeaking)
	o.mu.Unlock()
	notify()

	var err error
	ctx, cancel := context.WithTimeout(context.Background(), o.config.RequestTimeout)
	defer cancel()
	switch {
	case audioURL != "":
		err = o.player.Play(ctx, audioURL)
	case o.fallback != nil && fallbackText != "":
		err = o.fallback.Speak(ctx, fallbackText)
	}
	if err != nil {
		o.logger.Warn("playback failed", "error", err)
	}

	o.toIdle()
	if o.config.Continuous {
		o.mu.Lock()
		gen := o.gen
		o.mu.Unlock()
		o.afterGen(gen, 400*time.Millisecond, o.Listen)
	}
}

// toIdle forces the idle state from anywhere.
func (o *Orchestrator) toIdle() {
	o.mu.Lock()
	notify := o.transition(StateIdle)
	o.mu.Unlock()
	notify()
}

// scheduleIdle returns to idle after a delay, then re-listens in
// continuous mode.
func (o *Orchestrator) scheduleIdle(delay time.Duration) {
	o.mu.Lock()
	gen := o.gen
	o.mu.Unlock()
	o.afterGen(gen, delay, func() {
		o.toIdle()
		if o.config.Continuous {
			o.Listen()
		}
	})
}

// restartAfter drops back to idle and re-listens after the delay.
func (o *Orchestrator) restartAfter(delay time.Duration) {
	o.toIdle()
	o.mu.Lock()
	gen := o.gen
	o.mu.Unlock()
	o.afterGen(gen, delay, o.Listen)
}

// transition moves to a new state while holding the lock and returns the
// notification thunk to call after unlocking.
func (o *Orchestrator) transition(next State) func() {
	o.state = next
	o.gen++
	fn := o.onState
	if fn == nil {
		return func() {}
	}
	return func() { fn(next) }
}

// bump invalidates pending timers without changing state.
func (o *Orchestrator) bump() uint64 {
	o.gen++
	return o.gen
}

// afterGen runs fn after d unless the machine has since transitioned.
func (o *Orchestrator) afterGen(gen uint64, d time.Duration, fn func()) {
	go func() {
		<-o.clock.After(d)
		o.mu.Lock()
		stale := o.gen != gen
		o.mu.Unlock()
		if !stale {
			fn()
		}
	}()
}
