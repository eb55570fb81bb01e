package server

import (
	"context"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ariavoice/core"
	"ariavoice/protocol"
	"ariavoice/utils/audio"
	"ariavoice/utils/text"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The browser client is served from the same origin in production;
	// permissive here to support the CLI client.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ulawFrameSize is 400 ms of 8 kHz μ-law per websocket frame.
const ulawFrameSize = 3200

// voiceSession is one connected /ws/voice client.
type voiceSession struct {
	server    *Server
	conn      *websocket.Conn
	sessionID string
	logger    *core.Logger

	writeMu   sync.Mutex
	lastAudio []byte // μ-law stream of the previous reply, for "repeat"
}

// handleVoiceSocket runs a full-duplex voice session: transcripts in,
// state/reply/audio frames out.
func (s *Server) handleVoiceSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	session := &voiceSession{
		server:    s,
		conn:      conn,
		sessionID: uuid.NewString(),
		logger:    s.logger.With(map[string]interface{}{"component": "ws"}),
	}
	session.logger.Info("voice session opened", "session", session.sessionID)
	defer session.logger.Info("voice session closed", "session", session.sessionID)

	session.sendState("idle")
	session.readLoop(r.Context())
}

func (vs *voiceSession) readLoop(ctx context.Context) {
	for {
		_, data, err := vs.conn.ReadMessage()
		if err != nil {
			return
		}
		msgType, payload, err := protocol.Unmarshal(data)
		if err != nil {
			vs.sendError("malformed message")
			continue
		}

		switch msgType {
		case protocol.MsgTranscript:
			t, err := protocol.UnmarshalPayload[protocol.TranscriptPayload](payload)
			if err != nil {
				vs.sendError("malformed transcript")
				continue
			}
			vs.handleTranscript(ctx, t.Text)
		case protocol.MsgCommand:
			c, err := protocol.UnmarshalPayload[protocol.CommandPayload](payload)
			if err != nil {
				vs.sendError("malformed command")
				continue
			}
			vs.handleCommand(c.Name)
		default:
			vs.sendError("unsupported message type")
		}
	}
}

func (vs *voiceSession) handleTranscript(ctx context.Context, transcript string) {
	s := vs.server
	start := s.clock.Now()
	vs.sendState("thinking")

	sentiment := text.AnalyzeSentiment(transcript)

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reply, err := s.chat.Chat(reqCtx, transcript, vs.sessionID, "")
	if err != nil {
		vs.sendError(err.Error())
		vs.sendState("idle")
		return
	}
	s.logExchange(transcript, reply, sentiment)

	vs.send(protocol.MsgReply, protocol.ReplyPayload{
		Text:             reply,
		Sentiment:        string(sentiment),
		ProcessingTimeMs: s.clock.Now().Sub(start).Milliseconds(),
	})

	settings := s.settings.Get()
	result, err := s.tts.Synthesize(reqCtx, reply, settings.Voice, settings.Speed)
	if err != nil {
		// Text already delivered; the client falls back to local synthesis.
		vs.logger.Warn("stream synthesis failed", "error", err)
		vs.sendState("idle")
		return
	}

	mp3Data, err := s.tts.ReadCached(result.URL)
	if err != nil {
		vs.sendState("idle")
		return
	}
	ulaw, err := audio.TranscodeMP3ToUlaw(mp3Data)
	if err != nil {
		vs.logger.Warn("transcode failed", "error", err)
		vs.sendState("idle")
		return
	}
	vs.lastAudio = ulaw
	vs.streamAudio(ulaw)
}

func (vs *voiceSession) handleCommand(name protocol.CommandName) {
	switch name {
	case protocol.CommandStop:
		vs.sendState("idle")
	case protocol.CommandClear:
		vs.server.chat.ClearSession(vs.sessionID)
		vs.sessionID = uuid.NewString()
		vs.sendState("idle")
	case protocol.CommandRepeat:
		if len(vs.lastAudio) > 0 {
			vs.streamAudio(vs.lastAudio)
		} else {
			vs.sendState("idle")
		}
	default:
		vs.sendError("unknown command")
	}
}

func (vs *voiceSession) streamAudio(ulaw []byte) {
	vs.sendState("speaking")
	for i, frame := range audio.SplitFrames(ulaw, ulawFrameSize) {
		vs.send(protocol.MsgAudio, protocol.AudioPayload{
			Data:       base64.StdEncoding.EncodeToString(frame),
			SampleRate: audio.StreamSampleRate,
			Encoding:   "ulaw",
			Seq:        i,
		})
	}
	vs.send(protocol.MsgAudioEnd, nil)
	vs.sendState("idle")
}

func (vs *voiceSession) sendState(state string) {
	vs.send(protocol.MsgState, protocol.StatePayload{State: state})
}

func (vs *voiceSession) sendError(message string) {
	vs.send(protocol.MsgError, protocol.ErrorPayload{Message: message})
}

func (vs *voiceSession) send(msgType protocol.MessageType, payload interface{}) {
	data, err := protocol.Marshal(msgType, payload)
	if err != nil {
		return
	}
	vs.writeMu.Lock()
	defer vs.writeMu.Unlock()
	vs.conn.WriteMessage(websocket.TextMessage, data)
}
