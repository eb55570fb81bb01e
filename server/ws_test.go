package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ariavoice/protocol"
)

func dialVoiceSocket(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(env.server.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/voice"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) (protocol.MessageType, []byte) {
	t.Helper()
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	msgType, raw, err := protocol.Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return msgType, raw
}

func expectState(t *testing.T, conn *websocket.Conn, want string) {
	t.Helper()
	msgType, raw := readEnvelope(t, conn)
	if msgType != protocol.MsgState {
		t.Fatalf("type = %q, want state", msgType)
	}
	payload, err := protocol.UnmarshalPayload[protocol.StatePayload](raw)
	if err != nil {
		t.Fatal(err)
	}
	if payload.State != want {
		t.Fatalf("state = %q, want %q", payload.State, want)
	}
}

func sendEnvelope(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType, payload interface{}) {
	t.Helper()
	data, err := protocol.Marshal(msgType, payload)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatal(err)
	}
}

func TestVoiceSocketTranscriptFlow(t *testing.T) {
	// The fake synthesizer returns bytes that are not valid mp3, so the
	// exchange delivers the text reply and then returns to idle without
	// audio frames.
	env := newTestEnv(t, &scriptedLLM{reply: "Olá!"}, &scriptedSynth{})
	conn := dialVoiceSocket(t, env)

	expectState(t, conn, "idle")

	sendEnvelope(t, conn, protocol.MsgTranscript, protocol.TranscriptPayload{Text: "oi tudo bem"})
	expectState(t, conn, "thinking")

	msgType, raw := readEnvelope(t, conn)
	if msgType != protocol.MsgReply {
		t.Fatalf("type = %q, want reply", msgType)
	}
	reply, err := protocol.UnmarshalPayload[protocol.ReplyPayload](raw)
	if err != nil {
		t.Fatal(err)
	}
	if reply.Text != "Olá!" {
		t.Errorf("reply = %q", reply.Text)
	}

	expectState(t, conn, "idle")
}

func TestVoiceSocketChatFailure(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{err: context.DeadlineExceeded}, &scriptedSynth{})
	conn := dialVoiceSocket(t, env)

	expectState(t, conn, "idle")
	sendEnvelope(t, conn, protocol.MsgTranscript, protocol.TranscriptPayload{Text: "oi"})
	expectState(t, conn, "thinking")

	msgType, _ := readEnvelope(t, conn)
	if msgType != protocol.MsgError {
		t.Fatalf("type = %q, want error", msgType)
	}
	expectState(t, conn, "idle")
}

func TestVoiceSocketCommands(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{reply: "x"}, &scriptedSynth{})
	conn := dialVoiceSocket(t, env)

	expectState(t, conn, "idle")

	sendEnvelope(t, conn, protocol.MsgCommand, protocol.CommandPayload{Name: protocol.CommandStop})
	expectState(t, conn, "idle")

	sendEnvelope(t, conn, protocol.MsgCommand, protocol.CommandPayload{Name: protocol.CommandClear})
	expectState(t, conn, "idle")

	// Repeat with no prior audio degrades to an idle announcement.
	sendEnvelope(t, conn, protocol.MsgCommand, protocol.CommandPayload{Name: protocol.CommandRepeat})
	expectState(t, conn, "idle")
}

func TestVoiceSocketMalformedMessage(t *testing.T) {
	env := newTestEnv(t, &scriptedLLM{reply: "x"}, &scriptedSynth{})
	conn := dialVoiceSocket(t, env)

	expectState(t, conn, "idle")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	msgType, _ := readEnvelope(t, conn)
	if msgType != protocol.MsgError {
		t.Fatalf("type = %q, want error", msgType)
	}
}
