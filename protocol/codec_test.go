package protocol

import "testing"

func TestMarshalUnmarshalEnvelope(t *testing.T) {
	data, err := Marshal(MsgTranscript, TranscriptPayload{Text: "oi aria"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	msgType, raw, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if msgType != MsgTranscript {
		t.Errorf("type = %q, want %q", msgType, MsgTranscript)
	}

	payload, err := UnmarshalPayload[TranscriptPayload](raw)
	if err != nil {
		t.Fatalf("UnmarshalPayload() error = %v", err)
	}
	if payload.Text != "oi aria" {
		t.Errorf("text = %q, want %q", payload.Text, "oi aria")
	}
}

func TestMarshalNilPayload(t *testing.T) {
	data, err := Marshal(MsgAudioEnd, nil)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	msgType, raw, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if msgType != MsgAudioEnd {
		t.Errorf("type = %q, want %q", msgType, MsgAudioEnd)
	}
	if len(raw) != 0 {
		t.Errorf("payload = %q, want empty", raw)
	}
}

func TestUnmarshalRejectsMissingType(t *testing.T) {
	if _, _, err := Unmarshal([]byte(`{"payload":{}}`)); err == nil {
		t.Error("Unmarshal() accepted envelope without type")
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, _, err := Unmarshal([]byte("not json")); err == nil {
		t.Error("Unmarshal() accepted garbage")
	}
}
