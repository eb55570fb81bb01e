package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL})
}

func TestVoiceResolvesRelativeAudioURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/voice" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"Olá!","audioUrl":"/audio/abc123def456.mp3","sentiment":"neutral"}`))
	})

	reply, err := c.Voice(context.Background(), "oi", "s1")
	if err != nil {
		t.Fatalf("Voice() error = %v", err)
	}
	if reply.Text != "Olá!" {
		t.Errorf("text = %q", reply.Text)
	}
	if reply.AudioURL == "" || reply.AudioURL[0] == '/' {
		t.Errorf("audio URL = %q, want absolute", reply.AudioURL)
	}
}

func TestVoiceNullAudioURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"Olá!","audioUrl":null,"sentiment":"neutral"}`))
	})

	reply, err := c.Voice(context.Background(), "oi", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if reply.AudioURL != "" {
		t.Errorf("audio URL = %q, want empty", reply.AudioURL)
	}
}

func TestErrorResponseMapsToAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"message: must not be empty"}`))
	})

	_, err := c.Chat(context.Background(), "", "s1", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apiErr.Status)
	}
	if apiErr.Message != "message: must not be empty" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestErrorResponseWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := c.Clear(context.Background(), "s1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.Message != http.StatusText(http.StatusInternalServerError) {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestHistoryLimitQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "7" {
			t.Errorf("limit = %q, want 7", got)
		}
		w.Write([]byte(`{"conversations":[],"total":0}`))
	})

	if _, _, err := c.History(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
}

func TestFetchAudioRelativePath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/abc.mp3" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte("mp3-bytes"))
	})

	data, err := c.FetchAudio(context.Background(), "/audio/abc.mp3")
	if err != nil {
		t.Fatalf("FetchAudio() error = %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Errorf("data = %q", data)
	}
}
