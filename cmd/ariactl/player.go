package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"

	"ariavoice/client"
)

// speakerPlayer plays server-synthesized mp3 clips through the local
// speaker. It satisfies the orchestrator's Player interface.
type speakerPlayer struct {
	api *client.Client

	initOnce sync.Once
	initErr  error
	rate     beep.SampleRate
}

func newSpeakerPlayer(api *client.Client) *speakerPlayer {
	return &speakerPlayer{api: api}
}

type readNopCloser struct{ io.Reader }

func (readNopCloser) Close() error { return nil }

// Play downloads the clip and blocks until playback completes or ctx is
// cancelled.
func (p *speakerPlayer) Play(ctx context.Context, audioURL string) error {
	data, err := p.api.FetchAudio(ctx, audioURL)
	if err != nil {
		return err
	}
	return p.playBytes(ctx, data)
}

func (p *speakerPlayer) playBytes(ctx context.Context, data []byte) error {
	streamer, format, err := mp3.Decode(readNopCloser{bytes.NewReader(data)})
	if err != nil {
		return fmt.Errorf("ariactl: decode mp3: %w", err)
	}
	defer streamer.Close()

	p.initOnce.Do(func() {
		p.rate = format.SampleRate
		p.initErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if p.initErr != nil {
		return fmt.Errorf("ariactl: init speaker: %w", p.initErr)
	}

	stream := beep.Streamer(streamer)
	if format.SampleRate != p.rate {
		stream = beep.Resample(4, format.SampleRate, p.rate, streamer)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(stream, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// Stop interrupts any playback in progress.
func (p *speakerPlayer) Stop() {
	speaker.Clear()
}
