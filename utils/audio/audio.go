// Package audio converts synthesized mp3 files into the 8 kHz mono μ-law
// frames streamed over the websocket voice transport.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/zaf/g711"
)

// StreamSampleRate is the rate of the μ-law stream.
const StreamSampleRate = 8000

// DecodeMP3 decodes an mp3 payload into mono 16-bit samples plus the
// source sample rate. The decoder always emits interleaved stereo; channels
// are averaged down to mono.
func DecodeMP3(data []byte) ([]int16, int, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("decode mp3: %w", err)
	}
	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return nil, 0, fmt.Errorf("decode mp3: %w", err)
	}

	stereo := make([]int16, raw.Len()/2)
	if err := binary.Read(bytes.NewReader(raw.Bytes()), binary.LittleEndian, &stereo); err != nil {
		return nil, 0, fmt.Errorf("decode mp3: %w", err)
	}

	mono := make([]int16, len(stereo)/2)
	for i := range mono {
		mono[i] = int16((int32(stereo[2*i]) + int32(stereo[2*i+1])) / 2)
	}

	sr := dec.SampleRate()
	if sr <= 0 {
		sr = 44100
	}
	return mono, sr, nil
}

// ResampleLinear converts mono samples between sample rates by linear
// interpolation. Good enough for 8 kHz telephony-grade output.
func ResampleLinear(in []int16, inRate, outRate int) []int16 {
	if inRate == outRate || len(in) == 0 {
		return in
	}
	ratio := float64(outRate) / float64(inRate)
	outN := int(float64(len(in)) * ratio)
	out := make([]int16, outN)
	for i := 0; i < outN; i++ {
		src := float64(i) / ratio
		i0 := int(src)
		if i0 >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := src - float64(i0)
		out[i] = int16(float64(in[i0])*(1-frac) + float64(in[i0+1])*frac)
	}
	return out
}

// EncodeUlaw compresses 16-bit samples into 8-bit μ-law.
func EncodeUlaw(samples []int16) []byte {
	lpcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(lpcm[2*i:], uint16(s))
	}
	return g711.EncodeUlaw(lpcm)
}

// TranscodeMP3ToUlaw runs the full pipeline: mp3 → mono PCM → 8 kHz →
// μ-law bytes.
func TranscodeMP3ToUlaw(data []byte) ([]byte, error) {
	mono, rate, err := DecodeMP3(data)
	if err != nil {
		return nil, err
	}
	return EncodeUlaw(ResampleLinear(mono, rate, StreamSampleRate)), nil
}

// SplitFrames chunks a μ-law stream into fixed-size frames; the final
// frame may be shorter.
func SplitFrames(data []byte, frameSize int) [][]byte {
	if frameSize <= 0 || len(data) == 0 {
		return nil
	}
	frames := make([][]byte, 0, len(data)/frameSize+1)
	for len(data) > frameSize {
		frames = append(frames, data[:frameSize])
		data = data[frameSize:]
	}
	return append(frames, data)
}
