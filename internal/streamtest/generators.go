// SPDX-License-Identifier: EPL-2.0

package streamtest

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/ik5/avstream/stream"
)

// Sine is an endless Float32 sine wave. It knows its position but has no
// length, and seeking moves the phase.
type Sine struct {
	sampleRate int
	channels   int
	freq       float64
	amplitude  float64
	pos        int64
	limit      int64
}

// NewSine returns a sine of freq Hz at half amplitude.
func NewSine(sampleRate, channels int, freq float64) *Sine {
	return &Sine{sampleRate: sampleRate, channels: channels, freq: freq, amplitude: 0.5, limit: -1}
}

// Limit ends the wave after n sample-groups. The length stays unknown.
func (s *Sine) Limit(n int64) *Sine {
	s.limit = n
	return s
}

// At returns the value of sample-group i.
func (s *Sine) At(i int64) float32 {
	t := float64(i) / float64(s.sampleRate)
	return float32(s.amplitude * math.Sin(2*math.Pi*s.freq*t))
}

func (s *Sine) Format() stream.SampleFormat { return stream.Float32 }
func (s *Sine) SampleRate() int             { return s.sampleRate }
func (s *Sine) Channels() int               { return s.channels }
func (s *Sine) Position() (int64, bool)     { return s.pos, true }
func (s *Sine) Length() (int64, bool)       { return 0, false }
func (s *Sine) CanSeek() bool               { return true }
func (s *Sine) Close() error                { return nil }

func (s *Sine) Seek(pos int64) error {
	if err := stream.CheckSeek(true, pos); err != nil {
		return err
	}
	s.pos = pos
	return nil
}

func (s *Sine) Read(p []byte) (int, error) {
	gs := 4 * s.channels
	want, err := stream.CheckSampleBuffer(p, gs)
	if err != nil {
		return 0, err
	}
	groups := int64(want / gs)
	if s.limit >= 0 {
		groups = min(groups, s.limit-s.pos)
		if groups <= 0 {
			return 0, io.EOF
		}
	}
	for g := range groups {
		bits := math.Float32bits(s.At(s.pos + g))
		for ch := range s.channels {
			binary.LittleEndian.PutUint32(p[int(g)*gs+4*ch:], bits)
		}
	}
	s.pos += groups
	return int(groups) * gs, nil
}

// Blink is an endless Bgra8888 frame stream alternating between an all
// black and an all white frame, once per second.
type Blink struct {
	width  int
	height int
	rate   stream.Rational
	pos    int64
}

// NewBlink returns a blink stream at rate frames per second.
func NewBlink(width, height int, rate stream.Rational) *Blink {
	return &Blink{width: width, height: height, rate: rate}
}

func (b *Blink) Format() stream.FrameFormat { return stream.Bgra8888 }
func (b *Blink) FrameRate() stream.Rational { return b.rate }
func (b *Blink) FrameWidth() int            { return b.width }
func (b *Blink) FrameHeight() int           { return b.height }
func (b *Blink) FrameStride() int           { return stream.Bgra8888.MinStride(b.width) }
func (b *Blink) FrameDataSize() int         { return b.FrameStride() * b.height }
func (b *Blink) Position() (int64, bool)    { return b.pos, true }
func (b *Blink) Length() (int64, bool)      { return 0, false }
func (b *Blink) CanSeek() bool              { return true }
func (b *Blink) Close() error               { return nil }

func (b *Blink) Seek(pos int64) error {
	if err := stream.CheckSeek(true, pos); err != nil {
		return err
	}
	b.pos = pos
	return nil
}

// White reports whether frame i is white.
func (b *Blink) White(i int64) bool {
	return (b.rate.FrameTime(i).Milliseconds()/1000)%2 == 1
}

func (b *Blink) ReadFrame(p []byte) error {
	if err := stream.CheckFrameBuffer(p, b); err != nil {
		return err
	}
	var v byte
	if b.White(b.pos) {
		v = 0xFF
	}
	for i := range b.FrameDataSize() {
		p[i] = v
	}
	b.pos++
	return nil
}
