// SPDX-License-Identifier: EPL-2.0

package beepsink

import (
	"encoding/binary"
	"io"
	"log/slog"
	"math"

	"github.com/gopxl/beep"

	"github.com/ik5/avstream/stream"
)

// Streamer presents a SampleStream as a beep.StreamSeekCloser.
type Streamer struct {
	src       stream.SampleStream
	channels  int
	precision int
	buf       []byte
	err       error
	drained   bool
	log       *slog.Logger
}

var _ beep.StreamSeekCloser = (*Streamer)(nil)

// New wraps src, converting its samples to Float32 when needed.
func New(src stream.SampleStream) (*Streamer, error) {
	if src == nil {
		return nil, ErrNilStream
	}
	precision := src.Format().Size()
	f, err := stream.AsFormat(src, stream.Float32)
	if err != nil {
		return nil, err
	}
	s := &Streamer{
		src:       f,
		channels:  f.Channels(),
		precision: precision,
		log:       slog.Default().With("component", "beepsink"),
	}
	s.log.Debug("streamer created", "rate", f.SampleRate(), "channels", s.channels, "precision", precision)
	return s, nil
}

// Format describes the stream in beep terms. Precision is the byte size of
// the source sample format.
func (s *Streamer) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(s.src.SampleRate()),
		NumChannels: min(s.channels, 2),
		Precision:   s.precision,
	}
}

// Stream fills samples from the source. It reports ok == false once the
// source is drained or failed; Err distinguishes the two.
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	if s.drained || len(samples) == 0 {
		return 0, !s.drained
	}

	gs := 4 * s.channels
	if need := len(samples) * gs; cap(s.buf) < need {
		s.buf = make([]byte, need)
	}

	n := 0
	for n < len(samples) {
		m, err := s.src.Read(s.buf[:(len(samples)-n)*gs])
		s.decode(samples[n:], s.buf[:m])
		n += m / gs
		if m == 0 && err == nil {
			break
		}
		if err == io.EOF {
			s.drained = true
			break
		}
		if err != nil {
			s.err = err
			s.drained = true
			s.log.Error("source read failed", "error", err)
			break
		}
	}
	if n == 0 {
		return 0, !s.drained
	}
	return n, true
}

func (s *Streamer) decode(dst [][2]float64, b []byte) {
	gs := 4 * s.channels
	for i := range len(b) / gs {
		g := b[i*gs:]
		l := float64(math.Float32frombits(binary.LittleEndian.Uint32(g)))
		r := l
		if s.channels > 1 {
			r = float64(math.Float32frombits(binary.LittleEndian.Uint32(g[4:])))
		}
		dst[i] = [2]float64{l, r}
	}
}

func (s *Streamer) Err() error { return s.err }

// Len returns the stream length in sample-groups, or 0 when it is unknown.
func (s *Streamer) Len() int {
	n, ok := s.src.Length()
	if !ok {
		return 0
	}
	return int(n)
}

// Position returns the current sample-group, or 0 when it is unknown.
func (s *Streamer) Position() int {
	p, ok := s.src.Position()
	if !ok {
		return 0
	}
	return int(p)
}

// Seek moves the source and clears a previous end of stream or error.
func (s *Streamer) Seek(p int) error {
	if err := s.src.Seek(int64(p)); err != nil {
		return err
	}
	s.drained, s.err = false, nil
	s.log.Debug("seek", "position", p)
	return nil
}

func (s *Streamer) Close() error { return s.src.Close() }
