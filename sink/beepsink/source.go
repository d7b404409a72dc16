// SPDX-License-Identifier: EPL-2.0

package beepsink

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/gopxl/beep"

	"github.com/ik5/avstream/stream"
)

// Source is a Float32 SampleStream reading from a beep.Streamer. Position is
// counted locally; length and seeking are available when the streamer is a
// beep.StreamSeeker.
type Source struct {
	st       beep.Streamer
	seeker   beep.StreamSeeker
	format   beep.Format
	scratch  [][2]float64
	pos      int64
	finished bool
}

// NewSource wraps st, producing format.NumChannels channels at
// format.SampleRate.
func NewSource(st beep.Streamer, format beep.Format) (*Source, error) {
	if st == nil {
		return nil, ErrNilStream
	}
	if format.NumChannels != 1 && format.NumChannels != 2 {
		return nil, ErrChannels
	}
	s := &Source{st: st, format: format}
	if ss, ok := st.(beep.StreamSeeker); ok {
		s.seeker = ss
		s.pos = int64(ss.Position())
	}
	return s, nil
}

func (s *Source) Format() stream.SampleFormat { return stream.Float32 }
func (s *Source) SampleRate() int             { return int(s.format.SampleRate) }
func (s *Source) Channels() int               { return s.format.NumChannels }
func (s *Source) Position() (int64, bool)     { return s.pos, true }
func (s *Source) CanSeek() bool               { return s.seeker != nil }

func (s *Source) Length() (int64, bool) {
	if s.seeker == nil {
		return 0, false
	}
	return int64(s.seeker.Len()), true
}

func (s *Source) Seek(pos int64) error {
	if err := stream.CheckSeek(s.CanSeek(), pos); err != nil {
		return err
	}
	pos = min(pos, int64(s.seeker.Len()))
	if err := s.seeker.Seek(int(pos)); err != nil {
		return err
	}
	s.pos, s.finished = pos, false
	return nil
}

func (s *Source) Read(p []byte) (int, error) {
	gs := 4 * s.format.NumChannels
	want, err := stream.CheckSampleBuffer(p, gs)
	if err != nil {
		return 0, err
	}
	if s.finished {
		if err := s.st.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	groups := want / gs
	if cap(s.scratch) < groups {
		s.scratch = make([][2]float64, groups)
	}
	n, ok := s.st.Stream(s.scratch[:groups])
	for i, smp := range s.scratch[:n] {
		g := p[i*gs:]
		binary.LittleEndian.PutUint32(g, math.Float32bits(float32(smp[0])))
		if s.format.NumChannels == 2 {
			binary.LittleEndian.PutUint32(g[4:], math.Float32bits(float32(smp[1])))
		}
	}
	s.pos += int64(n)

	if !ok {
		s.finished = true
		if err := s.st.Err(); err != nil {
			return n * gs, err
		}
		if n == 0 {
			return 0, io.EOF
		}
	}
	return n * gs, nil
}

// Close closes the streamer when it is a beep.StreamCloser.
func (s *Source) Close() error {
	if c, ok := s.st.(beep.StreamCloser); ok {
		return c.Close()
	}
	return nil
}
