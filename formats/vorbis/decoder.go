// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/avstream/stream"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read decodes interleaved samples into p and returns the number of
	// values written.
	Read(p []float32) (int, error)
}

// seekReader is implemented by readers over a seekable source. Length and
// positions are counted in samples per channel.
type seekReader interface {
	oggReader
	Length() int64
	Position() int64
	SetPosition(pos int64) error
}

// Stream is a Float32 SampleStream over an Ogg Vorbis decoder.
type Stream struct {
	dec      oggReader
	seeker   seekReader
	channels int
	groups   int64
	pos      int64

	frameBuf []float32
	// carry holds decoded values past the last whole sample-group.
	carry []float32
}

func newStream(dec oggReader) *Stream {
	s := &Stream{dec: dec, channels: dec.Channels()}
	if sr, ok := dec.(seekReader); ok && sr.Length() > 0 {
		s.seeker = sr
		s.groups = sr.Length()
		s.pos = sr.Position()
	}
	return s
}

func (s *Stream) Format() stream.SampleFormat { return stream.Float32 }
func (s *Stream) SampleRate() int             { return s.dec.SampleRate() }
func (s *Stream) Channels() int               { return s.channels }
func (s *Stream) Position() (int64, bool)     { return s.pos, true }
func (s *Stream) CanSeek() bool               { return s.seeker != nil }
func (s *Stream) Close() error                { return nil }

func (s *Stream) Length() (int64, bool) {
	if s.seeker == nil {
		return 0, false
	}
	return s.groups, true
}

func (s *Stream) Seek(pos int64) error {
	if err := stream.CheckSeek(s.CanSeek(), pos); err != nil {
		return err
	}
	pos = min(pos, s.groups)
	if err := s.seeker.SetPosition(pos); err != nil {
		return fmt.Errorf("vorbis seek: %w", err)
	}
	s.pos = pos
	s.carry = s.carry[:0]
	return nil
}

func (s *Stream) Read(p []byte) (int, error) {
	want, err := stream.CheckSampleBuffer(p, 4*s.channels)
	if err != nil {
		return 0, err
	}

	values := want / 4
	if cap(s.frameBuf) < values {
		s.frameBuf = make([]float32, values)
	}
	buf := s.frameBuf[:values]

	have := copy(buf, s.carry)
	s.carry = s.carry[:copy(s.carry, s.carry[have:])]

	var n int
	if have < s.channels {
		n, err = s.dec.Read(buf[have:])
	}
	n += have

	whole := n - n%s.channels
	s.carry = append(s.carry, buf[whole:n]...)
	for i, v := range buf[:whole] {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	s.pos += int64(whole / s.channels)

	if whole > 0 && err == io.EOF {
		return whole * 4, nil
	}
	return whole * 4, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (stream.SampleStream, error) {
	return NewStream(r)
}

// NewStream decodes the Ogg Vorbis data in r. The stream is seekable and
// knows its length when r is an io.Seeker.
func NewStream(r io.Reader) (*Stream, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStream, err)
	}
	return newStream(dec), nil
}
