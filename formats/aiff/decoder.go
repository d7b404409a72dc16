// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/avstream/stream"
)

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// opener rewinds the input and returns a fresh reader positioned at the first
// sample-group.
type opener func() (aiffReader, error)

// Stream is a SampleStream over the sound data of an AIFF file. 8 and 16-bit
// files produce Int16, 24 and 32-bit files produce Int32, scaled to the full
// range of the output format.
//
// Seeking re-reads the file from the start of the sound data.
type Stream struct {
	dec      aiffReader
	open     opener
	format   stream.SampleFormat
	shift    uint
	rate     int
	channels int
	groups   int64
	pos      int64
	eof      bool

	intBuf *goaudio.IntBuffer
}

func newStream(dec aiffReader, bitDepth int, frames int64, open opener) (*Stream, error) {
	f := dec.Format()
	if f == nil || f.NumChannels <= 0 || f.SampleRate <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	s := &Stream{
		dec:      dec,
		open:     open,
		rate:     f.SampleRate,
		channels: f.NumChannels,
		groups:   frames,
		intBuf:   &goaudio.IntBuffer{Format: f, SourceBitDepth: bitDepth},
	}
	switch bitDepth {
	case 8:
		s.format, s.shift = stream.Int16, 8
	case 16:
		s.format = stream.Int16
	case 24:
		s.format, s.shift = stream.Int32, 8
	case 32:
		s.format = stream.Int32
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	return s, nil
}

func (s *Stream) Format() stream.SampleFormat { return s.format }
func (s *Stream) SampleRate() int             { return s.rate }
func (s *Stream) Channels() int               { return s.channels }
func (s *Stream) Position() (int64, bool)     { return s.pos, true }
func (s *Stream) Length() (int64, bool)       { return s.groups, true }
func (s *Stream) CanSeek() bool               { return s.open != nil }
func (s *Stream) Close() error                { return nil }

func (s *Stream) Seek(pos int64) error {
	if err := stream.CheckSeek(s.CanSeek(), pos); err != nil {
		return err
	}
	pos = min(pos, s.groups)

	dec, err := s.open()
	if err != nil {
		return fmt.Errorf("aiff seek: %w", err)
	}
	s.dec, s.pos, s.eof = dec, 0, false

	skip := make([]byte, 1024*stream.GroupSize(s))
	for s.pos < pos {
		n := min(int64(len(skip)), (pos-s.pos)*int64(stream.GroupSize(s)))
		if _, err := s.Read(skip[:n]); err != nil {
			return fmt.Errorf("aiff seek: %w", err)
		}
	}
	return nil
}

func (s *Stream) Read(p []byte) (int, error) {
	gs := stream.GroupSize(s)
	want, err := stream.CheckSampleBuffer(p, gs)
	if err != nil {
		return 0, err
	}
	if s.eof || s.pos >= s.groups {
		return 0, io.EOF
	}

	values := min(int64(want/gs), s.groups-s.pos) * int64(s.channels)
	if int64(cap(s.intBuf.Data)) < values {
		s.intBuf.Data = make([]int, values)
	}
	s.intBuf.Data = s.intBuf.Data[:values]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, err
		}
		s.eof = true
		return 0, io.EOF
	}
	if err == io.EOF {
		s.eof = true
		err = nil
	}
	n -= n % s.channels

	size := s.format.Size()
	for i, v := range s.intBuf.Data[:n] {
		if s.format == stream.Int16 {
			binary.LittleEndian.PutUint16(p[i*size:], uint16(int16(v<<s.shift)))
		} else {
			binary.LittleEndian.PutUint32(p[i*size:], uint32(int32(v<<s.shift)))
		}
	}
	s.pos += int64(n / s.channels)
	return n * size, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (stream.SampleStream, error) {
	return NewStream(r)
}

// NewStream decodes the AIFF data in r. go-audio needs an io.ReadSeeker, so
// any other reader is read into memory first.
func NewStream(r io.Reader) (*Stream, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("reading aiff data: %w", err)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	open := func() (aiffReader, error) {
		if _, err := rs.Seek(start, io.SeekStart); err != nil {
			return nil, err
		}
		d := aiff.NewDecoder(rs)
		if !d.IsValidFile() {
			return nil, ErrNotAiffFile
		}
		d.ReadInfo()
		return d, nil
	}

	return newStream(dec, int(dec.BitDepth), int64(dec.NumSampleFrames), open)
}
