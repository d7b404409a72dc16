// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/avstream/stream"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	channels  = 2
	groupSize = channels * 2
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// seekReader is implemented by decoders over a seekable source.
type seekReader interface {
	mp3Reader
	Seek(offset int64, whence int) (int64, error)
	// Length is the decoded size in bytes, or negative when unknown.
	Length() int64
}

// Stream is an Int16 stereo SampleStream over an MP3 decoder. It knows its
// length and can seek when the underlying reader is an io.Seeker.
type Stream struct {
	dec    mp3Reader
	seeker seekReader
	groups int64
	pos    int64
}

func newStream(dec mp3Reader) *Stream {
	s := &Stream{dec: dec, groups: -1}
	if sr, ok := dec.(seekReader); ok {
		if n := sr.Length(); n >= 0 {
			s.seeker = sr
			s.groups = n / groupSize
		}
	}
	return s
}

func (s *Stream) Format() stream.SampleFormat { return stream.Int16 }
func (s *Stream) SampleRate() int             { return s.dec.SampleRate() }
func (s *Stream) Channels() int               { return channels }
func (s *Stream) Position() (int64, bool)     { return s.pos, true }
func (s *Stream) CanSeek() bool               { return s.seeker != nil }
func (s *Stream) Close() error                { return nil }

func (s *Stream) Length() (int64, bool) {
	if s.groups < 0 {
		return 0, false
	}
	return s.groups, true
}

func (s *Stream) Seek(pos int64) error {
	if err := stream.CheckSeek(s.CanSeek(), pos); err != nil {
		return err
	}
	pos = min(pos, s.groups)
	if _, err := s.seeker.Seek(pos*groupSize, io.SeekStart); err != nil {
		return fmt.Errorf("mp3 seek: %w", err)
	}
	s.pos = pos
	return nil
}

func (s *Stream) Read(p []byte) (int, error) {
	want, err := stream.CheckSampleBuffer(p, groupSize)
	if err != nil {
		return 0, err
	}

	n, err := s.dec.Read(p[:want])
	if rem := n % groupSize; rem != 0 && err == nil {
		// complete the trailing sample-group
		var m int
		m, err = io.ReadFull(s.dec, p[n:n+groupSize-rem])
		n += m
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
	}
	n -= n % groupSize
	s.pos += int64(n / groupSize)

	if err == io.EOF && n > 0 {
		return n, nil
	}
	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (stream.SampleStream, error) {
	return NewStream(r)
}

// NewStream decodes the MP3 data in r. The stream is seekable when r is an
// io.Seeker.
func NewStream(r io.Reader) (*Stream, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStream, err)
	}
	return newStream(dec), nil
}
