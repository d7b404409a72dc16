// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/avstream/stream"
)

// Stream is a stream.SampleStream over the data chunk of a WAV file.
//
// It is seekable when the underlying reader is an io.Seeker and knows its
// length unless the header carries UnknownDataSize.
type Stream struct {
	r         io.Reader
	seeker    io.Seeker
	closer    io.Closer
	header    Header
	format    stream.SampleFormat
	groupSize int
	dataStart int64
	groups    int64
	hasLen    bool
	pos       int64
}

var _ stream.SampleStream = (*Stream)(nil)

// NewStream parses the header from r and returns a stream positioned at the
// first sample-group. The caller keeps ownership of r; Close does not close
// it.
func NewStream(r io.Reader) (*Stream, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	format, err := h.SampleFormat()
	if err != nil {
		return nil, err
	}
	if h.SampleRate == 0 {
		return nil, fmt.Errorf("%w: zero sample rate", ErrInvalidFmtChunk)
	}
	if int(h.BlockAlign) != format.Size()*int(h.Channels) {
		return nil, fmt.Errorf("%w: block align %d for %d channels of %v",
			ErrInvalidFmtChunk, h.BlockAlign, h.Channels, format)
	}

	s := &Stream{
		r:         r,
		header:    h,
		format:    format,
		groupSize: int(h.BlockAlign),
	}
	s.groups, s.hasLen = h.Groups()

	if seeker, ok := r.(io.Seeker); ok {
		if off, err := seeker.Seek(0, io.SeekCurrent); err == nil {
			s.seeker, s.dataStart = seeker, off
		}
	}

	slog.Debug("wav stream opened",
		"format", format,
		"channels", h.Channels,
		"sample_rate", h.SampleRate,
		"data_size", h.DataSize,
		"seekable", s.seeker != nil)

	return s, nil
}

// Header returns the parsed header.
func (s *Stream) Header() Header { return s.header }

func (s *Stream) Format() stream.SampleFormat { return s.format }
func (s *Stream) SampleRate() int             { return int(s.header.SampleRate) }
func (s *Stream) Channels() int               { return int(s.header.Channels) }
func (s *Stream) Position() (int64, bool)     { return s.pos, true }
func (s *Stream) Length() (int64, bool)       { return s.groups, s.hasLen }
func (s *Stream) CanSeek() bool               { return s.seeker != nil }

// Seek moves to sample-group pos, clamped to the end of the data chunk.
func (s *Stream) Seek(pos int64) error {
	if err := stream.CheckSeek(s.CanSeek(), pos); err != nil {
		return err
	}
	if s.hasLen {
		pos = min(pos, s.groups)
	}
	if _, err := s.seeker.Seek(s.dataStart+pos*int64(s.groupSize), io.SeekStart); err != nil {
		return fmt.Errorf("seek WAV data: %w", err)
	}
	s.pos = pos
	return nil
}

// Read reads whole sample-groups from the data chunk. A trailing partial
// group of a truncated file is dropped.
func (s *Stream) Read(p []byte) (int, error) {
	want, err := stream.CheckSampleBuffer(p, s.groupSize)
	if err != nil {
		return 0, err
	}
	if s.hasLen {
		left := s.groups - s.pos
		if left <= 0 {
			return 0, io.EOF
		}
		want = int(min(int64(want), left*int64(s.groupSize)))
	}

	n, err := io.ReadFull(s.r, p[:want])
	n -= n % s.groupSize
	s.pos += int64(n / s.groupSize)

	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
	return n, fmt.Errorf("read WAV data: %w", err)
}

// Close closes the file when the stream was opened with OpenFile.
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}

// Decoder builds a Stream from a reader, for use with audio.Registry.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (stream.SampleStream, error) {
	s, err := NewStream(r)
	if err != nil {
		return nil, err
	}
	return s, nil
}
