// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"fmt"
	"io"
	"time"
)

// SampleStream is a source of interleaved PCM sample-groups. A sample-group
// is one time slice across all channels.
//
// Position, Length and seeking are independent capabilities. Position and
// Length report ok == false when the stream does not know the value, and
// Seek returns ErrNotSeekable when CanSeek is false. Callers check the
// capability instead of relying on the error.
//
// A SampleStream is not safe for concurrent use unless an implementation
// documents otherwise.
type SampleStream interface {
	Format() SampleFormat
	SampleRate() int
	Channels() int

	// Position returns the number of sample-groups consumed so far.
	Position() (int64, bool)
	// Length returns the total number of sample-groups.
	Length() (int64, bool)
	CanSeek() bool
	// Seek moves to the sample-group with index pos.
	Seek(pos int64) error

	// Read fills p with as many whole sample-groups as fit and returns the
	// number of bytes written. The end of the stream is reported as io.EOF.
	// A p shorter than one sample-group yields ErrShortBuffer.
	Read(p []byte) (int, error)

	// Close releases the stream and any source it owns.
	Close() error
}

// FrameStream is a source of raw video frames at a fixed rate.
//
// Capabilities follow the same rules as SampleStream, counted in frames.
type FrameStream interface {
	Format() FrameFormat
	FrameRate() Rational
	FrameWidth() int
	FrameHeight() int
	// FrameStride is the byte length of one row, at least width*bpp.
	FrameStride() int
	// FrameDataSize is FrameStride * FrameHeight.
	FrameDataSize() int

	Position() (int64, bool)
	Length() (int64, bool)
	CanSeek() bool
	Seek(pos int64) error

	// ReadFrame writes exactly one frame into p and advances the position by
	// one. The end of the stream is reported as io.EOF. A p shorter than
	// FrameDataSize yields ErrShortBuffer.
	ReadFrame(p []byte) error

	Close() error
}

// GroupSize returns the byte length of one sample-group of s.
func GroupSize(s SampleStream) int {
	return s.Format().Size() * s.Channels()
}

// CheckSampleBuffer validates that p can hold at least one sample-group of
// groupSize bytes and returns the usable whole-group length of p.
func CheckSampleBuffer(p []byte, groupSize int) (int, error) {
	if groupSize <= 0 || len(p) < groupSize {
		return 0, fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(p), groupSize)
	}
	return len(p) - len(p)%groupSize, nil
}

// CheckFrameBuffer validates that p can hold one frame of s.
func CheckFrameBuffer(p []byte, s FrameStream) error {
	if len(p) < s.FrameDataSize() {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(p), s.FrameDataSize())
	}
	return nil
}

// CheckSeek validates a seek request against the capabilities of a stream.
func CheckSeek(canSeek bool, pos int64) error {
	if !canSeek {
		return ErrNotSeekable
	}
	if pos < 0 {
		return fmt.Errorf("%w: %d", ErrNegativePosition, pos)
	}
	return nil
}

// DurationOf returns how long groups sample-groups last at sampleRate.
func DurationOf(sampleRate int, groups int64) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	sec, rem := groups/int64(sampleRate), groups%int64(sampleRate)
	return time.Duration(sec)*time.Second + time.Duration(rem)*time.Second/time.Duration(sampleRate)
}

// GroupsIn returns the number of whole sample-groups in d at sampleRate.
func GroupsIn(sampleRate int, d time.Duration) int64 {
	if sampleRate <= 0 {
		return 0
	}
	sec, rem := int64(d/time.Second), int64(d%time.Second)
	return sec*int64(sampleRate) + rem*int64(sampleRate)/int64(time.Second)
}

// ReadFull reads from s until p holds len(p) bytes rounded down to whole
// sample-groups, or the stream ends. It returns io.EOF only when nothing was
// read.
func ReadFull(s SampleStream, p []byte) (int, error) {
	want, err := CheckSampleBuffer(p, GroupSize(s))
	if err != nil {
		return 0, err
	}
	n := 0
	for n < want {
		m, err := s.Read(p[n:want])
		n += m
		if err == io.EOF {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if m == 0 {
			return n, io.ErrNoProgress
		}
	}
	return n, nil
}
