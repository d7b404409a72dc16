// SPDX-License-Identifier: EPL-2.0

package streamtest

import (
	"encoding/binary"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/avstream/stream"
)

// Frames is a FrameStream of n frames where the first eight bytes of frame
// i hold i as a little-endian uint64. The remaining bytes are byte(i).
type Frames struct {
	format stream.FrameFormat
	width  int
	height int
	rate   stream.Rational
	n      int64

	// Delay is slept before every ReadFrame.
	Delay time.Duration
	// NoSeek drops the seek capability.
	NoSeek bool

	mu      sync.Mutex
	pos     int64
	failAt  int64
	failErr error

	closes atomic.Int64
}

// NewFrames returns a 25 fps stream of n frames.
func NewFrames(format stream.FrameFormat, width, height int, n int64) *Frames {
	return &Frames{
		format: format,
		width:  width,
		height: height,
		rate:   stream.Rational{Num: 25, Den: 1},
		n:      n,
		failAt: -1,
	}
}

// FailAt makes the ReadFrame of frame pos return err.
func (f *Frames) FailAt(pos int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAt, f.failErr = pos, err
}

// Closes returns how many times Close was called.
func (f *Frames) Closes() int64 { return f.closes.Load() }

func (f *Frames) Format() stream.FrameFormat { return f.format }
func (f *Frames) FrameRate() stream.Rational { return f.rate }
func (f *Frames) FrameWidth() int            { return f.width }
func (f *Frames) FrameHeight() int           { return f.height }
func (f *Frames) FrameStride() int           { return f.format.MinStride(f.width) }
func (f *Frames) FrameDataSize() int         { return f.FrameStride() * f.height }
func (f *Frames) Length() (int64, bool)      { return f.n, true }
func (f *Frames) CanSeek() bool              { return !f.NoSeek }
func (f *Frames) Close() error               { f.closes.Add(1); return nil }

func (f *Frames) Position() (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos, true
}

func (f *Frames) Seek(pos int64) error {
	if err := stream.CheckSeek(f.CanSeek(), pos); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = min(pos, f.n)
	return nil
}

func (f *Frames) ReadFrame(p []byte) error {
	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}
	if err := stream.CheckFrameBuffer(p, f); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pos == f.failAt {
		return f.failErr
	}
	if f.pos >= f.n {
		return io.EOF
	}
	FillFrame(p[:f.FrameDataSize()], f.pos)
	f.pos++
	return nil
}

// FillFrame writes the payload of frame index into p.
func FillFrame(p []byte, index int64) {
	for i := range p {
		p[i] = byte(index)
	}
	if len(p) >= 8 {
		binary.LittleEndian.PutUint64(p, uint64(index))
	}
}

// FrameIndex returns the index encoded by FillFrame.
func FrameIndex(p []byte) int64 {
	return int64(binary.LittleEndian.Uint64(p))
}
