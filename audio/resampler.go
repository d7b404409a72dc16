// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/avstream/stream"
	"github.com/ik5/avstream/utils"
)

// maxEmptyReads bounds consecutive empty source reads before giving up.
const maxEmptyReads = 100

// Resampler streams from src to a target sample rate using cubic
// interpolation. It preserves the channel count and applies a one-pole
// low-pass filter when downsampling.
//
// Output sample-group k sits at source time k*srcRate/dstRate, computed in
// integers, so a source of L groups yields exactly ceil(L*dstRate/srcRate)
// groups. Position, Length and Seek are expressed in output groups.
type Resampler struct {
	src      *FloatReader
	srcRate  int64
	dstRate  int64
	channels int

	// Window of 4 source frames for cubic interpolation:
	// frames[0] = base-1, frames[1] = base, frames[2] = base+1, frames[3] = base+2
	frames [4][]float32
	base   int64
	primed bool

	// primeAt is the source frame the source is positioned at before priming.
	primeAt int64
	// loaded is one past the last real source frame read.
	loaded int64
	eof    bool

	// out is the index of the next output sample-group.
	out    int64
	hasPos bool

	// Buffer for reading from source
	srcBuf []float32
	srcOff int
	srcEnd int

	// Simple low-pass filter state for anti-aliasing (when downsampling)
	filterState []float32
	resetFilter bool
	useFilter   bool
	filterAlpha float32

	scratch []float32
}

func NewResampler(src stream.SampleStream, dstRate int) (*Resampler, error) {
	if dstRate <= 0 {
		return nil, ErrTargetRate
	}
	fr, err := NewFloatReader(src)
	if err != nil {
		return nil, err
	}
	if src.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: %d Hz", ErrSourceRate, src.SampleRate())
	}
	channels := src.Channels()

	r := &Resampler{
		src:         fr,
		srcRate:     int64(src.SampleRate()),
		dstRate:     int64(dstRate),
		channels:    channels,
		srcBuf:      make([]float32, 1024*channels),
		filterState: make([]float32, channels),
	}

	// Enable simple low-pass filter when downsampling
	if r.srcRate > r.dstRate {
		r.useFilter = true
		r.filterAlpha = 0.5
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	if p, ok := src.Position(); ok {
		r.hasPos = true
		r.primeAt = p
		r.out = r.outputsBefore(p)
	}

	return r, nil
}

// outputsBefore returns the number of output groups whose source time lies
// before source frame n.
func (r *Resampler) outputsBefore(n int64) int64 {
	return (n*r.dstRate + r.srcRate - 1) / r.srcRate
}

func (r *Resampler) Format() stream.SampleFormat { return stream.Float32 }
func (r *Resampler) SampleRate() int             { return int(r.dstRate) }
func (r *Resampler) Channels() int               { return r.channels }
func (r *Resampler) CanSeek() bool               { return r.src.src.CanSeek() }
func (r *Resampler) Close() error                { return r.src.src.Close() }

func (r *Resampler) Position() (int64, bool) {
	if !r.hasPos {
		return 0, false
	}
	return r.out, true
}

func (r *Resampler) Length() (int64, bool) {
	n, ok := r.src.src.Length()
	if !ok {
		return 0, false
	}
	return r.outputsBefore(n), true
}

// Seek moves to output sample-group pos. Interpolation and filter state are
// rebuilt from the source frame preceding pos.
func (r *Resampler) Seek(pos int64) error {
	if err := stream.CheckSeek(r.CanSeek(), pos); err != nil {
		return err
	}
	i := pos * r.srcRate / r.dstRate
	at := max(i-1, 0)
	if err := r.src.src.Seek(at); err != nil {
		return err
	}

	r.out = pos
	r.hasPos = true
	r.primeAt = at
	r.primed = false
	r.eof = false
	r.srcOff, r.srcEnd = 0, 0
	return nil
}

// nextFrame reads one source frame into dst. It reports false once the
// source is exhausted.
func (r *Resampler) nextFrame(dst []float32) (bool, error) {
	for empty := 0; r.srcOff == r.srcEnd; empty++ {
		if r.eof {
			return false, nil
		}
		if empty >= maxEmptyReads {
			return false, io.ErrNoProgress
		}
		n, err := r.src.ReadSamples(r.srcBuf)
		r.srcOff, r.srcEnd = 0, n
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return false, err
		}
	}

	copy(dst, r.srcBuf[r.srcOff:r.srcOff+r.channels])
	r.srcOff += r.channels
	r.loaded++

	if r.resetFilter {
		// Start from the first sample to avoid warm-up transients
		copy(r.filterState, dst)
		r.resetFilter = false
	}
	if r.useFilter {
		for c := range r.channels {
			// One-pole low-pass: y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = dst[c]
		}
	}
	return true, nil
}

// fill loads frames[i], duplicating frames[i-1] past the end of the source.
func (r *Resampler) fill(i int) error {
	ok, err := r.nextFrame(r.frames[i])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.frames[i], r.frames[i-1])
	}
	return nil
}

func (r *Resampler) prime() error {
	r.base = r.primeAt
	r.loaded = r.primeAt
	r.resetFilter = true

	ok, err := r.nextFrame(r.frames[1])
	if err != nil {
		return err
	}
	if !ok {
		clear(r.frames[1])
	}
	copy(r.frames[0], r.frames[1])
	for i := 2; i < 4; i++ {
		if err := r.fill(i); err != nil {
			return err
		}
	}
	r.primed = true
	return nil
}

// shift advances the window by one source frame.
func (r *Resampler) shift() error {
	f := r.frames[0]
	r.frames[0], r.frames[1], r.frames[2] = r.frames[1], r.frames[2], r.frames[3]
	r.frames[3] = f
	r.base++
	return r.fill(3)
}

func (r *Resampler) Read(p []byte) (int, error) {
	return readBytes(r, p, &r.scratch)
}

// ReadSamples produces interleaved samples at the target rate and returns the
// number of float32 values written. len(dst) must be a multiple of Channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 || len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		t := r.out * r.srcRate
		i := t / r.dstRate
		for r.base < i {
			if err := r.shift(); err != nil {
				return written * r.channels, err
			}
		}
		if r.eof && i >= r.loaded {
			break
		}

		alpha := float32(t%r.dstRate) / float32(r.dstRate)
		out := dst[written*r.channels : (written+1)*r.channels]
		utils.CubicInterpolateFrames(out, r.frames[0], r.frames[1], r.frames[2], r.frames[3], alpha)

		written++
		r.out++
	}

	if written == 0 {
		return 0, io.EOF
	}
	return written * r.channels, nil
}
