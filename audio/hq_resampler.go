// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/ik5/avstream/stream"
)

// hqChunk is the number of source sample-groups fed to the filter at once.
const hqChunk = 1024

// HQResampler converts the sample rate of a stream with the windowed-sinc
// filters of go-audio-resampling. Unlike Resampler it cannot seek and does
// not know its length: the filter delays its output, and whatever it still
// holds when the source ends is dropped.
type HQResampler struct {
	src      *FloatReader
	rs       resampling.Resampler
	dstRate  int
	channels int

	in      []float32
	in64    []float64
	buf     []float32
	pending []float32
	out     []float32

	pos int64
	eof bool
	err error
}

var _ stream.SampleStream = (*HQResampler)(nil)

// NewHQResampler resamples src to dstRate.
func NewHQResampler(src stream.SampleStream, dstRate int) (*HQResampler, error) {
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

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(src.SampleRate()),
		OutputRate: float64(dstRate),
		Channels:   src.Channels(),
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", stream.ErrArgument, err)
	}

	return &HQResampler{
		src:      fr,
		rs:       rs,
		dstRate:  dstRate,
		channels: src.Channels(),
		in:       make([]float32, hqChunk*src.Channels()),
	}, nil
}

func (r *HQResampler) Format() stream.SampleFormat { return stream.Float32 }
func (r *HQResampler) SampleRate() int             { return r.dstRate }
func (r *HQResampler) Channels() int               { return r.channels }
func (r *HQResampler) Position() (int64, bool)     { return r.pos, true }
func (r *HQResampler) Length() (int64, bool)       { return 0, false }
func (r *HQResampler) CanSeek() bool               { return false }
func (r *HQResampler) Seek(int64) error            { return stream.ErrNotSeekable }
func (r *HQResampler) Close() error                { return r.src.Stream().Close() }

func (r *HQResampler) Read(p []byte) (int, error) {
	return readBytes(r, p, &r.out)
}

// ReadSamples fills dst with resampled interleaved samples. len(dst) must be
// a non-zero multiple of the channel count.
func (r *HQResampler) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 || len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	for empty := 0; len(r.pending) < r.channels; empty++ {
		if r.eof {
			r.pending = r.pending[:0]
			if r.err != nil {
				return 0, r.err
			}
			return 0, io.EOF
		}
		if empty == maxEmptyReads {
			return 0, io.ErrNoProgress
		}
		if err := r.process(); err != nil {
			return 0, err
		}
	}

	n := min(len(dst), len(r.pending))
	n -= n % r.channels
	copy(dst, r.pending[:n])
	r.pending = r.pending[n:]
	r.pos += int64(n / r.channels)
	return n, nil
}

// process pushes one source chunk through the filter.
func (r *HQResampler) process() error {
	n, err := r.src.ReadSamples(r.in)
	if err != nil {
		r.eof = true
		if !errors.Is(err, io.EOF) {
			r.err = err
		}
	}
	if n == 0 {
		return nil
	}

	r.in64 = r.in64[:0]
	for _, v := range r.in[:n] {
		r.in64 = append(r.in64, float64(v))
	}
	out, perr := r.rs.Process(r.in64)
	if perr != nil {
		return fmt.Errorf("resample: %w", perr)
	}

	// pending holds less than one group here; move it to the front of buf
	r.pending = append(r.buf[:0], r.pending...)
	for _, v := range out {
		r.pending = append(r.pending, float32(v))
	}
	r.buf = r.pending[:0]
	return nil
}
