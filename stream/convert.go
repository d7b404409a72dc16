// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ik5/avstream/utils"
)

var scratchPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 4096)
		return &b
	},
}

func getScratch(n int) *[]byte {
	bp := scratchPool.Get().(*[]byte)
	if cap(*bp) < n {
		*bp = make([]byte, n)
	}
	*bp = (*bp)[:n]
	return bp
}

// Converter presents its source in a different SampleFormat. Sample rate,
// channel count, position, length and seeking pass through unchanged.
//
// A Converter keeps no per-read state: scratch memory is taken from a pool
// for the duration of one Read.
type Converter struct {
	src    SampleStream
	format SampleFormat
}

// NewConverter wraps src so that it produces samples in format.
func NewConverter(src SampleStream, format SampleFormat) (*Converter, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrArgument)
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if err := src.Format().Validate(); err != nil {
		return nil, err
	}
	return &Converter{src: src, format: format}, nil
}

// AsFormat returns src when it already produces format, otherwise a
// Converter around it.
func AsFormat(src SampleStream, format SampleFormat) (SampleStream, error) {
	if src != nil && src.Format() == format {
		return src, nil
	}
	c, err := NewConverter(src, format)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Source returns the wrapped stream.
func (c *Converter) Source() SampleStream    { return c.src }
func (c *Converter) Format() SampleFormat    { return c.format }
func (c *Converter) SampleRate() int         { return c.src.SampleRate() }
func (c *Converter) Channels() int           { return c.src.Channels() }
func (c *Converter) Position() (int64, bool) { return c.src.Position() }
func (c *Converter) Length() (int64, bool)   { return c.src.Length() }
func (c *Converter) CanSeek() bool           { return c.src.CanSeek() }
func (c *Converter) Seek(pos int64) error    { return c.src.Seek(pos) }
func (c *Converter) Close() error            { return c.src.Close() }

// Read reads whole source sample-groups equivalent to len(p) converted bytes
// and writes them to p in the target format.
func (c *Converter) Read(p []byte) (int, error) {
	dstGroup := c.format.Size() * c.src.Channels()
	want, err := CheckSampleBuffer(p, dstGroup)
	if err != nil {
		return 0, err
	}

	srcFormat := c.src.Format()
	if srcFormat == c.format {
		return c.src.Read(p[:want])
	}

	srcLen := want / c.format.Size() * srcFormat.Size()
	bp := getScratch(srcLen)
	defer scratchPool.Put(bp)
	scratch := *bp

	n, err := c.src.Read(scratch)
	if n == 0 {
		return 0, err
	}
	n -= n % (srcFormat.Size() * c.src.Channels())

	return ConvertSamples(p, c.format, scratch[:n], srcFormat), err
}

// ConvertSamples converts every whole sample of src, encoded as from, into
// dst encoded as to, and returns the number of bytes written to dst. dst must
// hold len(src)/from.Size()*to.Size() bytes.
func ConvertSamples(dst []byte, to SampleFormat, src []byte, from SampleFormat) int {
	if from == to {
		return copy(dst, src)
	}

	count := len(src) / from.Size()
	ss, ds := from.Size(), to.Size()
	for i := range count {
		putSample(dst[i*ds:], to, sampleAt(src[i*ss:], from))
	}
	return count * ds
}

func sampleAt(b []byte, f SampleFormat) float64 {
	switch f {
	case UInt8:
		return utils.Uint8ToFloat64(b[0])
	case Int16:
		return utils.Int16ToFloat64(int16(binary.LittleEndian.Uint16(b)))
	case Int32:
		return utils.Int32ToFloat64(int32(binary.LittleEndian.Uint32(b)))
	case Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
	return 0
}

func putSample(b []byte, f SampleFormat, v float64) {
	switch f {
	case UInt8:
		b[0] = utils.Float64ToUint8(v)
	case Int16:
		binary.LittleEndian.PutUint16(b, uint16(utils.Float64ToInt16(v)))
	case Int32:
		binary.LittleEndian.PutUint32(b, uint32(utils.Float64ToInt32(v)))
	case Float32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	}
}

// NonSeekable hides the seek capability of s. Position and length are still
// reported.
func NonSeekable(s SampleStream) SampleStream {
	if ns, ok := s.(nonSeekable); ok {
		return ns
	}
	return nonSeekable{s}
}

type nonSeekable struct {
	SampleStream
}

func (nonSeekable) CanSeek() bool        { return false }
func (nonSeekable) Seek(pos int64) error { return ErrNotSeekable }

// NonSeekableFrames hides the seek capability of s.
func NonSeekableFrames(s FrameStream) FrameStream {
	if ns, ok := s.(nonSeekableFrames); ok {
		return ns
	}
	return nonSeekableFrames{s}
}

type nonSeekableFrames struct {
	FrameStream
}

func (nonSeekableFrames) CanSeek() bool        { return false }
func (nonSeekableFrames) Seek(pos int64) error { return ErrNotSeekable }
