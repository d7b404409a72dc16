// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"math"

	"github.com/ik5/avstream/stream"
)

// FloatReader reads interleaved float32 samples in [-1,1] from a SampleStream
// of any sample format.
type FloatReader struct {
	src stream.SampleStream
	buf []byte
}

// NewFloatReader wraps src, converting it to Float32 when needed.
func NewFloatReader(src stream.SampleStream) (*FloatReader, error) {
	if src == nil {
		return nil, ErrNilStream
	}
	f, err := stream.AsFormat(src, stream.Float32)
	if err != nil {
		return nil, err
	}
	return &FloatReader{src: f}, nil
}

// Stream returns the Float32 stream being read.
func (r *FloatReader) Stream() stream.SampleStream { return r.src }

// ReadSamples fills dst with interleaved samples and returns the number of
// float32 values written, always a multiple of the channel count. len(dst)
// must be a non-zero multiple of the channel count.
func (r *FloatReader) ReadSamples(dst []float32) (int, error) {
	ch := r.src.Channels()
	if len(dst) == 0 || len(dst)%ch != 0 {
		return 0, ErrInvalidDstSize
	}

	need := len(dst) * 4
	if cap(r.buf) < need {
		r.buf = make([]byte, need)
	}
	b := r.buf[:need]

	n, err := r.src.Read(b)
	n /= 4
	decodeFloats(dst[:n], b)
	return n, err
}

func decodeFloats(dst []float32, b []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
}

func encodeFloats(b []byte, src []float32) {
	for i, v := range src {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
}

// sampleReader is implemented by processors that produce float samples.
type sampleReader interface {
	Channels() int
	ReadSamples(dst []float32) (int, error)
}

// readBytes serves a Float32 byte Read from a float sample producer, using
// scratch as the intermediate buffer.
func readBytes(r sampleReader, p []byte, scratch *[]float32) (int, error) {
	want, err := stream.CheckSampleBuffer(p, 4*r.Channels())
	if err != nil {
		return 0, err
	}
	need := want / 4
	if cap(*scratch) < need {
		*scratch = make([]float32, need)
	}
	buf := (*scratch)[:need]

	n, err := r.ReadSamples(buf)
	encodeFloats(p, buf[:n])
	return n * 4, err
}
