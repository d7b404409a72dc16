// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"github.com/ik5/avstream/stream"
)

// MonoMixer downmixes a stream to one channel by averaging the channels of
// each sample-group. It is a Float32 SampleStream; position, length and
// seeking pass through to the source since group counts are unchanged.
type MonoMixer struct {
	src *FloatReader
	tmp []float32
	out []float32
}

func NewMonoMixer(src stream.SampleStream) (*MonoMixer, error) {
	fr, err := NewFloatReader(src)
	if err != nil {
		return nil, err
	}
	return &MonoMixer{
		src: fr,
		tmp: make([]float32, 4096),
	}, nil
}

func (m *MonoMixer) Format() stream.SampleFormat { return stream.Float32 }
func (m *MonoMixer) SampleRate() int             { return m.src.src.SampleRate() }
func (m *MonoMixer) Channels() int               { return 1 }
func (m *MonoMixer) Position() (int64, bool)     { return m.src.src.Position() }
func (m *MonoMixer) Length() (int64, bool)       { return m.src.src.Length() }
func (m *MonoMixer) CanSeek() bool               { return m.src.src.CanSeek() }
func (m *MonoMixer) Seek(pos int64) error        { return m.src.src.Seek(pos) }
func (m *MonoMixer) Close() error                { return m.src.src.Close() }

func (m *MonoMixer) Read(p []byte) (int, error) {
	return readBytes(m, p, &m.out)
}

// ReadSamples fills dst with mono samples and returns how many were written.
func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	channels := m.src.src.Channels()
	if channels == 1 {
		// Pass-through: read mono directly
		return m.src.ReadSamples(dst)
	}

	samplesNeeded := len(dst) * channels

	// Grow tmp buffer if needed (but don't shrink to avoid thrashing)
	if cap(m.tmp) < samplesNeeded {
		m.tmp = make([]float32, max(samplesNeeded, 8192))
	}
	tmp := m.tmp[:samplesNeeded]

	n, err := m.src.ReadSamples(tmp)
	if n == 0 {
		return 0, err
	}
	frames := n / channels

	invChannels := float32(1.0) / float32(channels)

	// Unrolled loop for common cases
	switch channels {
	case 2:
		for f := range frames {
			idx := f << 1
			dst[f] = (tmp[idx] + tmp[idx+1]) * 0.5
		}
	case 4:
		for f := range frames {
			idx := f << 2
			sum := tmp[idx] + tmp[idx+1] + tmp[idx+2] + tmp[idx+3]
			dst[f] = sum * 0.25
		}
	default:
		for f := range frames {
			sum := float32(0)
			baseIdx := f * channels
			for c := range channels {
				sum += tmp[baseIdx+c]
			}
			dst[f] = sum * invChannels
		}
	}

	return frames, err
}
