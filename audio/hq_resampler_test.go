// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/avstream/internal/streamtest"
	"github.com/ik5/avstream/stream"
)

func TestHQResamplerDownsample(t *testing.T) {
	t.Parallel()

	r, err := NewHQResampler(streamtest.NewSine(16000, 2, 440).Limit(16000), 8000)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, stream.Float32, r.Format())
	assert.Equal(t, 8000, r.SampleRate())
	assert.Equal(t, 2, r.Channels())
	assert.False(t, r.CanSeek())
	_, ok := r.Length()
	assert.False(t, ok)

	out, err := streamtest.ReadAll(r, 300)
	require.NoError(t, err)
	samples := streamtest.DecodeFloat32(out)
	require.Zero(t, len(samples)%2)

	groups := len(samples) / 2
	assert.Greater(t, groups, 4000)
	assert.LessOrEqual(t, groups, 8000)

	pos, ok := r.Position()
	require.True(t, ok)
	assert.EqualValues(t, groups, pos)

	var peak float64
	for _, v := range samples {
		require.False(t, math.IsNaN(float64(v)))
		peak = max(peak, math.Abs(float64(v)))
	}
	assert.InDelta(t, 0.5, peak, 0.1)
}

func TestHQResamplerErrors(t *testing.T) {
	t.Parallel()

	_, err := NewHQResampler(streamtest.Counter(10), 0)
	assert.ErrorIs(t, err, ErrTargetRate)

	_, err = NewHQResampler(nil, 8000)
	assert.ErrorIs(t, err, ErrNilStream)

	_, err = NewHQResampler(streamtest.Int16(0, 1, 1, 2, 3), 8000)
	assert.ErrorIs(t, err, ErrSourceRate)

	r, err := NewHQResampler(streamtest.NewSine(8000, 2, 100), 16000)
	require.NoError(t, err)
	assert.ErrorIs(t, r.Seek(0), stream.ErrNotSeekable)

	_, err = r.ReadSamples(make([]float32, 3))
	assert.ErrorIs(t, err, ErrInvalidDstSize)

	src := streamtest.Counter(8000)
	src.MaxGroups = 512
	src.FailAt(2048, errBoom)
	r, err = NewHQResampler(src, 16000)
	require.NoError(t, err)
	_, err = streamtest.ReadAll(r, 256)
	assert.ErrorIs(t, err, errBoom)
}
