// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/avstream/internal/streamtest"
	"github.com/ik5/avstream/stream"
)

func newTestFrames(t *testing.T, src stream.FrameStream, opts ...Option) *FrameStream {
	t.Helper()

	opts = append([]Option{
		WithRegisterer(prometheus.NewRegistry()),
		WithLogger(quietLogger()),
	}, opts...)
	f, err := NewFrameStream(src, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestFrameStreamReadsInOrder(t *testing.T) {
	t.Parallel()

	const k = 9
	src := streamtest.NewFrames(stream.Bgra8888, 4, 2, k)
	f := newTestFrames(t, src, WithCapacity(3))

	assert.Equal(t, 16, f.FrameStride())
	assert.Equal(t, 32, f.FrameDataSize())

	buf := make([]byte, f.FrameDataSize())
	for i := range int64(k) {
		ts, err := f.ReadTimedFrame(buf)
		require.NoError(t, err)
		assert.Equal(t, i, streamtest.FrameIndex(buf))
		assert.Equal(t, time.Duration(i)*40*time.Millisecond, ts)

		pos, ok := f.Position()
		assert.True(t, ok)
		assert.Equal(t, i+1, pos)
	}

	assert.ErrorIs(t, f.ReadFrame(buf), io.EOF)
	assert.ErrorIs(t, f.ReadFrame(buf), io.EOF)
}

func TestFrameStreamSeek(t *testing.T) {
	t.Parallel()

	f := newTestFrames(t, streamtest.NewFrames(stream.Rgb888, 4, 4, 100), WithCapacity(4))
	buf := make([]byte, f.FrameDataSize())

	require.NoError(t, f.ReadFrame(buf))
	for _, pos := range []int64{50, 3, 99, 0} {
		require.NoError(t, f.Seek(pos))
		ts, err := f.ReadTimedFrame(buf)
		require.NoError(t, err)
		assert.Equal(t, pos, streamtest.FrameIndex(buf))
		assert.Equal(t, stream.Rational{Num: 25, Den: 1}.FrameTime(pos), ts)
	}

	require.NoError(t, f.Seek(100))
	assert.ErrorIs(t, f.ReadFrame(buf), io.EOF)
}

func TestFrameStreamErrors(t *testing.T) {
	t.Parallel()

	src := streamtest.NewFrames(stream.Bgr888, 2, 2, 10)
	_, err := NewFrameStream(src, WithCapacity(1), WithRegisterer(nil))
	assert.ErrorIs(t, err, stream.ErrArgument)

	_, err = NewFrameStream(nil)
	assert.ErrorIs(t, err, ErrNilSource)

	src.FailAt(2, errBoom)
	f := newTestFrames(t, src, WithCapacity(2))

	assert.ErrorIs(t, f.ReadFrame(make([]byte, 3)), stream.ErrShortBuffer)

	buf := make([]byte, f.FrameDataSize())
	require.NoError(t, f.ReadFrame(buf))
	require.NoError(t, f.ReadFrame(buf))
	err = f.ReadFrame(buf)
	assert.True(t, errors.Is(err, errBoom), "got %v", err)
}

func TestFrameStreamNotSeekable(t *testing.T) {
	t.Parallel()

	src := streamtest.NewFrames(stream.Bgr888, 2, 2, 10)
	src.NoSeek = true
	f := newTestFrames(t, src)

	assert.ErrorIs(t, f.Seek(1), stream.ErrNotSeekable)
}

func TestFrameStreamClose(t *testing.T) {
	t.Parallel()

	src := streamtest.NewFrames(stream.Bgr888, 2, 2, 10)
	f, err := NewFrameStream(src, WithRegisterer(nil), WithLogger(quietLogger()))
	require.NoError(t, err)

	require.NoError(t, f.Close())
	assert.Equal(t, int64(1), src.Closes())
	assert.ErrorIs(t, f.ReadFrame(make([]byte, f.FrameDataSize())), stream.ErrClosed)
	assert.ErrorIs(t, f.Seek(0), stream.ErrClosed)
}

func TestFrameStreamBlink(t *testing.T) {
	t.Parallel()

	blink := streamtest.NewBlink(2, 2, stream.Rational{Num: 10, Den: 1})
	f := newTestFrames(t, blink, WithCapacity(5))

	buf := make([]byte, f.FrameDataSize())
	for i := range int64(25) {
		ts, err := f.ReadTimedFrame(buf)
		require.NoError(t, err)
		want := byte(0)
		if (ts/time.Second)%2 == 1 {
			want = 0xFF
		}
		assert.Equal(t, want, buf[0], "frame %d", i)
	}
}
