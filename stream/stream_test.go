// SPDX-License-Identifier: EPL-2.0

package stream_test

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/avstream/internal/streamtest"
	"github.com/ik5/avstream/stream"
)

func TestCheckSampleBuffer(t *testing.T) {
	t.Parallel()

	n, err := stream.CheckSampleBuffer(make([]byte, 11), 4)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	_, err = stream.CheckSampleBuffer(make([]byte, 3), 4)
	require.ErrorIs(t, err, stream.ErrShortBuffer)
	assert.ErrorIs(t, err, stream.ErrArgument)

	_, err = stream.CheckSampleBuffer(make([]byte, 8), 0)
	assert.ErrorIs(t, err, stream.ErrShortBuffer)
}

func TestCheckFrameBuffer(t *testing.T) {
	t.Parallel()

	f := streamtest.NewFrames(stream.Bgr888, 4, 2, 1)
	assert.NoError(t, stream.CheckFrameBuffer(make([]byte, f.FrameDataSize()), f))
	assert.ErrorIs(t, stream.CheckFrameBuffer(make([]byte, f.FrameDataSize()-1), f), stream.ErrShortBuffer)
}

func TestCheckSeek(t *testing.T) {
	t.Parallel()

	assert.NoError(t, stream.CheckSeek(true, 0))
	assert.ErrorIs(t, stream.CheckSeek(false, 0), stream.ErrNotSeekable)
	assert.ErrorIs(t, stream.CheckSeek(false, 0), stream.ErrInvalidOperation)

	err := stream.CheckSeek(true, -1)
	assert.ErrorIs(t, err, stream.ErrNegativePosition)
	assert.ErrorIs(t, err, stream.ErrArgument)
}

func TestDurationConversions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate   int
		groups int64
		d      time.Duration
	}{
		{8000, 8000, time.Second},
		{8000, 4000, 500 * time.Millisecond},
		{44100, 441, 10 * time.Millisecond},
		{48000, 48000 * 3600, time.Hour},
		{16000, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.d, stream.DurationOf(tt.rate, tt.groups), "DurationOf(%d, %d)", tt.rate, tt.groups)
		assert.Equal(t, tt.groups, stream.GroupsIn(tt.rate, tt.d), "GroupsIn(%d, %v)", tt.rate, tt.d)
	}

	assert.Zero(t, stream.DurationOf(0, 100))
	assert.Zero(t, stream.GroupsIn(-1, time.Second))
	// partial groups are not counted
	assert.EqualValues(t, 0, stream.GroupsIn(8000, 100*time.Microsecond))
}

func TestReadFull(t *testing.T) {
	t.Parallel()

	src := streamtest.Counter(10)
	src.MaxGroups = 3

	buf := make([]byte, 2*8+1)
	n, err := stream.ReadFull(src, buf)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, []int16{0, 1, 2, 3, 4, 5, 6, 7}, streamtest.DecodeInt16(buf[:n]))

	n, err = stream.ReadFull(src, buf)
	require.NoError(t, err)
	assert.Equal(t, []int16{8, 9}, streamtest.DecodeInt16(buf[:n]))

	_, err = stream.ReadFull(src, buf)
	assert.ErrorIs(t, err, io.EOF)

	_, err = stream.ReadFull(src, make([]byte, 1))
	assert.ErrorIs(t, err, stream.ErrShortBuffer)
}
