// SPDX-License-Identifier: EPL-2.0

package avstream

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/avstream/audio"
	"github.com/ik5/avstream/buffer"
	"github.com/ik5/avstream/formats/aiff"
	"github.com/ik5/avstream/formats/wav"
	"github.com/ik5/avstream/internal/streamtest"
	"github.com/ik5/avstream/stream"
)

func wavBytes(t *testing.T, src stream.SampleStream) []byte {
	t.Helper()

	var buf bytes.Buffer
	_, err := wav.Write(&buf, src)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	assert.Equal(t, []string{FormatAIFF, FormatMP3, FormatVorbis, FormatWAV}, reg.Formats())

	for _, format := range reg.Formats() {
		d, ok := reg.Get(format)
		require.True(t, ok, format)
		assert.NotNil(t, d)
	}

	assert.Same(t, DefaultRegistry(), DefaultRegistry())
}

func TestOpenWAV(t *testing.T) {
	t.Parallel()

	values := []int16{1, -1, 2, -2, 3, -3, 4, -4}
	data := wavBytes(t, streamtest.Int16(22050, 2, values...))

	src, format, err := Open(bytes.NewReader(data))
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, FormatWAV, format)
	assert.Equal(t, 22050, src.SampleRate())
	assert.Equal(t, 2, src.Channels())

	out, err := streamtest.ReadAll(src, 3)
	require.NoError(t, err)
	assert.Equal(t, values, streamtest.DecodeInt16(out))
}

func TestOpenAIFF(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	values := []int16{500, -500, 1000, -1000, 1500}
	require.NoError(t, aiff.CreateFile(fs, "tone.aiff", streamtest.Int16(8000, 1, values...)))

	f, err := fs.Open("tone.aiff")
	require.NoError(t, err)
	defer f.Close()

	src, format, err := Open(f)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, FormatAIFF, format)
	length, ok := src.Length()
	require.True(t, ok)
	assert.EqualValues(t, len(values), length)

	out, err := streamtest.ReadAll(src, 2)
	require.NoError(t, err)
	assert.Equal(t, values, streamtest.DecodeInt16(out))
}

func TestOpenErrors(t *testing.T) {
	t.Parallel()

	_, _, err := Open(bytes.NewReader(nil))
	require.ErrorIs(t, err, audio.ErrEmptyInput)
	assert.ErrorIs(t, err, stream.ErrMalformedData)

	_, _, err = Open(bytes.NewReader([]byte("#!/bin/sh\necho not audio\n")))
	require.ErrorIs(t, err, audio.ErrUnknownFormat)
	assert.ErrorIs(t, err, stream.ErrUnsupportedFormat)

	// a RIFF/WAVE prefix routes to the WAV decoder, which rejects the body
	broken := wavBytes(t, streamtest.Int16(8000, 1, 1, 2, 3))[:20]
	_, format, err := Open(bytes.NewReader(broken))
	assert.Equal(t, FormatWAV, format)
	assert.ErrorIs(t, err, stream.ErrMalformedData)
}

func TestOpenBuffered(t *testing.T) {
	t.Parallel()

	n := 5000
	values := make([]int16, n)
	for i := range values {
		values[i] = int16(i)
	}
	data := wavBytes(t, streamtest.Int16(8000, 1, values...))

	reg := prometheus.NewRegistry()
	src, format, err := OpenBuffered(bytes.NewReader(data),
		buffer.WithRegisterer(reg), buffer.WithCapacity(4), buffer.WithSlotSize(256))
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, FormatWAV, format)

	out, err := streamtest.ReadAll(src, 100)
	require.NoError(t, err)
	assert.Equal(t, values, streamtest.DecodeInt16(out))

	count, err := testutil.GatherAndCount(reg, "avstream_buffer_filled_slots")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, src.Seek(4000))
	out, err = streamtest.ReadAll(src, 100)
	require.NoError(t, err)
	assert.Equal(t, values[4000:], streamtest.DecodeInt16(out))
}

func TestOpenBufferedInvalidOptions(t *testing.T) {
	t.Parallel()

	data := wavBytes(t, streamtest.Counter(10))
	_, format, err := OpenBuffered(bytes.NewReader(data), buffer.WithCapacity(1))
	assert.Equal(t, FormatWAV, format)
	assert.ErrorIs(t, err, buffer.ErrCapacity)
}
