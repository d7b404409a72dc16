// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/avstream/stream"
)

func TestNewHeaderUInt8Stereo(t *testing.T) {
	t.Parallel()

	h, err := NewHeader(stream.UInt8, 2, 44100, 0)
	require.NoError(t, err)

	assert.Equal(t, FormatPCM, h.AudioFormat)
	assert.Equal(t, uint16(2), h.BlockAlign)
	assert.Equal(t, uint32(88200), h.ByteRate)
	assert.Equal(t, uint16(8), h.BitsPerSample)
	assert.Equal(t, uint32(36), h.ChunkSize)
}

func TestNewHeaderInvariants(t *testing.T) {
	t.Parallel()

	formats := []stream.SampleFormat{stream.UInt8, stream.Int16, stream.Int32, stream.Float32}
	for _, f := range formats {
		for _, channels := range []int{1, 2, 6} {
			for _, rate := range []int{8000, 22050, 44100, 96000} {
				for _, size := range []uint32{0, 1, 4096, 1 << 30} {
					h, err := NewHeader(f, channels, rate, size)
					require.NoError(t, err)

					assert.Equal(t, 36+h.DataSize, h.ChunkSize)
					assert.Equal(t, uint32(rate*channels*f.Bits()/8), h.ByteRate)
					assert.Equal(t, uint16(channels*f.Bits()/8), h.BlockAlign)
					assert.Equal(t, uint16(f.Bits()), h.BitsPerSample)

					got, err := h.SampleFormat()
					require.NoError(t, err)
					assert.Equal(t, f, got)
				}
			}
		}
	}
}

func TestNewHeaderFloat(t *testing.T) {
	t.Parallel()

	h, err := NewHeader(stream.Float32, 1, 48000, 400)
	require.NoError(t, err)
	assert.Equal(t, FormatIEEEFloat, h.AudioFormat)
	assert.Equal(t, "IEEE float", h.AudioFormat.String())

	groups, ok := h.Groups()
	assert.True(t, ok)
	assert.Equal(t, int64(100), groups)
}

func TestNewHeaderErrors(t *testing.T) {
	t.Parallel()

	_, err := NewHeader(stream.SampleFormat(0), 1, 8000, 0)
	assert.ErrorIs(t, err, stream.ErrUnsupportedFormat)

	_, err = NewHeader(stream.Int16, 0, 8000, 0)
	assert.ErrorIs(t, err, stream.ErrArgument)

	_, err = NewHeader(stream.Int16, 1, 0, 0)
	assert.ErrorIs(t, err, stream.ErrArgument)

	_, err = NewHeader(stream.Int16, 1, 8000, UnknownDataSize)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestNewHeaderByteRateOverflow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		format   stream.SampleFormat
		channels int
		rate     int
	}{
		{"block align", stream.Int32, 65535, 8000},
		{"byte rate", stream.Int32, 16, 192_000_000},
		{"byte rate stereo", stream.Int16, 2, 2_000_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewHeader(tt.format, tt.channels, tt.rate, 0)
			assert.ErrorIs(t, err, stream.ErrArgument)
		})
	}

	h, err := NewHeader(stream.Int32, 16, 1_000_000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(64_000_000), h.ByteRate)
}

func TestReadHeaderSkipError(t *testing.T) {
	t.Parallel()

	errRead := errors.New("read failed")

	var b bytes.Buffer
	b.WriteString("RIFF\x40\x00\x00\x00WAVE")
	b.WriteString("LIST\x20\x00\x00\x00abcd")
	r := io.MultiReader(bytes.NewReader(b.Bytes()), iotest.ErrReader(errRead))

	_, err := ReadHeader(r)
	assert.ErrorIs(t, err, errRead)
	assert.NotErrorIs(t, err, ErrMissingDataChunk)

	// End of stream inside a skipped chunk is not an I/O failure.
	h, err := ReadHeader(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	_, err = h.SampleFormat()
	assert.ErrorIs(t, err, ErrMissingFmtChunk)
}

func TestHeaderEncoding(t *testing.T) {
	t.Parallel()

	h, err := NewHeader(stream.Int16, 2, 44100, 1000)
	require.NoError(t, err)

	b, err := h.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, HeaderSize)

	assert.Equal(t, "RIFF", string(b[0:4]))
	assert.Equal(t, "WAVE", string(b[8:12]))
	assert.Equal(t, "fmt ", string(b[12:16]))
	assert.Equal(t, "data", string(b[36:40]))
	assert.Equal(t, []byte{0x0c, 0x04, 0, 0}, b[4:8]) // 36 + 1000
	assert.Equal(t, []byte{0xe8, 0x03, 0, 0}, b[40:44])

	var buf bytes.Buffer
	n, err := h.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize), n)
	assert.Equal(t, b, buf.Bytes())

	back, err := ReadHeader(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, h, back)
}
