// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/avstream/internal/streamtest"
	"github.com/ik5/avstream/stream"
)

func patternBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*31 + i/7)
	}
	return b
}

// writeSeeker returns an in-memory io.WriteSeeker.
func writeSeeker(t *testing.T) afero.File {
	t.Helper()

	f, err := afero.NewMemMapFs().Create("out.wav")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func readBack(t *testing.T, f afero.File) []byte {
	t.Helper()

	_, err := f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	s, err := NewStream(f)
	require.NoError(t, err)
	out, err := streamtest.ReadAll(s, 100)
	require.NoError(t, err)
	return out
}

func TestWriteRoundTrip(t *testing.T) {
	t.Parallel()

	const groups = 3000
	for _, format := range []stream.SampleFormat{stream.UInt8, stream.Int16, stream.Int32, stream.Float32} {
		for _, channels := range []int{1, 2} {
			t.Run(fmt.Sprintf("%v/%dch", format, channels), func(t *testing.T) {
				t.Parallel()

				data := patternBytes(groups * format.Size() * channels)

				var buf bytes.Buffer
				n, err := Write(&buf, streamtest.NewSamples(format, 22050, channels, data))
				require.NoError(t, err)
				assert.Equal(t, int64(len(data)), n)
				assert.Equal(t, HeaderSize+len(data), buf.Len())

				src, err := NewStream(bytes.NewReader(buf.Bytes()))
				require.NoError(t, err)
				assert.Equal(t, format, src.Format())
				assert.Equal(t, channels, src.Channels())
				assert.Equal(t, 22050, src.SampleRate())

				length, ok := src.Length()
				assert.True(t, ok)
				assert.Equal(t, int64(groups), length)

				out, err := streamtest.ReadAll(src, 333)
				require.NoError(t, err)
				assert.Equal(t, data, out)
			})
		}
	}
}

func TestWriteUnknownLengthPatchesHeader(t *testing.T) {
	t.Parallel()

	data := patternBytes(2 * 5000)
	src := streamtest.NewSamples(stream.Int16, 16000, 1, data)
	src.HideLength = true

	f := writeSeeker(t)
	n, err := Write(f, src)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)

	end, err := f.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize+len(data)), end, "destination is left after the data")

	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	h, err := ReadHeader(f)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(data)), h.DataSize)
	assert.Equal(t, 36+h.DataSize, h.ChunkSize)

	assert.Equal(t, data, readBack(t, f))
}

func TestWriteUnknownLengthNeedsSeeker(t *testing.T) {
	t.Parallel()

	src := streamtest.Counter(10)
	src.HideLength = true

	var buf bytes.Buffer
	_, err := Write(&buf, stream.NonSeekable(src))
	assert.ErrorIs(t, err, ErrUnsizedDestination)
	assert.ErrorIs(t, err, stream.ErrArgument)
	assert.Zero(t, buf.Len(), "nothing is written")
	assert.Zero(t, src.Reads())
}

func TestWriteFromCurrentPosition(t *testing.T) {
	t.Parallel()

	src := streamtest.Counter(100)
	require.NoError(t, src.Seek(40))

	var buf bytes.Buffer
	n, err := Write(&buf, src)
	require.NoError(t, err)
	assert.Equal(t, int64(120), n)

	h, err := ReadHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, uint32(120), h.DataSize)
	assert.Equal(t, int16(40), int16(binary.LittleEndian.Uint16(buf.Bytes()[HeaderSize:])))
}

// shortStream claims more groups than it produces.
type shortStream struct {
	*streamtest.Samples
}

func (shortStream) Length() (int64, bool) { return 1000, true }

func TestWriteLengthMismatch(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := Write(&buf, shortStream{streamtest.Counter(10)})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	f := writeSeeker(t)
	n, err := Write(f, shortStream{streamtest.Counter(10)})
	require.NoError(t, err, "a seekable destination gets a patched header")
	assert.Equal(t, int64(20), n)
	assert.Len(t, readBack(t, f), 20)
}

func TestWriteSourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("decode failed")
	src := streamtest.Counter(5000)
	src.FailAt(2048, boom)

	var buf bytes.Buffer
	n, err := Write(&buf, src)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(2*2048), n)
}

func TestCreateAndOpenFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	data := patternBytes(4 * 1000)

	n, err := CreateFile(fs, "/media/tone.wav", streamtest.NewSamples(stream.Float32, 48000, 1, data))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)

	info, err := fs.Stat("/media/tone.wav")
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize+len(data)), info.Size())

	s, err := OpenFile(fs, "/media/tone.wav")
	require.NoError(t, err)
	assert.True(t, s.CanSeek())

	require.NoError(t, s.Seek(500))
	out, err := streamtest.ReadAll(s, 64)
	require.NoError(t, err)
	assert.Equal(t, data[4*500:], out)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = OpenFile(fs, "/media/missing.wav")
	assert.Error(t, err)
}

func TestCreateFileRemovesPartialFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	src := streamtest.Counter(10)
	src.HideLength = true

	_, err := CreateFile(fs, "bad.wav", stream.NonSeekable(src))
	require.NoError(t, err, "afero files are seekable, so an unsized source is fine")

	failing := streamtest.Counter(5000)
	failing.FailAt(0, errors.New("broken"))
	_, err = CreateFile(fs, "broken.wav", failing)
	require.Error(t, err)

	exists, err := afero.Exists(fs, "broken.wav")
	require.NoError(t, err)
	assert.False(t, exists)
}

func BenchmarkWrite(b *testing.B) {
	data := patternBytes(2 * 2 * 48000)
	b.ReportAllocs()

	for b.Loop() {
		var buf bytes.Buffer
		if _, err := Write(&buf, streamtest.NewSamples(stream.Int16, 48000, 2, data)); err != nil {
			b.Fatal(err)
		}
	}
}
