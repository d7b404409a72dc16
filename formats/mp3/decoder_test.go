// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/avstream/internal/streamtest"
	"github.com/ik5/avstream/stream"
)

// mockMP3Reader simulates the gomp3.Decoder for testing
type mockMP3Reader struct {
	sampleRate int
	data       []byte
	offset     int
	// chunk limits the bytes returned per Read when positive
	chunk int
	err   error
}

func newMockReader(sampleRate int, samples ...int16) *mockMP3Reader {
	data := make([]byte, 2*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(v))
	}
	return &mockMP3Reader{sampleRate: sampleRate, data: data}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.data) {
		return 0, io.EOF
	}
	if m.chunk > 0 && len(buf) > m.chunk {
		buf = buf[:m.chunk]
	}
	n := copy(buf, m.data[m.offset:])
	m.offset += n
	if m.offset >= len(m.data) {
		return n, io.EOF
	}
	return n, nil
}

// mockSeekReader adds the seeking half of gomp3.Decoder.
type mockSeekReader struct {
	*mockMP3Reader
	length int64
}

func (m *mockSeekReader) Length() int64 { return m.length }

func (m *mockSeekReader) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart {
		return 0, errors.New("unsupported whence")
	}
	m.offset = int(offset)
	return offset, nil
}

func seekable(m *mockMP3Reader) *mockSeekReader {
	return &mockSeekReader{mockMP3Reader: m, length: int64(len(m.data))}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("This is not MP3 data")))
	assert.ErrorIs(t, err, ErrInvalidStream)
	assert.ErrorIs(t, err, stream.ErrMalformedData)
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestStream_Metadata(t *testing.T) {
	t.Parallel()

	s := newStream(newMockReader(44100, make([]int16, 100)...))

	assert.Equal(t, stream.Int16, s.Format())
	assert.Equal(t, 44100, s.SampleRate())
	assert.Equal(t, 2, s.Channels())
	assert.False(t, s.CanSeek())

	_, ok := s.Length()
	assert.False(t, ok)
	pos, ok := s.Position()
	assert.True(t, ok)
	assert.Zero(t, pos)
	assert.NoError(t, s.Close())
}

func TestStream_Read(t *testing.T) {
	t.Parallel()

	testSamples := []int16{0, 16384, 32767, -16384, -32768, 8192, -8192, 0}
	s := newStream(newMockReader(8000, testSamples...))

	b, err := streamtest.ReadAll(s, 16)
	require.NoError(t, err)
	assert.Equal(t, testSamples, streamtest.DecodeInt16(b))

	pos, _ := s.Position()
	assert.EqualValues(t, 4, pos)
}

func TestStream_ReadCompletesPartialGroups(t *testing.T) {
	t.Parallel()

	m := newMockReader(8000, 1, 2, 3, 4, 5, 6)
	m.chunk = 3
	s := newStream(m)

	buf := make([]byte, 8)
	n, err := s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []int16{1, 2}, streamtest.DecodeInt16(buf[:n]))

	rest, err := streamtest.ReadAll(s, 4)
	require.NoError(t, err)
	assert.Equal(t, []int16{3, 4, 5, 6}, streamtest.DecodeInt16(rest))
}

func TestStream_DropsTrailingPartialGroup(t *testing.T) {
	t.Parallel()

	s := newStream(newMockReader(8000, 1, 2, 3))

	b, err := streamtest.ReadAll(s, 4)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2}, streamtest.DecodeInt16(b))
}

func TestStream_ShortBuffer(t *testing.T) {
	t.Parallel()

	s := newStream(newMockReader(8000, 1, 2))
	_, err := s.Read(make([]byte, 3))
	assert.ErrorIs(t, err, stream.ErrShortBuffer)
}

func TestStream_ReadError(t *testing.T) {
	t.Parallel()

	m := newMockReader(8000, 1, 2)
	m.err = io.ErrUnexpectedEOF
	s := newStream(m)

	_, err := s.Read(make([]byte, 64))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestStream_Seek(t *testing.T) {
	t.Parallel()

	values := make([]int16, 2*50)
	for i := range values {
		values[i] = int16(i)
	}
	s := newStream(seekable(newMockReader(44100, values...)))

	require.True(t, s.CanSeek())
	n, ok := s.Length()
	require.True(t, ok)
	assert.EqualValues(t, 50, n)

	require.NoError(t, s.Seek(10))
	buf := make([]byte, 8)
	_, err := s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []int16{20, 21, 22, 23}, streamtest.DecodeInt16(buf))

	pos, _ := s.Position()
	assert.EqualValues(t, 12, pos)

	// clamped to the end
	require.NoError(t, s.Seek(500))
	pos, _ = s.Position()
	assert.EqualValues(t, 50, pos)
	_, err = s.Read(buf)
	assert.ErrorIs(t, err, io.EOF)

	assert.ErrorIs(t, s.Seek(-1), stream.ErrNegativePosition)
}

func TestStream_UnknownLengthNotSeekable(t *testing.T) {
	t.Parallel()

	m := seekable(newMockReader(8000, 1, 2))
	m.length = -1
	s := newStream(m)

	assert.False(t, s.CanSeek())
	assert.ErrorIs(t, s.Seek(0), stream.ErrNotSeekable)
}

func TestStream_VariousSampleRates(t *testing.T) {
	t.Parallel()

	for _, rate := range []int{8000, 16000, 22050, 44100, 48000} {
		s := newStream(newMockReader(rate, 0, 0))
		assert.Equal(t, rate, s.SampleRate())
		assert.Equal(t, 2, stream.GroupSize(s)/2)
	}
}

func BenchmarkStream_Read(b *testing.B) {
	samples := make([]int16, 2*44100)
	buf := make([]byte, 4096)

	b.ReportAllocs()

	for b.Loop() {
		s := newStream(newMockReader(44100, samples...))
		for {
			if _, err := s.Read(buf); err != nil {
				break
			}
		}
	}
}
