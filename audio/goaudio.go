// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/avstream/stream"
)

// readChunk is the number of sample-groups read per call when draining a
// stream into memory.
const readChunk = 1024

// IntBufferStream is a seekable SampleStream over an in-memory
// go-audio IntBuffer. 16-bit buffers produce Int16, 24 and 32-bit buffers
// produce Int32 (24-bit values are scaled to the full 32-bit range).
type IntBufferStream struct {
	buf    *goaudio.IntBuffer
	format stream.SampleFormat
	shift  uint
	pos    int64
}

func NewIntBufferStream(buf *goaudio.IntBuffer) (*IntBufferStream, error) {
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("%w: nil buffer or format", stream.ErrArgument)
	}
	if buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", stream.ErrArgument, buf.Format.NumChannels, buf.Format.SampleRate)
	}

	s := &IntBufferStream{buf: buf}
	switch buf.SourceBitDepth {
	case 0, 16:
		s.format = stream.Int16
	case 24:
		s.format, s.shift = stream.Int32, 8
	case 32:
		s.format = stream.Int32
	default:
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, buf.SourceBitDepth)
	}
	return s, nil
}

func (s *IntBufferStream) Format() stream.SampleFormat { return s.format }
func (s *IntBufferStream) SampleRate() int             { return s.buf.Format.SampleRate }
func (s *IntBufferStream) Channels() int               { return s.buf.Format.NumChannels }
func (s *IntBufferStream) Position() (int64, bool)     { return s.pos, true }
func (s *IntBufferStream) Length() (int64, bool)       { return int64(s.buf.NumFrames()), true }
func (s *IntBufferStream) CanSeek() bool               { return true }
func (s *IntBufferStream) Close() error                { return nil }

func (s *IntBufferStream) Seek(pos int64) error {
	if err := stream.CheckSeek(true, pos); err != nil {
		return err
	}
	n, _ := s.Length()
	s.pos = min(pos, n)
	return nil
}

func (s *IntBufferStream) Read(p []byte) (int, error) {
	gs := stream.GroupSize(s)
	want, err := stream.CheckSampleBuffer(p, gs)
	if err != nil {
		return 0, err
	}

	ch := s.Channels()
	first := int(s.pos) * ch
	if first >= len(s.buf.Data) {
		return 0, io.EOF
	}
	values := s.buf.Data[first:min(len(s.buf.Data), first+want/gs*ch)]
	values = values[:len(values)-len(values)%ch]

	size := s.format.Size()
	for i, v := range values {
		if s.format == stream.Int16 {
			binary.LittleEndian.PutUint16(p[i*size:], uint16(int16(v)))
		} else {
			binary.LittleEndian.PutUint32(p[i*size:], uint32(int32(v<<s.shift)))
		}
	}
	s.pos += int64(len(values) / ch)
	return len(values) * size, nil
}

// drain reads src to the end in chunks, passing every chunk to fn.
func drain(src stream.SampleStream, fn func([]byte)) error {
	buf := make([]byte, readChunk*stream.GroupSize(src))
	for {
		n, err := src.Read(buf)
		fn(buf[:n])
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// ReadIntBuffer drains src into a go-audio IntBuffer. Int32 streams keep
// 32-bit depth, every other format is read as 16-bit.
func ReadIntBuffer(src stream.SampleStream) (*goaudio.IntBuffer, error) {
	if src == nil {
		return nil, ErrNilStream
	}
	target := stream.Int16
	if src.Format() == stream.Int32 {
		target = stream.Int32
	}
	s, err := stream.AsFormat(src, target)
	if err != nil {
		return nil, err
	}

	out := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: s.Channels(), SampleRate: s.SampleRate()},
		SourceBitDepth: target.Bits(),
	}
	if n, ok := s.Length(); ok {
		pos, _ := s.Position()
		out.Data = make([]int, 0, max(n-pos, 0)*int64(s.Channels()))
	}

	err = drain(s, func(b []byte) {
		if target == stream.Int16 {
			for i := 0; i+2 <= len(b); i += 2 {
				out.Data = append(out.Data, int(int16(binary.LittleEndian.Uint16(b[i:]))))
			}
			return
		}
		for i := 0; i+4 <= len(b); i += 4 {
			out.Data = append(out.Data, int(int32(binary.LittleEndian.Uint32(b[i:]))))
		}
	})
	return out, err
}

// ReadFloatBuffer drains src into a go-audio FloatBuffer with samples in
// [-1,1].
func ReadFloatBuffer(src stream.SampleStream) (*goaudio.FloatBuffer, error) {
	fr, err := NewFloatReader(src)
	if err != nil {
		return nil, err
	}
	s := fr.Stream()

	out := &goaudio.FloatBuffer{
		Format: &goaudio.Format{NumChannels: s.Channels(), SampleRate: s.SampleRate()},
	}
	tmp := make([]float32, readChunk*s.Channels())
	for {
		n, err := fr.ReadSamples(tmp)
		for _, v := range tmp[:n] {
			out.Data = append(out.Data, float64(v))
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
