// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/spf13/afero"

	"github.com/ik5/avstream/stream"
)

// writeChunk is the number of sample-groups encoded per call.
const writeChunk = 1024

// Write encodes src from its current position to the end as an AIFF file.
// Int32 streams are stored as 32-bit samples, every other format as 16-bit.
// The header sizes are patched on close, so ws must be seekable.
func Write(ws io.WriteSeeker, src stream.SampleStream) error {
	target := stream.Int16
	if src.Format() == stream.Int32 {
		target = stream.Int32
	}
	s, err := stream.AsFormat(src, target)
	if err != nil {
		return err
	}

	enc := aiff.NewEncoder(ws, s.SampleRate(), target.Bits(), s.Channels())
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: s.Channels(), SampleRate: s.SampleRate()},
		SourceBitDepth: target.Bits(),
	}
	raw := make([]byte, writeChunk*stream.GroupSize(s))
	size := target.Size()

	for {
		n, rerr := s.Read(raw)
		if n > 0 {
			buf.Data = buf.Data[:0]
			for i := 0; i+size <= n; i += size {
				if target == stream.Int16 {
					buf.Data = append(buf.Data, int(int16(binary.LittleEndian.Uint16(raw[i:]))))
				} else {
					buf.Data = append(buf.Data, int(int32(binary.LittleEndian.Uint32(raw[i:]))))
				}
			}
			if err := enc.Write(buf); err != nil {
				return fmt.Errorf("aiff encode: %w", err)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("aiff encode: %w", err)
	}
	return nil
}

// CreateFile writes src to a new AIFF file on fs. A partially written file is
// removed when encoding fails.
func CreateFile(fs afero.Fs, name string, src stream.SampleStream) (err error) {
	f, err := fs.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = fs.Remove(name)
		}
	}()
	return Write(f, src)
}

// OpenFile opens an AIFF file on fs. Closing the stream closes the file.
func OpenFile(fs afero.Fs, name string) (stream.SampleStream, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	s, err := NewStream(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileStream{Stream: s, f: f}, nil
}

type fileStream struct {
	*Stream
	f afero.File
}

func (s *fileStream) Close() error { return s.f.Close() }
