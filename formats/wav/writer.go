// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/ik5/avstream/stream"
)

// chunkGroups is how many sample-groups Write moves per source read.
const chunkGroups = 1024

// Write encodes src as a WAV file on dst in the format of src, starting at
// the current position of src. It returns the number of PCM bytes written.
//
// When src knows its length the header is written with the exact data size
// up front. Otherwise dst must be an io.WriteSeeker: a header is reserved,
// the data is streamed and the header is rewritten with the observed size,
// leaving dst positioned after the data. An unsized src with a non-seekable
// dst fails with ErrUnsizedDestination before anything is written.
func Write(dst io.Writer, src stream.SampleStream) (int64, error) {
	ws, seekable := dst.(io.WriteSeeker)

	var expected int64 = -1
	if length, ok := src.Length(); ok {
		pos, hasPos := src.Position()
		if !hasPos {
			pos = 0
		}
		expected = max(length-pos, 0) * int64(stream.GroupSize(src))
	}

	if expected < 0 && !seekable {
		return 0, ErrUnsizedDestination
	}
	if expected > math.MaxUint32-36 {
		return 0, ErrTooLarge
	}

	header, err := NewHeader(src.Format(), src.Channels(), src.SampleRate(), uint32(max(expected, 0)))
	if err != nil {
		return 0, err
	}

	var start int64
	if seekable {
		if start, err = ws.Seek(0, io.SeekCurrent); err != nil {
			// a WriteSeeker that cannot report its offset is treated as a
			// plain writer
			seekable = false
			if expected < 0 {
				return 0, fmt.Errorf("%w: %w", ErrUnsizedDestination, err)
			}
		}
	}

	if _, err := header.WriteTo(dst); err != nil {
		return 0, err
	}

	written, err := copyData(dst, src)
	if err != nil {
		return written, err
	}

	if written == expected {
		return written, nil
	}
	if !seekable {
		return written, fmt.Errorf("%w: expected %d bytes, wrote %d", ErrLengthMismatch, expected, written)
	}
	if written > math.MaxUint32-36 {
		return written, ErrTooLarge
	}

	header.DataSize = uint32(written)
	header.ChunkSize = 36 + header.DataSize
	if err := patchHeader(ws, start, header, written); err != nil {
		return written, err
	}

	slog.Debug("wav header patched", "data_size", written, "expected", expected)
	return written, nil
}

func copyData(dst io.Writer, src stream.SampleStream) (int64, error) {
	buf := make([]byte, chunkGroups*stream.GroupSize(src))

	var written int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("write WAV data: %w", werr)
			}
			written += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, fmt.Errorf("read samples: %w", err)
		}
	}
}

func patchHeader(ws io.WriteSeeker, start int64, h Header, dataSize int64) error {
	if _, err := ws.Seek(start, io.SeekStart); err != nil {
		return fmt.Errorf("seek to WAV header: %w", err)
	}
	if _, err := h.WriteTo(ws); err != nil {
		return err
	}
	if _, err := ws.Seek(start+HeaderSize+dataSize, io.SeekStart); err != nil {
		return fmt.Errorf("seek past WAV data: %w", err)
	}
	return nil
}
