// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ik5/avstream/stream"
)

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate. samples must be
// int16 PCM.
func WriteWAV16(w io.Writer, sampleRate int, samples []int16) error {
	if len(samples) > (math.MaxUint32-36)/2 {
		return ErrTooLarge
	}
	header, err := NewHeader(stream.Int16, 1, sampleRate, uint32(len(samples)*2))
	if err != nil {
		return err
	}
	if _, err := header.WriteTo(w); err != nil {
		return err
	}

	const chunkSize = 8192 // samples per write
	if len(samples) == 0 {
		return nil
	}

	buf := make([]byte, min(len(samples), chunkSize)*2)

	for i := 0; i < len(samples); i += chunkSize {
		chunk := samples[i:min(i+chunkSize, len(samples))]
		buf = buf[:len(chunk)*2]

		for j, s := range chunk {
			binary.LittleEndian.PutUint16(buf[j*2:], uint16(s))
		}

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write WAV data: %w", err)
		}
	}

	return nil
}
