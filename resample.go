// SPDX-License-Identifier: EPL-2.0

package avstream

import (
	"fmt"
	"io"

	"github.com/ik5/avstream/audio"
	"github.com/ik5/avstream/stream"
)

// DefaultBufferSize is the number of samples ResampleToMono16 reads per call
// when used through DecodeToMono16.
const DefaultBufferSize = 4096

// ResampleToMono16 downmixes src to mono, resamples it to targetRate and
// collects all samples as 16-bit PCM.
//
// The pipeline is MonoMixer -> Resampler -> int16 quantization; use those
// types from the audio package directly when the whole result should not be
// held in memory.
//
// Example:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	pcm16, rate, err := avstream.ResampleToMono16(src, 8000, 4096)
//	if err != nil {
//	    return err
//	}
//	// pcm16 now contains mono 16-bit PCM at 8kHz
func ResampleToMono16(src stream.SampleStream, targetRate int, bufferSize int) ([]int16, int, error) {
	return audio.ResampleToMono16(src, targetRate, bufferSize)
}

// DecodeToMono16 detects the container type of r, decodes it and returns
// mono 16-bit PCM at targetRate. The decoded stream is closed before it
// returns.
func DecodeToMono16(r io.Reader, targetRate int) ([]int16, int, error) {
	src, format, err := Open(r)
	if err != nil {
		return nil, targetRate, err
	}
	defer src.Close()

	pcm16, rate, err := ResampleToMono16(src, targetRate, DefaultBufferSize)
	if err != nil {
		return nil, rate, fmt.Errorf("%s: %w", format, err)
	}

	return pcm16, rate, nil
}
