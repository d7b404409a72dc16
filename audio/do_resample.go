// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/avstream/stream"
	"github.com/ik5/avstream/utils"
)

// ResampleToMono16 downmixes src to mono, resamples it to targetRate and
// collects every sample as 16-bit PCM. It returns the samples and the output
// sample rate. bufferSize is the number of samples read per call.
//
// Example:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	pcm16, rate, err := audio.ResampleToMono16(src, 8000, 4096)
//	if err != nil {
//	    return err
//	}
//	// pcm16 now contains mono 16-bit PCM at 8kHz
func ResampleToMono16(src stream.SampleStream, targetRate int, bufferSize int) ([]int16, int, error) {
	if bufferSize <= 0 {
		return nil, targetRate, ErrInvalidDstSize
	}
	mono, err := NewMonoMixer(src)
	if err != nil {
		return nil, targetRate, err
	}
	resampler, err := NewResampler(mono, targetRate)
	if err != nil {
		return nil, targetRate, err
	}

	var pcm16 []int16
	if n, ok := resampler.Length(); ok {
		pcm16 = make([]int16, 0, n)
	}
	buf := make([]float32, bufferSize)

	for {
		n, err := resampler.ReadSamples(buf)
		for _, x := range buf[:n] {
			pcm16 = append(pcm16, utils.Float32ToInt16(x))
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, targetRate, fmt.Errorf("resample: %w", err)
		}
	}

	return pcm16, targetRate, nil
}
