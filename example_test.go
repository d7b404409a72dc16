// SPDX-License-Identifier: EPL-2.0

package avstream_test

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ik5/avstream"
	"github.com/ik5/avstream/formats/wav"
	"github.com/ik5/avstream/stream"
)

// Example_basicUsage decodes an in-memory WAV file to mono 16-bit PCM.
func Example_basicUsage() {
	samples := []int16{100, -100, 200, -200, 300, -300}
	wavData := new(bytes.Buffer)
	if err := wav.WriteWAV16(wavData, 8000, samples); err != nil {
		fmt.Printf("write error: %v\n", err)
		return
	}

	pcm16, rate, err := avstream.DecodeToMono16(wavData, 8000)
	if err != nil {
		fmt.Printf("decode error: %v\n", err)
		return
	}

	fmt.Printf("Processed %d samples at %d Hz\n", len(pcm16), rate)
	fmt.Println(pcm16)
	// Output:
	// Processed 6 samples at 8000 Hz
	// [100 -100 200 -200 300 -300]
}

// Example_resampleToMono16 downsamples one second of 44.1kHz audio.
func Example_resampleToMono16() {
	samples := make([]int16, 44100)
	for i := range samples {
		samples[i] = int16(i % 1000)
	}

	wavData := new(bytes.Buffer)
	if err := wav.WriteWAV16(wavData, 44100, samples); err != nil {
		panic(err)
	}

	src, err := wav.Decoder{}.Decode(wavData)
	if err != nil {
		panic(err)
	}
	defer src.Close()

	pcm16, rate, err := avstream.ResampleToMono16(src, 8000, 4096)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Input: %d Hz, Output: %d Hz\n", src.SampleRate(), rate)
	fmt.Printf("Downsampled from %d to %d samples\n", len(samples), len(pcm16))
	// Output:
	// Input: 44100 Hz, Output: 8000 Hz
	// Downsampled from 44100 to 8000 samples
}

// Example_open lets the registry pick the decoder.
func Example_open() {
	wavData := new(bytes.Buffer)
	if err := wav.WriteWAV16(wavData, 16000, []int16{100, 200, 300, 400, 500}); err != nil {
		panic(err)
	}

	src, format, err := avstream.Open(bytes.NewReader(wavData.Bytes()))
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	defer src.Close()

	length, _ := src.Length()
	fmt.Printf("format: %s\n", format)
	fmt.Printf("%d Hz, %d channel, %s, %d groups, seekable: %v\n",
		src.SampleRate(), src.Channels(), src.Format(), length, src.CanSeek())
	// Output:
	// format: wav
	// 16000 Hz, 1 channel, s16le, 5 groups, seekable: true
}

// Example_formats lists the container types NewRegistry understands.
func Example_formats() {
	fmt.Println(avstream.NewRegistry().Formats())
	// Output: [aiff mp3 vorbis wav]
}

// Example_errorHandling shows how decode failures map onto the error
// taxonomy of the stream package.
func Example_errorHandling() {
	_, _, err := avstream.Open(bytes.NewReader([]byte("not an audio file")))

	fmt.Println(errors.Is(err, stream.ErrUnsupportedFormat))
	// Output: true
}
