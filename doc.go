// SPDX-License-Identifier: EPL-2.0

// Package avstream is the entry point to a small media streaming library:
// decoders for common audio containers, a pull-based sample and frame stream
// contract, format conversion, read-ahead buffering and a WAV codec.
//
// # Supported Formats
//
// NewRegistry knows the following containers and Open picks one of them by
// sniffing the leading bytes of the input:
//   - WAV (PCM u8/s16/s32, IEEE float 32) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF (8, 16, 24 and 32 bit) via formats/aiff
//
// # Quick Start
//
// The simplest way to process audio is DecodeToMono16:
//
//	file, _ := os.Open("audio.mp3")
//	samples, rate, err := avstream.DecodeToMono16(file, 8000)
//	// samples is now []int16 at 8kHz mono
//
// # Streams
//
// Every decoder returns a stream.SampleStream. Streams are read in whole
// sample-groups, know their position and length when the source does, and
// can be seeked when CanSeek reports true:
//
//	src, format, err := avstream.Open(file)
//	defer src.Close()
//	f32, _ := stream.AsFormat(src, stream.Float32)
//	buf := make([]byte, 4096*stream.GroupSize(f32))
//	n, err := f32.Read(buf)
//
// OpenBuffered wraps the decoded stream in a buffer.SampleStream so that
// decoding runs ahead of the consumer on its own goroutine.
//
// # Processing Pipeline
//
// The audio subpackage provides MonoMixer and Resampler, both streams
// themselves:
//
//	mono, _ := audio.NewMonoMixer(src)
//	res, _ := audio.NewResampler(mono, 16000)
//	out := make([]float32, 4096)
//	n, err := res.ReadSamples(out)
//
// # Writing WAV Files
//
// wav.Write encodes any SampleStream in its own sample format; wav.WriteWAV16
// is a shortcut for mono int16 slices:
//
//	fd, _ := os.Create("output.wav")
//	_, err := wav.Write(fd, res)
//
// See the individual subpackages for more detailed documentation.
package avstream
