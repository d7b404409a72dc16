// SPDX-License-Identifier: EPL-2.0

// Package audio provides audio processing stages built on stream.SampleStream.
//
// This package contains:
//   - Registry of decoders, with container detection for Open
//   - MonoMixer for channel mixing
//   - Resampler for sample rate conversion, HQResampler for a sinc filtered one
//   - FloatReader for reading any stream as float32 samples
//   - go-audio buffer adapters (IntBufferStream, ReadIntBuffer, ReadFloatBuffer)
//
// MonoMixer and Resampler are themselves Float32 SampleStreams, so they can be
// chained, buffered, or handed to a writer like any decoded stream. Both also
// offer ReadSamples for callers that want float32 values directly.
//
// # Resampling
//
//	resampler, err := audio.NewResampler(src, 16000)
//	buf := make([]float32, 4096)
//	n, err := resampler.ReadSamples(buf)
//
// Output positions are counted at the target rate. A source of L sample-groups
// produces exactly ceil(L*dst/src) groups, and seeking rebuilds the
// interpolation window from the source.
//
// HQResampler runs go-audio-resampling's high quality preset instead. It only
// streams forward and its output length depends on the filter delay.
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{}, "audio/wav")
//	s, format, err := registry.Open(file)
//
// Open sniffs the leading bytes with mimetype and picks the decoder whose
// MIME type matches the detected type or one of its parents.
//
// # Error Handling
//
// Reads return io.EOF when no more data is available. Errors wrap the stream
// package taxonomy, so errors.Is(err, stream.ErrArgument) and friends work.
package audio
