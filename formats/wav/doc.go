// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files holding PCM or IEEE float
// samples.
//
// # Supported Formats
//
//   - PCM unsigned 8-bit, signed 16-bit and signed 32-bit
//   - IEEE float 32-bit
//   - WAVE_FORMAT_EXTENSIBLE files whose sub-format is one of the above
//   - Any channel count and sample rate
//
// # Header
//
// ReadHeader scans the chunks of a file in order, reads the fmt chunk and
// stops at the data chunk, skipping anything else. NewHeader builds the
// canonical 44-byte header for a sample format. In both cases
// ChunkSize == 36 + DataSize.
//
//	h, err := wav.NewHeader(stream.Int16, 2, 44100, dataSize)
//	_, err = h.WriteTo(w)
//
// # Decoding
//
// NewStream returns a stream.SampleStream over the data chunk:
//
//	s, err := wav.NewStream(file)
//	if err != nil {
//	    // errors.Is(err, stream.ErrMalformedData) for damaged files
//	}
//	buf := make([]byte, 4096)
//	n, err := s.Read(buf) // io.EOF at the end of the data chunk
//
// The stream is seekable when the reader is an io.Seeker.
//
// # Encoding
//
// Write copies any stream.SampleStream into a WAV file. The data size is
// taken from the stream length when known; otherwise the destination must
// be an io.WriteSeeker so the header can be rewritten afterwards.
//
//	n, err := wav.Write(file, src)
//
// CreateFile and OpenFile do the same on an afero.Fs. WriteWAV16 writes a
// mono 16-bit file from a slice of samples.
package wav
