// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding and
// encoding.
//
// This package uses github.com/go-audio/aiff. AIFF is Apple's standard audio
// file format, commonly used on macOS.
//
// # Decoding AIFF Files
//
//	file, _ := os.Open("audio.aif")
//	src, err := aiff.NewStream(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]byte, 4096)
//	n, err := src.Read(buf)
//
// # Output Format
//
//   - 8 and 16-bit files: Int16
//   - 24 and 32-bit files: Int32
//   - Channels and sample rate: those of the file
//
// Samples of narrower files are scaled to the full range of the output
// format. The length comes from the COMM chunk. Seeking rewinds the input
// and skips forward, so it costs time proportional to the target position.
//
// # Encoding
//
// Write and CreateFile store any SampleStream as a 16-bit AIFF file, or as
// 32-bit when the stream is Int32.
//
// # Error Handling
//
//   - ErrNotAiffFile: the input is not a valid AIFF file (stream.ErrMalformedData)
//   - ErrUnsupportedBitDepth: sample size is not 8, 16, 24 or 32
//   - ErrUnsupportedAiffLayout: no channels or no sample rate
//
// # AIFF vs. WAV
//
// AIFF is similar to WAV but:
//   - Uses big-endian byte order (WAV uses little-endian)
//   - Originated on Apple platforms (WAV on Windows)
//   - Stores sample rate as 80-bit float (WAV uses 32-bit int)
package aiff
