// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files into a
// stream.SampleStream.
//
// # Output Format
//
//   - Sample format: Int16 (little-endian)
//   - Channels: 2 (go-mp3 always produces stereo)
//   - Sample rate: that of the MP3 file
//
// When the input is an io.Seeker the stream reports its length and can seek to
// any sample-group. Otherwise the length is unknown and Seek returns
// stream.ErrNotSeekable.
//
// # Decoding MP3 Files
//
//	file, _ := os.Open("audio.mp3")
//	src, err := mp3.NewStream(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]byte, 4096)
//	n, err := src.Read(buf)
//
// To convert to mono or resample, use the audio package:
//
//	mono, _ := audio.NewMonoMixer(src)
//	resampled, _ := audio.NewResampler(mono, 8000)
//
// MP3 writing is not supported.
package mp3
