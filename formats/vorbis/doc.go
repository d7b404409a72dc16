// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis files
// into a Float32 stream.SampleStream.
//
// # Output Format
//
//   - Sample format: Float32 in range [-1.0, 1.0]
//   - Channels: that of the file
//   - Sample rate: that of the file
//
// When the input is an io.Seeker the stream knows its length and seeks with
// the decoder's SetPosition. Otherwise Seek returns stream.ErrNotSeekable.
//
// # Decoding Vorbis Files
//
//	file, _ := os.Open("audio.ogg")
//	src, err := vorbis.NewStream(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]byte, 4096)
//	n, err := src.Read(buf)
package vorbis
