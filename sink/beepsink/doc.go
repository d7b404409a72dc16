// SPDX-License-Identifier: EPL-2.0

// Package beepsink connects sample streams to github.com/gopxl/beep.
//
// Streamer plays any stream.SampleStream through beep's speaker, mixer and
// effects by presenting it as a beep.StreamSeekCloser. Source goes the other
// way and exposes a beep.Streamer as a Float32 sample stream, so beep
// generators and effects can feed the buffer and writer packages.
//
//	s, err := beepsink.New(src)
//	if err != nil {
//	    return err
//	}
//	speaker.Init(s.Format().SampleRate, s.Format().SampleRate.N(time.Second/10))
//	speaker.Play(s)
//
// beep carries at most two channels. Mono streams are duplicated to both
// sides, and streams with more channels keep their first two.
package beepsink
