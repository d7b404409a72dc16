// SPDX-License-Identifier: EPL-2.0

package avstream

import (
	"io"
	"sync"

	"github.com/ik5/avstream/audio"
	"github.com/ik5/avstream/buffer"
	"github.com/ik5/avstream/formats/aiff"
	"github.com/ik5/avstream/formats/mp3"
	"github.com/ik5/avstream/formats/vorbis"
	"github.com/ik5/avstream/formats/wav"
	"github.com/ik5/avstream/stream"
)

// Format keys used by NewRegistry.
const (
	FormatWAV    = "wav"
	FormatMP3    = "mp3"
	FormatVorbis = "vorbis"
	FormatAIFF   = "aiff"
)

// NewRegistry returns a registry holding every decoder of this module,
// mapped to the MIME types the detector reports for them.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(FormatWAV, wav.Decoder{}, "audio/wav")
	reg.Register(FormatMP3, mp3.Decoder{}, "audio/mpeg")
	reg.Register(FormatVorbis, vorbis.Decoder{}, "audio/ogg")
	reg.Register(FormatAIFF, aiff.Decoder{}, "audio/aiff")

	return reg
}

var defaultRegistry = sync.OnceValue(NewRegistry)

// DefaultRegistry returns the shared registry used by Open.
func DefaultRegistry() *audio.Registry { return defaultRegistry() }

// Open decodes r with the decoder matching its detected container type and
// returns the stream with the chosen format key.
func Open(r io.Reader) (stream.SampleStream, string, error) {
	return defaultRegistry().Open(r)
}

// OpenBuffered is Open followed by a read-ahead buffer, so decoding runs on
// its own goroutine while the caller consumes. The buffered stream is named
// after the format unless opts set a name.
func OpenBuffered(r io.Reader, opts ...buffer.Option) (*buffer.SampleStream, string, error) {
	src, format, err := Open(r)
	if err != nil {
		return nil, "", err
	}

	opts = append([]buffer.Option{buffer.WithName(format)}, opts...)
	buffered, err := buffer.NewSampleStream(src, opts...)
	if err != nil {
		src.Close()
		return nil, format, err
	}

	return buffered, format, nil
}
