// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ik5/avstream/stream"
)

// sniffSize is how many leading bytes Open hands to the MIME detector.
const sniffSize = 3072

// Decoder constructs a SampleStream from an input reader.
type Decoder interface {
	Decode(r io.Reader) (stream.SampleStream, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(r io.Reader) (stream.SampleStream, error)

func (f DecoderFunc) Decode(r io.Reader) (stream.SampleStream, error) { return f(r) }

// Registry for decoders by format key (e.g., "wav", "mp3", "vorbis"), with an
// optional MIME type mapping used by Open.
type Registry struct {
	codecs map[string]Decoder
	mimes  map[string]string

	log *slog.Logger
	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mimes:  make(map[string]string),
		log:    slog.Default(),
		mtx:    &sync.Mutex{},
	}
}

// SetLogger replaces the logger used by Open. A nil logger is ignored.
func (r *Registry) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.log = l
}

// Register adds d under format and maps every given MIME type to it.
func (r *Registry) Register(format string, d Decoder, mimes ...string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = d
	for _, m := range mimes {
		r.mimes[m] = format
	}
}

// RegisterMIME maps a MIME type to an already known or future format key.
func (r *Registry) RegisterMIME(mime, format string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.mimes[mime] = format
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Formats returns the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// lookup resolves a detected MIME type to a format key, walking up the MIME
// hierarchy until a registered type matches.
func (r *Registry) lookup(m *mimetype.MIME) (string, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for ; m != nil; m = m.Parent() {
		for mime, format := range r.mimes {
			if !m.Is(mime) {
				continue
			}
			if _, ok := r.codecs[format]; ok {
				return format, true
			}
		}
	}
	return "", false
}

// Open detects the container type of rd from its leading bytes and decodes
// it with the matching registered decoder. It returns the stream and the
// format key that was chosen.
//
// When rd is an io.Seeker it is rewound after detection, otherwise the
// sniffed bytes are replayed in front of the remaining input.
func (r *Registry) Open(rd io.Reader) (stream.SampleStream, string, error) {
	head := make([]byte, sniffSize)
	n, err := io.ReadFull(rd, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", fmt.Errorf("read header: %w", err)
	}
	if n == 0 {
		return nil, "", ErrEmptyInput
	}
	head = head[:n]

	m := mimetype.Detect(head)

	r.mtx.Lock()
	log := r.log
	r.mtx.Unlock()

	format, ok := r.lookup(m)
	if !ok {
		log.Debug("no decoder for detected type", "mime", m.String())
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownFormat, m.String())
	}
	log.Debug("detected audio format", "mime", m.String(), "format", format)

	var src io.Reader
	if s, ok := rd.(io.Seeker); ok {
		if _, err := s.Seek(-int64(n), io.SeekCurrent); err != nil {
			return nil, "", fmt.Errorf("rewind: %w", err)
		}
		src = rd
	} else {
		src = io.MultiReader(bytes.NewReader(head), rd)
	}

	d, _ := r.Get(format)
	s, err := d.Decode(src)
	if err != nil {
		log.Warn("decode failed", "format", format, "error", err)
		return nil, format, fmt.Errorf("decode %s: %w", format, err)
	}
	return s, format, nil
}
