// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/avstream/stream"
)

// AudioFormat is the format tag of a fmt chunk.
type AudioFormat uint16

const (
	FormatPCM        AudioFormat = 1
	FormatIEEEFloat  AudioFormat = 3
	FormatALaw       AudioFormat = 6
	FormatMuLaw      AudioFormat = 7
	FormatExtensible AudioFormat = 0xFFFE
)

func (f AudioFormat) String() string {
	switch f {
	case FormatPCM:
		return "PCM"
	case FormatIEEEFloat:
		return "IEEE float"
	case FormatALaw:
		return "A-law"
	case FormatMuLaw:
		return "mu-law"
	case FormatExtensible:
		return "extensible"
	}
	return fmt.Sprintf("AudioFormat(%#x)", uint16(f))
}

const (
	// HeaderSize is the length of a canonical header with only fmt and data
	// chunks.
	HeaderSize = 44

	// UnknownDataSize is written by streaming encoders that do not know the
	// final length.
	UnknownDataSize = math.MaxUint32

	pcmFmtSize = 16
	extFmtSize = 40
)

var (
	riffID = [4]byte{'R', 'I', 'F', 'F'}
	waveID = [4]byte{'W', 'A', 'V', 'E'}
	fmtID  = [4]byte{'f', 'm', 't', ' '}
	dataID = [4]byte{'d', 'a', 't', 'a'}
)

// Header is the canonical 44-byte RIFF/WAVE header. Its fields are laid out
// in file order so it can be encoded with encoding/binary as is.
type Header struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	FmtID         [4]byte
	FmtSize       uint32
	AudioFormat   AudioFormat
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataID        [4]byte
	DataSize      uint32
}

// NewHeader returns the header of a file holding dataSize bytes of format
// samples.
func NewHeader(format stream.SampleFormat, channels, sampleRate int, dataSize uint32) (Header, error) {
	var tag AudioFormat
	switch format {
	case stream.UInt8, stream.Int16, stream.Int32:
		tag = FormatPCM
	case stream.Float32:
		tag = FormatIEEEFloat
	default:
		return Header{}, fmt.Errorf("%w: %v", ErrUnsupportedEncoding, format)
	}
	if channels < 1 || channels > math.MaxUint16 {
		return Header{}, fmt.Errorf("%w: %d channels", stream.ErrArgument, channels)
	}
	if sampleRate < 1 || int64(sampleRate) > math.MaxUint32 {
		return Header{}, fmt.Errorf("%w: sample rate %d", stream.ErrArgument, sampleRate)
	}
	if dataSize > math.MaxUint32-36 {
		return Header{}, ErrTooLarge
	}

	bits := uint16(format.Bits())
	blockAlign := uint64(channels) * uint64(bits) / 8
	byteRate := uint64(sampleRate) * blockAlign
	if blockAlign > math.MaxUint16 || byteRate > math.MaxUint32 {
		return Header{}, fmt.Errorf("%w: %d channels at %d Hz overflow the byte rate",
			stream.ErrArgument, channels, sampleRate)
	}

	return Header{
		ChunkID:       riffID,
		ChunkSize:     36 + dataSize,
		Format:        waveID,
		FmtID:         fmtID,
		FmtSize:       pcmFmtSize,
		AudioFormat:   tag,
		Channels:      uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(byteRate),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: bits,
		DataID:        dataID,
		DataSize:      dataSize,
	}, nil
}

// WriteTo encodes h in little-endian order.
func (h Header) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return 0, fmt.Errorf("write WAV header: %w", err)
	}
	return HeaderSize, nil
}

// MarshalBinary returns the 44 header bytes.
func (h Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, HeaderSize)
	return binary.Append(b, binary.LittleEndian, h)
}

// SampleFormat derives the sample encoding described by the fmt chunk.
func (h Header) SampleFormat() (stream.SampleFormat, error) {
	if h.FmtID != fmtID {
		return 0, ErrMissingFmtChunk
	}
	if h.DataID != dataID {
		return 0, ErrMissingDataChunk
	}
	if h.Channels == 0 {
		return 0, fmt.Errorf("%w: zero channels", ErrInvalidFmtChunk)
	}

	switch {
	case h.AudioFormat == FormatPCM && h.BitsPerSample == 8:
		return stream.UInt8, nil
	case h.AudioFormat == FormatPCM && h.BitsPerSample == 16:
		return stream.Int16, nil
	case h.AudioFormat == FormatPCM && h.BitsPerSample == 32:
		return stream.Int32, nil
	case h.AudioFormat == FormatIEEEFloat && h.BitsPerSample == 32:
		return stream.Float32, nil
	}
	return 0, fmt.Errorf("%w: %v with %d bits", ErrUnsupportedEncoding, h.AudioFormat, h.BitsPerSample)
}

// Groups returns how many sample-groups the data chunk holds. It is unknown
// for streamed files that carry UnknownDataSize.
func (h Header) Groups() (int64, bool) {
	if h.DataSize == UnknownDataSize || h.BlockAlign == 0 {
		return 0, false
	}
	return int64(h.DataSize) / int64(h.BlockAlign), true
}

// ReadHeader parses a RIFF/WAVE header from r and leaves r positioned at the
// first byte of the data chunk payload.
//
// Chunks other than fmt and data are skipped. A missing fmt or data chunk is
// not reported here; it surfaces from Header.SampleFormat. Read errors other
// than end of stream are returned.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header

	var riff struct {
		ID   [4]byte
		Size uint32
		Wave [4]byte
	}
	if err := binary.Read(r, binary.LittleEndian, &riff); err != nil {
		return h, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if riff.ID != riffID || riff.Wave != waveID {
		return h, ErrNotWavFile
	}
	h.ChunkID, h.ChunkSize, h.Format = riff.ID, riff.Size, riff.Wave

	for {
		var chunk struct {
			ID   [4]byte
			Size uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return h, nil
			}
			return h, fmt.Errorf("read WAV chunk: %w", err)
		}

		switch chunk.ID {
		case dataID:
			h.DataID, h.DataSize = chunk.ID, chunk.Size
			return h, nil
		case fmtID:
			if err := readFmt(r, &h, chunk.Size); err != nil {
				return h, err
			}
		default:
			if err := skip(r, int64(chunk.Size)+int64(chunk.Size&1)); err != nil {
				if errors.Is(err, io.EOF) {
					return h, nil
				}
				return h, fmt.Errorf("skip WAV chunk %q: %w", chunk.ID[:], err)
			}
		}
	}
}

func readFmt(r io.Reader, h *Header, size uint32) error {
	if size < pcmFmtSize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidFmtChunk, size)
	}

	var pcm struct {
		AudioFormat   AudioFormat
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
	}
	if err := binary.Read(r, binary.LittleEndian, &pcm); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFmtChunk, err)
	}
	h.FmtID, h.FmtSize = fmtID, pcmFmtSize
	h.AudioFormat = pcm.AudioFormat
	h.Channels = pcm.Channels
	h.SampleRate = pcm.SampleRate
	h.ByteRate = pcm.ByteRate
	h.BlockAlign = pcm.BlockAlign
	h.BitsPerSample = pcm.BitsPerSample

	rest := int64(size) - pcmFmtSize + int64(size&1)
	if pcm.AudioFormat == FormatExtensible && size >= extFmtSize {
		// cbSize, valid bits, channel mask, then a GUID whose first two
		// bytes are the real format tag
		var ext struct {
			Size      uint16
			ValidBits uint16
			Mask      uint32
			SubFormat AudioFormat
			_         [14]byte
		}
		if err := binary.Read(r, binary.LittleEndian, &ext); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidFmtChunk, err)
		}
		h.AudioFormat = ext.SubFormat
		rest -= extFmtSize - pcmFmtSize
	}

	if err := skip(r, rest); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFmtChunk, err)
	}
	return nil
}

func skip(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if s, ok := r.(io.Seeker); ok {
		_, err := s.Seek(n, io.SeekCurrent)
		return err
	}
	_, err := io.CopyN(io.Discard, r, n)
	return err
}
