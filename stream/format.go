// SPDX-License-Identifier: EPL-2.0

package stream

import "fmt"

// SampleFormat is one of the canonical PCM encodings. All multi-byte
// encodings are little-endian.
type SampleFormat int

const (
	// UInt8 is unsigned 8-bit PCM biased at 128 (silence).
	UInt8 SampleFormat = iota + 1
	// Int16 is signed 16-bit PCM.
	Int16
	// Int32 is signed 32-bit PCM.
	Int32
	// Float32 is IEEE-754 single precision, nominally in [-1, 1].
	Float32
)

// Size returns the number of bytes of one sample, or 0 for an invalid format.
func (f SampleFormat) Size() int {
	switch f {
	case UInt8:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	}
	return 0
}

// Bits returns the sample width in bits.
func (f SampleFormat) Bits() int { return f.Size() * 8 }

// IsFloat reports whether samples are floating point.
func (f SampleFormat) IsFloat() bool { return f == Float32 }

// Valid reports whether f is one of the declared formats.
func (f SampleFormat) Valid() bool { return f.Size() != 0 }

// Validate returns ErrUnsupportedFormat for an undeclared format.
func (f SampleFormat) Validate() error {
	if !f.Valid() {
		return fmt.Errorf("%w: sample format %d", ErrUnsupportedFormat, int(f))
	}
	return nil
}

func (f SampleFormat) String() string {
	switch f {
	case UInt8:
		return "u8"
	case Int16:
		return "s16le"
	case Int32:
		return "s32le"
	case Float32:
		return "f32le"
	}
	return fmt.Sprintf("SampleFormat(%d)", int(f))
}

// ParseSampleFormat is the inverse of SampleFormat.String.
func ParseSampleFormat(s string) (SampleFormat, error) {
	for _, f := range []SampleFormat{UInt8, Int16, Int32, Float32} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: sample format %q", ErrUnsupportedFormat, s)
}

// FrameFormat is a packed raw pixel encoding.
type FrameFormat int

const (
	// Bgr888 stores blue, green, red; 3 bytes per pixel.
	Bgr888 FrameFormat = iota + 1
	// Bgra8888 stores blue, green, red, alpha; 4 bytes per pixel.
	Bgra8888
	// Rgb888 stores red, green, blue; 3 bytes per pixel.
	Rgb888
)

// BytesPerPixel returns the pixel size, or 0 for an invalid format.
func (f FrameFormat) BytesPerPixel() int {
	switch f {
	case Bgr888, Rgb888:
		return 3
	case Bgra8888:
		return 4
	}
	return 0
}

// MinStride returns the smallest row stride able to hold width pixels.
func (f FrameFormat) MinStride(width int) int { return width * f.BytesPerPixel() }

// Valid reports whether f is one of the declared formats.
func (f FrameFormat) Valid() bool { return f.BytesPerPixel() != 0 }

func (f FrameFormat) String() string {
	switch f {
	case Bgr888:
		return "bgr24"
	case Bgra8888:
		return "bgra"
	case Rgb888:
		return "rgb24"
	}
	return fmt.Sprintf("FrameFormat(%d)", int(f))
}
