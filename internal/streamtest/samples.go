// SPDX-License-Identifier: EPL-2.0

// Package streamtest provides deterministic sample and frame streams for
// tests.
package streamtest

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/avstream/stream"
)

// Samples is an in-memory SampleStream over raw PCM bytes.
//
// Reads are safe to call from a goroutine other than the one inspecting the
// counters, which is how buffered streams use it.
type Samples struct {
	format     stream.SampleFormat
	sampleRate int
	channels   int
	data       []byte

	// MaxGroups caps how many sample-groups one Read returns. Zero means no
	// cap.
	MaxGroups int
	// Delay is slept before every Read.
	Delay time.Duration
	// HidePosition and HideLength drop the corresponding capability.
	HidePosition bool
	HideLength   bool
	// NoSeek drops the seek capability.
	NoSeek bool

	mu      sync.Mutex
	pos     int64
	failAt  int64
	failErr error
	panicAt int64
	seekErr error

	reads  atomic.Int64
	seeks  atomic.Int64
	closes atomic.Int64
}

// NewSamples returns a stream producing data, which must hold whole
// sample-groups.
func NewSamples(format stream.SampleFormat, sampleRate, channels int, data []byte) *Samples {
	return &Samples{
		format:     format,
		sampleRate: sampleRate,
		channels:   channels,
		data:       data,
		failAt:     -1,
		panicAt:    -1,
	}
}

// Int16 returns a stream producing the given Int16 samples.
func Int16(sampleRate, channels int, values ...int16) *Samples {
	data := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(v))
	}
	return NewSamples(stream.Int16, sampleRate, channels, data)
}

// Counter returns a mono Int16 stream of n sample-groups where group i holds
// the value i. n must not exceed math.MaxInt16+1.
func Counter(n int) *Samples {
	values := make([]int16, n)
	for i := range values {
		values[i] = int16(i)
	}
	return Int16(8000, 1, values...)
}

// Float32 returns a stream producing the given Float32 samples.
func Float32(sampleRate, channels int, values ...float32) *Samples {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	return NewSamples(stream.Float32, sampleRate, channels, data)
}

// FailAt makes the Read that would start at sample-group pos return err.
func (s *Samples) FailAt(pos int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAt, s.failErr = pos, err
}

// PanicAt makes the Read that would start at sample-group pos panic.
func (s *Samples) PanicAt(pos int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panicAt = pos
}

// FailSeek makes every following Seek return err. A nil err clears it.
func (s *Samples) FailSeek(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekErr = err
}

// Reads returns how many times Read was called.
func (s *Samples) Reads() int64 { return s.reads.Load() }

// Seeks returns how many times Seek succeeded.
func (s *Samples) Seeks() int64 { return s.seeks.Load() }

// Closes returns how many times Close was called.
func (s *Samples) Closes() int64 { return s.closes.Load() }

func (s *Samples) Format() stream.SampleFormat { return s.format }
func (s *Samples) SampleRate() int             { return s.sampleRate }
func (s *Samples) Channels() int               { return s.channels }
func (s *Samples) CanSeek() bool               { return !s.NoSeek }

func (s *Samples) groupSize() int { return s.format.Size() * s.channels }

func (s *Samples) Position() (int64, bool) {
	if s.HidePosition {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos, true
}

func (s *Samples) Length() (int64, bool) {
	if s.HideLength {
		return 0, false
	}
	return int64(len(s.data) / s.groupSize()), true
}

func (s *Samples) Seek(pos int64) error {
	if err := stream.CheckSeek(s.CanSeek(), pos); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seekErr != nil {
		return s.seekErr
	}
	s.pos = min(pos, int64(len(s.data)/s.groupSize()))
	s.seeks.Add(1)
	return nil
}

func (s *Samples) Read(p []byte) (int, error) {
	s.reads.Add(1)
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}

	gs := s.groupSize()
	want, err := stream.CheckSampleBuffer(p, gs)
	if err != nil {
		return 0, err
	}
	if s.MaxGroups > 0 {
		want = min(want, s.MaxGroups*gs)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos == s.panicAt {
		panic("streamtest: injected panic")
	}
	if s.pos == s.failAt {
		return 0, s.failErr
	}

	off := int(s.pos) * gs
	if off >= len(s.data) {
		return 0, io.EOF
	}
	n := copy(p[:want], s.data[off:])
	s.pos += int64(n / gs)
	return n, nil
}

func (s *Samples) Close() error {
	s.closes.Add(1)
	return nil
}

// DecodeInt16 splits little-endian Int16 bytes into values.
func DecodeInt16(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return out
}

// DecodeFloat32 splits little-endian Float32 bytes into values.
func DecodeFloat32(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out
}

// ReadAll drains s with reads of bufGroups sample-groups and returns the
// bytes produced before io.EOF.
func ReadAll(s stream.SampleStream, bufGroups int) ([]byte, error) {
	buf := make([]byte, bufGroups*stream.GroupSize(s))
	var out []byte
	for {
		n, err := s.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
