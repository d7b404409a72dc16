// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/avstream/stream"
)

type sampleSlot struct {
	data []byte
	n    int // valid bytes
	off  int // bytes already consumed
}

// SampleStream is a stream.SampleStream that reads its source ahead on a
// background goroutine.
//
// Read, Seek and Close may be called from different goroutines; they are
// serialised internally. Close closes the source.
type SampleStream struct {
	src       stream.SampleStream
	groupSize int
	ring      *ring[sampleSlot]
	log       *slog.Logger
	metrics   *metrics
	pending   error // owned by the producer

	// guarded by ring.mu
	pos    int64
	hasPos bool
	length int64
	hasLen bool
}

var _ stream.SampleStream = (*SampleStream)(nil)

// NewSampleStream starts buffering src. It fails with stream.ErrArgument
// when the options are invalid; no goroutine is started in that case.
func NewSampleStream(src stream.SampleStream, opts ...Option) (*SampleStream, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := src.Format().Validate(); err != nil {
		return nil, err
	}
	if src.Channels() < 1 {
		return nil, fmt.Errorf("%w: %d channels", stream.ErrArgument, src.Channels())
	}

	name := cfg.nameFor("sample")
	gs := stream.GroupSize(src)
	slots := make([]sampleSlot, cfg.capacity)
	for i := range slots {
		slots[i].data = make([]byte, cfg.slotSize*gs)
	}

	log := cfg.logger.With("stream", name, "kind", "sample")
	s := &SampleStream{
		src:       src,
		groupSize: gs,
		log:       log,
		metrics:   newMetrics(cfg.registerer, "sample", name),
	}
	s.pos, s.hasPos = src.Position()
	s.length, s.hasLen = src.Length()
	s.ring = newRing(slots, s.fill, log, s.metrics)

	log.Debug("buffered sample stream created",
		"format", src.Format(),
		"sample_rate", src.SampleRate(),
		"channels", src.Channels(),
		"capacity", cfg.capacity,
		"slot_groups", cfg.slotSize,
		"seekable", src.CanSeek())

	s.ring.start()
	return s, nil
}

// maxEmptyReads bounds how many consecutive empty reads fill tolerates,
// like bufio.Reader.
const maxEmptyReads = 100

// fill runs on the producer goroutine. Data returned together with an error
// is kept and the error is reported by the following call.
func (s *SampleStream) fill(slot *sampleSlot) error {
	if err := s.pending; err != nil {
		s.pending = nil
		return err
	}

	slot.off = 0
	for range maxEmptyReads {
		n, err := s.src.Read(slot.data)
		slot.n = n - n%s.groupSize
		if slot.n > 0 {
			s.pending = err
			return nil
		}
		if err != nil {
			return err
		}
	}
	return io.ErrNoProgress
}

func (s *SampleStream) Format() stream.SampleFormat { return s.src.Format() }
func (s *SampleStream) SampleRate() int             { return s.src.SampleRate() }
func (s *SampleStream) Channels() int               { return s.src.Channels() }
func (s *SampleStream) CanSeek() bool               { return s.src.CanSeek() }

// Position returns the index of the next sample-group Read returns. It is
// known when the source knew its position at construction.
func (s *SampleStream) Position() (int64, bool) {
	s.ring.mu.Lock()
	defer s.ring.mu.Unlock()
	return s.pos, s.hasPos
}

// Length returns the length the source reported at construction or at the
// last seek.
func (s *SampleStream) Length() (int64, bool) {
	s.ring.mu.Lock()
	defer s.ring.mu.Unlock()
	return s.length, s.hasLen
}

// Buffered returns the number of filled slots and the ring capacity.
func (s *SampleStream) Buffered() (filled, capacity int) {
	return s.ring.stats()
}

// Read copies buffered sample-groups into p. It waits for the producer only
// when nothing is buffered, then drains consecutive filled slots until p is
// full or the ring is empty, so a read may be short. At the end of the
// source it returns io.EOF; a source error is returned once the data
// produced before it has been read.
func (s *SampleStream) Read(p []byte) (int, error) {
	s.ring.readMu.Lock()
	defer s.ring.readMu.Unlock()

	if s.ring.isClosed() {
		return 0, stream.ErrClosed
	}
	want, err := stream.CheckSampleBuffer(p, s.groupSize)
	if err != nil {
		return 0, err
	}

	n := 0
	for n < want {
		slot, err := s.ring.next(n == 0)
		if slot == nil {
			if n > 0 {
				break
			}
			return 0, err
		}
		c := copy(p[n:want], slot.data[slot.off:slot.n])
		slot.off += c
		n += c
		if slot.off == slot.n {
			s.ring.release()
		}
	}

	s.ring.mu.Lock()
	s.pos += int64(n / s.groupSize)
	s.ring.mu.Unlock()
	return n, nil
}

// Seek discards the buffered data and restarts production at sample-group
// pos. When the source fails to seek, the ring stays empty and every Read
// returns that error until a later Seek succeeds.
func (s *SampleStream) Seek(pos int64) error {
	s.ring.readMu.Lock()
	defer s.ring.readMu.Unlock()

	if s.ring.isClosed() {
		return stream.ErrClosed
	}
	if err := stream.CheckSeek(s.src.CanSeek(), pos); err != nil {
		return err
	}

	s.ring.halt()
	s.metrics.seeks.Inc()

	if err := s.src.Seek(pos); err != nil {
		err = fmt.Errorf("seek to %d: %w", pos, err)
		s.log.Warn("buffer seek failed", "position", pos, "error", err)
		s.ring.fail(err)
		return err
	}

	actual, ok := s.src.Position()
	if !ok {
		actual = pos
	}
	length, hasLen := s.src.Length()

	s.pending = nil
	s.ring.mu.Lock()
	s.pos, s.hasPos = actual, true
	s.length, s.hasLen = length, hasLen
	s.ring.mu.Unlock()

	s.log.Debug("buffer seek", "position", actual)
	s.ring.start()
	return nil
}

// Close stops the producer, releases the slots and closes the source. A
// Read blocked on an empty ring returns stream.ErrClosed.
func (s *SampleStream) Close() error {
	if !s.ring.markClosed() {
		return nil
	}
	s.ring.readMu.Lock()
	defer s.ring.readMu.Unlock()

	s.ring.shutdown()
	s.log.Debug("buffered sample stream closed")
	return s.src.Close()
}
