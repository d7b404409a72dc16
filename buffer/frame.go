// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ik5/avstream/stream"
)

type frameSlot struct {
	data  []byte
	index int64
}

// FrameStream is a stream.FrameStream that decodes frames ahead on a
// background goroutine, one frame per slot.
type FrameStream struct {
	src     stream.FrameStream
	ring    *ring[frameSlot]
	log     *slog.Logger
	metrics *metrics
	next    int64 // index of the next produced frame, owned by the producer

	// guarded by ring.mu
	pos    int64
	hasPos bool
	length int64
	hasLen bool
}

var _ stream.FrameStream = (*FrameStream)(nil)

// NewFrameStream starts buffering src. WithSlotSize is ignored.
func NewFrameStream(src stream.FrameStream, opts ...Option) (*FrameStream, error) {
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
	if src.FrameDataSize() <= 0 {
		return nil, fmt.Errorf("%w: frame data size %d", stream.ErrArgument, src.FrameDataSize())
	}

	name := cfg.nameFor("frame")
	slots := make([]frameSlot, cfg.capacity)
	for i := range slots {
		slots[i].data = make([]byte, src.FrameDataSize())
	}

	log := cfg.logger.With("stream", name, "kind", "frame")
	f := &FrameStream{
		src:     src,
		log:     log,
		metrics: newMetrics(cfg.registerer, "frame", name),
	}
	f.pos, f.hasPos = src.Position()
	f.length, f.hasLen = src.Length()
	f.next = f.pos
	f.ring = newRing(slots, f.fill, log, f.metrics)

	log.Debug("buffered frame stream created",
		"format", src.Format(),
		"width", src.FrameWidth(),
		"height", src.FrameHeight(),
		"rate", src.FrameRate(),
		"capacity", cfg.capacity,
		"seekable", src.CanSeek())

	f.ring.start()
	return f, nil
}

func (f *FrameStream) fill(slot *frameSlot) error {
	if err := f.src.ReadFrame(slot.data); err != nil {
		return err
	}
	slot.index = f.next
	f.next++
	return nil
}

func (f *FrameStream) Format() stream.FrameFormat { return f.src.Format() }
func (f *FrameStream) FrameRate() stream.Rational { return f.src.FrameRate() }
func (f *FrameStream) FrameWidth() int            { return f.src.FrameWidth() }
func (f *FrameStream) FrameHeight() int           { return f.src.FrameHeight() }
func (f *FrameStream) FrameStride() int           { return f.src.FrameStride() }
func (f *FrameStream) FrameDataSize() int         { return f.src.FrameDataSize() }
func (f *FrameStream) CanSeek() bool              { return f.src.CanSeek() }

func (f *FrameStream) Position() (int64, bool) {
	f.ring.mu.Lock()
	defer f.ring.mu.Unlock()
	return f.pos, f.hasPos
}

func (f *FrameStream) Length() (int64, bool) {
	f.ring.mu.Lock()
	defer f.ring.mu.Unlock()
	return f.length, f.hasLen
}

// Buffered returns the number of filled slots and the ring capacity.
func (f *FrameStream) Buffered() (filled, capacity int) {
	return f.ring.stats()
}

// ReadFrame copies the next buffered frame into p.
func (f *FrameStream) ReadFrame(p []byte) error {
	_, err := f.ReadTimedFrame(p)
	return err
}

// ReadTimedFrame copies the next buffered frame into p and returns its
// presentation time, derived from the frame index and the frame rate.
func (f *FrameStream) ReadTimedFrame(p []byte) (time.Duration, error) {
	f.ring.readMu.Lock()
	defer f.ring.readMu.Unlock()

	if f.ring.isClosed() {
		return 0, stream.ErrClosed
	}
	if err := stream.CheckFrameBuffer(p, f); err != nil {
		return 0, err
	}

	slot, err := f.ring.next(true)
	if slot == nil {
		return 0, err
	}
	copy(p, slot.data)
	index := slot.index
	f.ring.release()

	f.ring.mu.Lock()
	f.pos = index + 1
	f.ring.mu.Unlock()

	return f.src.FrameRate().FrameTime(index), nil
}

// Seek discards the buffered frames and restarts production at frame pos.
// A failed source seek leaves the stream reporting that error from
// ReadFrame until a later Seek succeeds.
func (f *FrameStream) Seek(pos int64) error {
	f.ring.readMu.Lock()
	defer f.ring.readMu.Unlock()

	if f.ring.isClosed() {
		return stream.ErrClosed
	}
	if err := stream.CheckSeek(f.src.CanSeek(), pos); err != nil {
		return err
	}

	f.ring.halt()
	f.metrics.seeks.Inc()

	if err := f.src.Seek(pos); err != nil {
		err = fmt.Errorf("seek to frame %d: %w", pos, err)
		f.log.Warn("buffer seek failed", "position", pos, "error", err)
		f.ring.fail(err)
		return err
	}

	actual, ok := f.src.Position()
	if !ok {
		actual = pos
	}
	length, hasLen := f.src.Length()

	f.next = actual
	f.ring.mu.Lock()
	f.pos, f.hasPos = actual, true
	f.length, f.hasLen = length, hasLen
	f.ring.mu.Unlock()

	f.log.Debug("buffer seek", "position", actual)
	f.ring.start()
	return nil
}

// Close stops the producer, releases the slots and closes the source.
func (f *FrameStream) Close() error {
	if !f.ring.markClosed() {
		return nil
	}
	f.ring.readMu.Lock()
	defer f.ring.readMu.Unlock()

	f.ring.shutdown()
	f.log.Debug("buffered frame stream closed")
	return f.src.Close()
}
