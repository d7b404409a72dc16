// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultCapacity is the number of slots of a ring.
	DefaultCapacity = 16
	// DefaultSlotSize is the number of sample-groups held by one slot of a
	// SampleStream.
	DefaultSlotSize = 1024
)

type config struct {
	capacity   int
	slotSize   int
	name       string
	logger     *slog.Logger
	registerer prometheus.Registerer
}

func defaultConfig() config {
	return config{
		capacity:   DefaultCapacity,
		slotSize:   DefaultSlotSize,
		logger:     slog.Default(),
		registerer: prometheus.DefaultRegisterer,
	}
}

// streamSeq numbers unnamed streams per kind.
var streamSeq = map[string]*atomic.Int64{
	"sample": new(atomic.Int64),
	"frame":  new(atomic.Int64),
}

// nameFor returns the configured name, or a process-unique one such as
// "sample-3" when none was set.
func (c config) nameFor(kind string) string {
	if c.name != "" {
		return c.name
	}
	return fmt.Sprintf("%s-%d", kind, streamSeq[kind].Add(1))
}

func (c config) validate() error {
	if c.capacity <= 1 {
		return ErrCapacity
	}
	if c.slotSize <= 0 {
		return ErrSlotSize
	}
	return nil
}

// Option configures a buffered stream.
type Option func(*config)

// WithCapacity sets the number of slots. It must be greater than one.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// WithSlotSize sets how many sample-groups one slot holds. Frame streams
// always hold one frame per slot and ignore it.
func WithSlotSize(groups int) Option {
	return func(c *config) { c.slotSize = groups }
}

// WithName labels the metrics and log records of the stream. Streams that
// share a name on one registerer share their series: the filled_slots gauge
// is their sum and stays until the last of them is closed. Unnamed streams
// get a unique name per kind.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRegisterer sets where metrics are registered. A nil registerer
// disables registration; the metrics are still maintained.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(c *config) { c.registerer = r }
}
