// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "avstream"

type metrics struct {
	filled         prometheus.Gauge
	underruns      prometheus.Counter
	seeks          prometheus.Counter
	producerErrors prometheus.Counter

	// reported is this stream's share of filled. Guarded by the ring mutex.
	reported int
	release  func()
}

type seriesKey struct {
	vec        *prometheus.GaugeVec
	kind, name string
}

// gaugeRefs counts the open streams writing each filled_slots series.
var gaugeRefs = struct {
	sync.Mutex
	n map[seriesKey]int
}{n: make(map[seriesKey]int)}

func newMetrics(reg prometheus.Registerer, kind, name string) *metrics {
	filled := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "buffer",
		Name:      "filled_slots",
		Help:      "Number of ring slots holding data not yet read",
	}, []string{"kind", "stream"}))
	underruns := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "buffer",
		Name:      "underruns_total",
		Help:      "Reads that found the ring empty and had to wait for the producer",
	}, []string{"kind", "stream"}))
	seeks := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "buffer",
		Name:      "seeks_total",
		Help:      "Seeks forwarded to the source",
	}, []string{"kind", "stream"}))
	producerErrors := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "buffer",
		Name:      "producer_errors_total",
		Help:      "Source errors and panics caught by the producer",
	}, []string{"kind", "stream"}))

	key := seriesKey{vec: filled, kind: kind, name: name}
	gaugeRefs.Lock()
	gaugeRefs.n[key]++
	gauge := filled.WithLabelValues(kind, name)
	gaugeRefs.Unlock()

	m := &metrics{
		filled:         gauge,
		underruns:      underruns.WithLabelValues(kind, name),
		seeks:          seeks.WithLabelValues(kind, name),
		producerErrors: producerErrors.WithLabelValues(kind, name),
	}
	var once sync.Once
	m.release = func() {
		once.Do(func() {
			m.setFilled(0)
			gaugeRefs.Lock()
			defer gaugeRefs.Unlock()
			if gaugeRefs.n[key]--; gaugeRefs.n[key] > 0 {
				return
			}
			delete(gaugeRefs.n, key)
			filled.DeleteLabelValues(kind, name)
		})
	}
	return m
}

// setFilled moves the shared gauge by the change in this stream's fill level.
func (m *metrics) setFilled(n int) {
	if d := n - m.reported; d != 0 {
		m.filled.Add(float64(d))
		m.reported = n
	}
}

// register adds c to reg and returns the collector that ends up registered,
// which is the existing one when an identical collector is already there.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}
