// Package prom implements edxdk.Statter on Prometheus metrics.
package prom

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "edxdk"

// Statter creates a metric the first time a name is used. Statsd style names
// ("tracking.inserted") become Prometheus names ("edxdk_tracking_inserted_total")
// and tags are joined into a single "tags" label.
type Statter struct {
	reg *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewStatter returns a Statter registering its metrics, along with the Go
// runtime collectors, in a fresh registry.
func NewStatter() *Statter {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	return &Statter{
		reg:        reg,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Registry returns the registry holding the metrics.
func (s *Statter) Registry() *prometheus.Registry { return s.reg }

// Count adds value to the counter name.
func (s *Statter) Count(name string, value int64, rate float64, tags ...string) {
	if value < 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	full := metricName(name) + "_total"
	c, ok := s.counters[full]
	if !ok {
		c = prometheus.NewCounterVec(prometheus.CounterOpts{Name: full, Help: "Count of " + name}, []string{"tags"})
		s.reg.MustRegister(c)
		s.counters[full] = c
	}
	c.WithLabelValues(tagLabel(tags)).Add(float64(value))
}

// Gauge sets the gauge name.
func (s *Statter) Gauge(name string, value float64, rate float64, tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	full := metricName(name)
	g, ok := s.gauges[full]
	if !ok {
		g = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: full, Help: "Value of " + name}, []string{"tags"})
		s.reg.MustRegister(g)
		s.gauges[full] = g
	}
	g.WithLabelValues(tagLabel(tags)).Set(value)
}

// Histogram observes value in the histogram name.
func (s *Statter) Histogram(name string, value float64, rate float64, tags ...string) {
	s.observe(metricName(name), name, value, tags)
}

// Set does nothing; Prometheus has no set metric.
func (s *Statter) Set(name string, value string, rate float64, tags ...string) {}

// Timing observes value, in seconds, in the histogram name.
func (s *Statter) Timing(name string, value time.Duration, rate float64, tags ...string) {
	s.observe(metricName(name)+"_seconds", name, value.Seconds(), tags)
}

func (s *Statter) observe(full, name string, value float64, tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histograms[full]
	if !ok {
		h = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    full,
			Help:    "Distribution of " + name,
			Buckets: prometheus.DefBuckets,
		}, []string{"tags"})
		s.reg.MustRegister(h)
		s.histograms[full] = h
	}
	h.WithLabelValues(tagLabel(tags)).Observe(value)
}

// Handler serves the metrics in the Prometheus exposition format.
func (s *Statter) Handler() http.Handler {
	return promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})
}

// Serve exposes the metrics on addr under /metrics until the returned server
// is closed.
func (s *Statter) Serve(addr string) (*http.Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()
	select {
	case err := <-errs:
		return nil, errors.Wrapf(err, "serving metrics on %s", addr)
	case <-time.After(50 * time.Millisecond):
		return srv, nil
	}
}

func metricName(name string) string {
	var b strings.Builder
	b.WriteString(namespace)
	b.WriteByte('_')
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func tagLabel(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
