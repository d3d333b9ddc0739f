package metrics

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Registry is a concurrency-safe set of counters and gauges backed by a
// private prometheus.Registry, so tests never share global state.
type Registry struct {
	reg *prometheus.Registry

	mu       sync.Mutex
	counters map[string]*CounterVec
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		reg:      prometheus.NewRegistry(),
		counters: make(map[string]*CounterVec),
	}
}

// CounterVec is a handle to one labelled counter family.
type CounterVec struct {
	name   string
	labels []string
	vec    *prometheus.CounterVec
}

// Counter registers (or returns the existing) counter family name with the
// given label names. Registering the same name with different labels panics.
func (r *Registry) Counter(name, help string, labels ...string) *CounterVec {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		if strings.Join(c.labels, ",") != strings.Join(labels, ",") {
			panic(fmt.Sprintf("metrics: counter %q re-registered with labels %v, have %v", name, labels, c.labels))
		}
		return c
	}
	c := &CounterVec{
		name:   name,
		labels: append([]string(nil), labels...),
		vec:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels),
	}
	r.reg.MustRegister(c.vec)
	r.counters[name] = c
	return c
}

// Inc adds one to the series identified by values, which must match the
// family's label names in number.
func (c *CounterVec) Inc(values ...string) {
	c.Add(1, values...)
}

// Add adds delta to the series identified by values. Negative deltas and
// label count mismatches are logged and dropped instead of panicking.
func (c *CounterVec) Add(delta float64, values ...string) {
	if delta < 0 {
		return
	}
	if len(values) != len(c.labels) {
		slog.Error("metrics: label count mismatch", "metric", c.name, "want", len(c.labels), "got", len(values))
		return
	}
	c.vec.WithLabelValues(values...).Add(delta)
}

// Value returns the current value of one counter series, or 0 if it has
// never been incremented. It reads through Gather so unknown series are
// not created as a side effect.
func (r *Registry) Value(name string, values ...string) float64 {
	r.mu.Lock()
	c, ok := r.counters[name]
	r.mu.Unlock()
	if !ok || len(values) != len(c.labels) {
		return 0
	}
	want := make(map[string]string, len(values))
	for i, l := range c.labels {
		want[l] = values[i]
	}

	for _, mf := range r.Gather() {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matchLabels(m, want) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(m *dto.Metric, want map[string]string) bool {
	if len(m.GetLabel()) != len(want) {
		return false
	}
	for _, p := range m.GetLabel() {
		if v, ok := want[p.GetName()]; !ok || v != p.GetValue() {
			return false
		}
	}
	return true
}

// GaugeFunc registers a gauge whose value is read from fn at gather time.
// Registering a name again replaces the previous callback.
func (r *Registry) GaugeFunc(name, help string, fn func() float64) {
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn)
	if err := r.reg.Register(g); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			panic(fmt.Sprintf("metrics: register gauge %q: %v", name, err))
		}
		r.reg.Unregister(are.ExistingCollector)
		r.reg.MustRegister(g)
	}
}

// Gather returns every family that has at least one series, sorted by
// name with series sorted by label values.
func (r *Registry) Gather() []*dto.MetricFamily {
	mfs, err := r.reg.Gather()
	if err != nil {
		slog.Error("metrics: gather", "err", err)
	}
	return mfs
}

// Handler serves GET /metrics in the exposition format negotiated from the
// Accept header.
func (r *Registry) Handler() http.Handler {
	h := promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError})
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.ServeHTTP(w, req)
	})
}
