package relay

import (
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/hookstream/hookstream/pkg/types"
	"github.com/hookstream/hookstream/server/internal/config"
	"github.com/hookstream/hookstream/server/internal/metrics"
)

// MetricDeliveries counts outbound deliveries by target type and outcome.
const MetricDeliveries = "hookstream_relay_deliveries_total"

// Relay delivers messages to the configured outbound targets.
//
// Relay is safe for concurrent use.
type Relay struct {
	mu      sync.RWMutex
	targets []config.TargetConfig

	client     *http.Client
	deliveries *metrics.CounterVec
	inflight   sync.WaitGroup
}

// New creates a Relay from the relay config. A Relay with no targets is
// valid; Forward becomes a no-op.
func New(cfg config.RelayConfig, reg *metrics.Registry) *Relay {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultRelayTimeout
	}
	r := &Relay{
		client:     &http.Client{Timeout: timeout},
		deliveries: reg.Counter(MetricDeliveries, "Outbound relay deliveries by target type and outcome.", "type", "outcome"),
	}
	r.SetTargets(cfg.Targets)
	return r
}

// SetTargets replaces the target list, e.g. after a config reload.
func (r *Relay) SetTargets(targets []config.TargetConfig) {
	cp := slices.Clone(targets)
	r.mu.Lock()
	r.targets = cp
	r.mu.Unlock()
}

// Forward delivers msg to every target whose stream filter matches, each
// in its own goroutine.
func (r *Relay) Forward(msg types.Message) {
	r.mu.RLock()
	targets := r.targets
	r.mu.RUnlock()

	for _, t := range targets {
		if len(t.Streams) > 0 && !slices.Contains(t.Streams, msg.Stream) {
			continue
		}
		r.inflight.Add(1)
		go func(t config.TargetConfig) {
			defer r.inflight.Done()
			r.deliver(t, msg)
		}(t)
	}
}

// Wait blocks until in-flight deliveries finish or timeout elapses. It
// reports whether everything finished.
func (r *Relay) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
