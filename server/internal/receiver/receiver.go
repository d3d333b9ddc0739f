package receiver

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/hookstream/hookstream/pkg/types"
	"github.com/hookstream/hookstream/server/internal/auth"
	"github.com/hookstream/hookstream/server/internal/metrics"
	"github.com/hookstream/hookstream/server/internal/splunk"
	"github.com/hookstream/hookstream/server/internal/store"
)

const (
	maxBodySize = 1 << 20 // 1MB

	// Integration is the name recorded on every message this receiver stores.
	Integration = "splunk"

	// MetricRequests counts webhook requests by integration and outcome.
	MetricRequests = "hookstream_webhook_requests_total"
)

// Publisher receives every stored message for live delivery.
type Publisher interface {
	Publish(msg types.Message)
}

// Forwarder receives every stored message for outbound delivery.
type Forwarder interface {
	Forward(msg types.Message)
}

// Receiver is the http.Handler for the Splunk webhook.
type Receiver struct {
	store    *store.Store
	hub      Publisher
	relay    Forwarder
	requests *metrics.CounterVec

	mu            sync.RWMutex
	streams       map[string]struct{}
	defaultStream string
}

// New creates a Receiver that writes accepted alerts to st and fans them
// out to hub and relay. streams restricts the accepted streams; empty
// accepts any.
func New(st *store.Store, hub Publisher, relay Forwarder, reg *metrics.Registry, streams []string, defaultStream string) *Receiver {
	r := &Receiver{
		store:    st,
		hub:      hub,
		relay:    relay,
		requests: reg.Counter(MetricRequests, "Inbound webhook requests by integration and outcome.", "integration", "outcome"),
	}
	r.SetStreams(streams, defaultStream)
	return r
}

// SetStreams replaces the allowed streams and the default stream, e.g.
// after a config reload.
func (r *Receiver) SetStreams(streams []string, defaultStream string) {
	set := make(map[string]struct{}, len(streams))
	for _, s := range streams {
		set[s] = struct{}{}
	}
	r.mu.Lock()
	r.streams = set
	r.defaultStream = defaultStream
	r.mu.Unlock()
}

// resolveStream applies the default stream and checks the allow-list.
func (r *Receiver) resolveStream(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.defaultStream
	}
	if len(r.streams) > 0 {
		if _, ok := r.streams[name]; !ok {
			return name, false
		}
	}
	return name, true
}

func (r *Receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.requests.Inc(Integration, "method_not_allowed")
		jsonError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize+1))
	if err != nil {
		r.requests.Inc(Integration, "read_error")
		jsonError(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if len(body) > maxBodySize {
		r.requests.Inc(Integration, "too_large")
		jsonError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	payload, err := splunk.ParseBody(req.Header.Get("Content-Type"), body)
	if err != nil {
		slog.Warn("receiver: malformed splunk payload", "err", err)
		r.requests.Inc(Integration, "malformed")
		jsonError(w, http.StatusBadRequest, "Malformed JSON")
		return
	}

	query := req.URL.Query()
	stream, ok := r.resolveStream(query.Get("stream"))
	if !ok {
		r.requests.Inc(Integration, "unknown_stream")
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("Stream '%s' does not exist", stream))
		return
	}

	alert := splunk.Format(payload, query.Get("topic"))
	stored := r.store.Put(types.Message{
		Stream:      stream,
		Topic:       alert.Subject,
		Content:     alert.Body,
		Sender:      auth.Sender(req.Context()),
		Integration: Integration,
	})
	r.hub.Publish(stored)
	r.relay.Forward(stored)
	r.requests.Inc(Integration, "ok")

	slog.Info("receiver: splunk alert stored",
		"message_id", stored.ID,
		"stream", stored.Stream,
		"topic", stored.Topic,
		"sender", stored.Sender,
		"sid", payload.SID,
		"app", payload.App,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response{Result: "success", Msg: ""}) //nolint:errcheck
}

type response struct {
	Result string `json:"result"`
	Msg    string `json:"msg"`
}

func jsonError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response{Result: "error", Msg: msg}) //nolint:errcheck
}
