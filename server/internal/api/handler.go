package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hookstream/hookstream/server/internal/store"
)

// Handler is the HTTP handler for the read-only /api/v1/* endpoints.
// It reads messages from the store and returns JSON responses.
type Handler struct {
	store   *store.Store
	clients func() int
	mux     *http.ServeMux
}

// New creates a Handler wired to the given store and registers all routes.
// clients reports the number of connected WebSocket clients; nil reports 0.
func New(st *store.Store, clients func() int) http.Handler {
	if clients == nil {
		clients = func() int { return 0 }
	}
	h := &Handler{store: st, clients: clients, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/streams", h.listStreams)
	h.mux.HandleFunc("/api/v1/streams/", h.streamMessages) // subtree, extracts {stream}
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		MessageCount: len(h.store.All()),
		StreamCount:  len(h.store.Streams()),
		WSClients:    h.clients(),
	})
}

// listStreams returns GET /api/v1/streams.
func (h *Handler) listStreams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.store.Streams())
}

// streamMessages returns GET /api/v1/streams/{stream}/messages[?topic=].
func (h *Handler) streamMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/streams/")
	if rest == "" {
		h.listStreams(w, r)
		return
	}
	stream, ok := strings.CutSuffix(rest, "/messages")
	if !ok || stream == "" || strings.Contains(stream, "/") {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}

	topic := r.URL.Query().Get("topic")
	msgs, found := h.store.List(stream, topic)
	if !found {
		jsonErr(w, http.StatusNotFound, "stream not found")
		return
	}
	jsonResp(w, http.StatusOK, MessagesResponse{Stream: stream, Topic: topic, Messages: msgs})
}

// snapshot returns GET /api/v1/snapshot: every live message plus stream summaries.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildSnapshot(h.store))
}

// BuildSnapshot collects the live store contents. It is shared with the
// WebSocket hub so both serve the same schema.
func BuildSnapshot(st *store.Store) SnapshotResponse {
	return SnapshotResponse{
		Streams:     st.Streams(),
		Messages:    st.All(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Result: "error", Msg: msg})
}
