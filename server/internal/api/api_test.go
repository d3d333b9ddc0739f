package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hookstream/hookstream/pkg/types"
	"github.com/hookstream/hookstream/server/internal/api"
	"github.com/hookstream/hookstream/server/internal/store"
)

// --- test helpers -----------------------------------------------------------

func newStore(msgs ...types.Message) *store.Store {
	st := store.New(time.Hour, 100)
	for _, m := range msgs {
		st.Put(m)
	}
	return st
}

func msg(stream, topic string) types.Message {
	return types.Message{
		Stream:      stream,
		Topic:       topic,
		Content:     "Splunk alert from saved search\n[sudo](Missing results_link)",
		Sender:      "splunk-bot",
		Integration: "splunk",
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

// --- tests ------------------------------------------------------------------

func TestHealth_Empty(t *testing.T) {
	h := api.New(newStore(), nil)
	rr := get(t, h, "/api/v1/health")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
	var resp api.HealthResponse
	decode(t, rr, &resp)
	if resp.Status != "ok" || resp.MessageCount != 0 || resp.StreamCount != 0 {
		t.Errorf("health: got %+v", resp)
	}
}

func TestHealth_Counts(t *testing.T) {
	h := api.New(newStore(msg("splunk", "a"), msg("splunk", "b"), msg("ops", "c")), func() int { return 2 })
	var resp api.HealthResponse
	decode(t, get(t, h, "/api/v1/health"), &resp)

	if resp.MessageCount != 3 {
		t.Errorf("MessageCount: got %d, want 3", resp.MessageCount)
	}
	if resp.StreamCount != 2 {
		t.Errorf("StreamCount: got %d, want 2", resp.StreamCount)
	}
	if resp.WSClients != 2 {
		t.Errorf("WSClients: got %d, want 2", resp.WSClients)
	}
}

func TestStreams_List(t *testing.T) {
	h := api.New(newStore(msg("splunk", "sudo"), msg("ops", "disk")), nil)
	rr := get(t, h, "/api/v1/streams")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var got []store.StreamSummary
	decode(t, rr, &got)
	if len(got) != 2 || got[0].Name != "ops" || got[1].Name != "splunk" {
		t.Errorf("streams: got %+v", got)
	}
}

func TestStreams_TrailingSlashLists(t *testing.T) {
	h := api.New(newStore(msg("splunk", "sudo")), nil)
	var got []store.StreamSummary
	decode(t, get(t, h, "/api/v1/streams/"), &got)
	if len(got) != 1 {
		t.Errorf("streams: got %d, want 1", len(got))
	}
}

func TestStreamMessages_All(t *testing.T) {
	h := api.New(newStore(msg("splunk", "sudo"), msg("splunk", "disk"), msg("ops", "x")), nil)
	rr := get(t, h, "/api/v1/streams/splunk/messages")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp api.MessagesResponse
	decode(t, rr, &resp)
	if resp.Stream != "splunk" {
		t.Errorf("Stream: got %q, want splunk", resp.Stream)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("Messages: got %d, want 2", len(resp.Messages))
	}
	if resp.Messages[0].Topic != "sudo" || resp.Messages[0].Sender != "splunk-bot" {
		t.Errorf("Messages[0]: got %+v", resp.Messages[0])
	}
}

func TestStreamMessages_TopicFilter(t *testing.T) {
	h := api.New(newStore(msg("splunk", "sudo"), msg("splunk", "disk")), nil)
	var resp api.MessagesResponse
	decode(t, get(t, h, "/api/v1/streams/splunk/messages?topic=disk"), &resp)
	if len(resp.Messages) != 1 || resp.Messages[0].Topic != "disk" {
		t.Errorf("Messages: got %+v", resp.Messages)
	}
	if resp.Topic != "disk" {
		t.Errorf("Topic: got %q, want disk", resp.Topic)
	}
}

func TestStreamMessages_UnknownStream404(t *testing.T) {
	h := api.New(newStore(msg("splunk", "sudo")), nil)
	rr := get(t, h, "/api/v1/streams/nope/messages")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
	var e map[string]string
	decode(t, rr, &e)
	if e["result"] != "error" || e["msg"] == "" {
		t.Errorf("error body: got %v", e)
	}
}

func TestStreamMessages_BadPath404(t *testing.T) {
	h := api.New(newStore(msg("splunk", "sudo")), nil)
	for _, p := range []string{"/api/v1/streams/splunk", "/api/v1/streams/a/b/messages"} {
		if rr := get(t, h, p); rr.Code != http.StatusNotFound {
			t.Errorf("%s: got %d, want 404", p, rr.Code)
		}
	}
}

func TestSnapshot(t *testing.T) {
	h := api.New(newStore(msg("splunk", "sudo"), msg("ops", "disk")), nil)
	rr := get(t, h, "/api/v1/snapshot")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp api.SnapshotResponse
	decode(t, rr, &resp)
	if len(resp.Messages) != 2 || len(resp.Streams) != 2 {
		t.Errorf("snapshot: got %d messages, %d streams, want 2, 2", len(resp.Messages), len(resp.Streams))
	}
	if _, err := time.Parse(time.RFC3339, resp.GeneratedAt); err != nil {
		t.Errorf("generated_at: %v", err)
	}
}

func TestSnapshot_EmptyStoreHasEmptyArrays(t *testing.T) {
	h := api.New(newStore(), nil)
	rr := get(t, h, "/api/v1/snapshot")
	var raw map[string]json.RawMessage
	decode(t, rr, &raw)
	if string(raw["messages"]) != "[]" || string(raw["streams"]) != "[]" {
		t.Errorf("empty snapshot: messages=%s streams=%s, want [] []", raw["messages"], raw["streams"])
	}
}

func TestNonGET_405(t *testing.T) {
	h := api.New(newStore(), nil)
	for _, p := range []string{"/api/v1/health", "/api/v1/streams", "/api/v1/streams/splunk/messages", "/api/v1/snapshot"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, p, nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: got %d, want 405", p, rr.Code)
		}
	}
}
