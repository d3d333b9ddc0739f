package api

import (
	"github.com/hookstream/hookstream/pkg/types"
	"github.com/hookstream/hookstream/server/internal/store"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status       string `json:"status"`
	MessageCount int    `json:"message_count"`
	StreamCount  int    `json:"stream_count"`
	WSClients    int    `json:"ws_clients"`
}

// MessagesResponse is the payload for GET /api/v1/streams/{stream}/messages.
type MessagesResponse struct {
	Stream   string          `json:"stream"`
	Topic    string          `json:"topic,omitempty"`
	Messages []types.Message `json:"messages"`
}

// SnapshotResponse is the payload for GET /api/v1/snapshot and the data of
// the WebSocket "snapshot" event.
type SnapshotResponse struct {
	Streams     []store.StreamSummary `json:"streams"`
	Messages    []types.Message       `json:"messages"`
	GeneratedAt string                `json:"generated_at"` // RFC3339
}

// errorResponse is the JSON error body, shaped like the webhook responses.
type errorResponse struct {
	Result string `json:"result"`
	Msg    string `json:"msg"`
}
