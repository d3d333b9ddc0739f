// Package api implements the read-only HTTP REST API of hookstream-server.
//
// New(store, clients) returns an http.Handler that serves:
//
//	GET /api/v1/health                      status, message/stream counts, WebSocket clients
//	GET /api/v1/streams                     live stream summaries ([]store.StreamSummary)
//	GET /api/v1/streams/{stream}/messages   messages of one stream, ?topic= filters; 404 if unknown
//	GET /api/v1/snapshot                    every live message + stream summaries + generated_at
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for non-GET methods
//   - Read live messages only (expired ones are excluded)
//
// JSON types are defined in types.go. No external HTTP framework is used.
package api
