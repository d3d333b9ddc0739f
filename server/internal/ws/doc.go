// Package ws implements the WebSocket live feed of hookstream-server.
//
// Hub manages a set of connected clients. Each webhook message stored by
// the receiver is handed to Hub.Publish and pushed to every client.
//
// New(store) creates a Hub.
// Hub.Run(ctx) broadcasts published messages; blocks until ctx is
// cancelled, then closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the current
// snapshot immediately on connect, then streams new messages. ?stream=
// restricts both to one stream.
//
// Events sent to clients:
//
//	{"event": "snapshot", "data": { /* same schema as GET /api/v1/snapshot */ }}
//	{"event": "message",  "data": { /* one types.Message */ }}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/stream by the server.
package ws
