// Package types defines shared Go types used across the server packages.
// Message is the canonical in-memory representation of a chat message,
// independent of the JSON shapes served by the API and WebSocket hub.
package types
