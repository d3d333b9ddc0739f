package types

import "time"

// Message is one chat message posted to a stream/topic by an integration.
type Message struct {
	// ID is assigned by the store; it increases monotonically per process.
	ID uint64 `json:"id"`

	Stream  string `json:"stream"`
	Topic   string `json:"topic"`
	Content string `json:"content"`

	// Sender is the name bound to the API key that posted the message.
	Sender string `json:"sender"`

	// Integration names the webhook that produced the message, e.g. "splunk".
	Integration string `json:"integration"`

	ReceivedAt time.Time `json:"received_at"`
}
