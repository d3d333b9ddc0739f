// Package receiver implements the inbound Splunk webhook endpoint,
// POST /api/v1/external/splunk?api_key=&stream=&topic=.
//
// The body is parsed with splunk.ParseBody and rendered with splunk.Format.
// The resulting message is stored, published to the WebSocket hub and
// handed to the outbound relay. Authentication is enforced upstream by
// auth.Middleware, so the receiver reads the sender from the request
// context and only performs payload and stream validation.
//
// Responses follow the chat platform's webhook convention:
//
//	200 {"result":"success","msg":""}
//	4xx {"result":"error","msg":"..."}
package receiver
