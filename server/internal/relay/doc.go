// Package relay forwards stored chat messages to outbound webhooks.
//
// Targets come from the `relay.targets` config section. Each has a type
// (slack | teams | http), an environment variable holding its URL, and an
// optional stream filter. Forward delivers asynchronously; failures are
// logged and counted, never reported back to the webhook caller.
package relay
