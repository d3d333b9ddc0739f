// Package config loads the server configuration from the `server:` section
// of config.yaml.
//
// Config fields:
//   - HTTPPort            port for webhooks, REST API, metrics and WebSocket (default 8080)
//   - LogLevel            debug | info | warn | error (default info)
//   - Auth.Mode           "apikey" or "none"
//   - Auth.Header         header checked when api_key is not in the query (default "x-api-key")
//   - Auth.Keys           sender name + environment variable holding its key
//   - Streams             allowed streams; empty allows any
//   - DefaultStream       stream used when the URL has none (default "splunk")
//   - Store.Retention     how long messages stay in memory (default 24h)
//   - Store.MaxPerStream  per-stream cap (default 1000)
//   - Relay.Targets       outbound slack | teams | http webhooks
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, fn) reloads the file on change and hands the new Config to fn.
package config
