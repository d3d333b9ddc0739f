// Package metrics keeps process counters and serves them in the Prometheus
// exposition format.
//
// Registry wraps a private client_golang registry: labelled counters whose
// handles tolerate bad label counts, gauge callbacks, and Value for reading
// a single series back in tests. Handler is promhttp restricted to GET.
package metrics
