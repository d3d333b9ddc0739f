// Package store keeps recently received chat messages in memory, grouped by
// stream. Messages older than the retention are hidden from reads and
// removed by the background eviction loop.
package store
