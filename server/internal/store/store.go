package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hookstream/hookstream/pkg/types"
)

// StreamSummary describes the live contents of one stream.
type StreamSummary struct {
	Name          string    `json:"name"`
	MessageCount  int       `json:"message_count"`
	Topics        []string  `json:"topics"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// Store is a thread-safe in-memory message store, keyed by stream.
// Messages within a stream are kept in arrival order. A background
// goroutine (Run) periodically evicts messages older than the retention.
type Store struct {
	mu           sync.RWMutex
	streams      map[string][]types.Message
	nextID       uint64
	retention    time.Duration
	maxPerStream int
	now          func() time.Time // injectable for deterministic tests
}

// New creates a Store that keeps messages for retention and at most
// maxPerStream messages per stream.
func New(retention time.Duration, maxPerStream int) *Store {
	return &Store{
		streams:      make(map[string][]types.Message),
		retention:    retention,
		maxPerStream: maxPerStream,
		now:          time.Now,
	}
}

// Retention returns the configured message retention.
func (s *Store) Retention() time.Duration {
	return s.retention
}

// Put appends msg to its stream, assigning ID and ReceivedAt, and returns
// the stored copy. When the stream is at capacity the oldest message is dropped.
func (s *Store) Put(msg types.Message) types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	msg.ID = s.nextID
	msg.ReceivedAt = s.now().UTC()

	msgs := append(s.streams[msg.Stream], msg)
	if over := len(msgs) - s.maxPerStream; s.maxPerStream > 0 && over > 0 {
		msgs = append([]types.Message(nil), msgs[over:]...)
	}
	s.streams[msg.Stream] = msgs
	return msg
}

// List returns the live messages of stream, oldest first. A non-empty topic
// restricts the result to that topic. The boolean reports whether the
// stream has any live message at all.
func (s *Store) List(stream, topic string) ([]types.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	live := s.live(s.streams[stream])
	if len(live) == 0 {
		return nil, false
	}
	out := make([]types.Message, 0, len(live))
	for _, m := range live {
		if topic == "" || m.Topic == topic {
			out = append(out, m)
		}
	}
	return out, true
}

// All returns every live message across all streams, ordered by ID.
func (s *Store) All() []types.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Message, 0)
	for _, msgs := range s.streams {
		out = append(out, s.live(msgs)...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Streams returns a summary of every stream with live messages, sorted by name.
func (s *Store) Streams() []StreamSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]StreamSummary, 0, len(s.streams))
	for name, msgs := range s.streams {
		live := s.live(msgs)
		if len(live) == 0 {
			continue
		}
		seen := make(map[string]struct{})
		topics := make([]string, 0)
		for _, m := range live {
			if _, ok := seen[m.Topic]; !ok {
				seen[m.Topic] = struct{}{}
				topics = append(topics, m.Topic)
			}
		}
		sort.Strings(topics)
		out = append(out, StreamSummary{
			Name:          name,
			MessageCount:  len(live),
			Topics:        topics,
			LastMessageAt: live[len(live)-1].ReceivedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the total number of messages currently held, including stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, msgs := range s.streams {
		n += len(msgs)
	}
	return n
}

// Evict removes messages whose ReceivedAt is older than now minus retention,
// dropping streams left empty. It returns the number of messages removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.retention)
	removed := 0
	for name, msgs := range s.streams {
		i := firstAfter(msgs, cutoff)
		if i == 0 {
			continue
		}
		removed += i
		if i == len(msgs) {
			delete(s.streams, name)
			continue
		}
		s.streams[name] = append([]types.Message(nil), msgs[i:]...)
	}
	return removed
}

// Run starts the background eviction loop. It ticks at half the retention
// (minimum 1 second). Run blocks until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.retention / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted expired messages", "count", n)
			}
		}
	}
}

// live returns the suffix of msgs received within the retention window.
// Callers must hold s.mu.
func (s *Store) live(msgs []types.Message) []types.Message {
	return msgs[firstAfter(msgs, s.now().Add(-s.retention)):]
}

// firstAfter returns the index of the first message received after cutoff.
// msgs is in arrival order, so ReceivedAt is non-decreasing.
func firstAfter(msgs []types.Message, cutoff time.Time) int {
	return sort.Search(len(msgs), func(i int) bool {
		return msgs[i].ReceivedAt.After(cutoff)
	})
}
