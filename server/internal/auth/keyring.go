package auth

import (
	"crypto/subtle"
	"sync"
)

// Keyring is a concurrency-safe set of API keys, each bound to a sender name.
type Keyring struct {
	mu   sync.RWMutex
	keys map[string]string
}

// NewKeyring creates a Keyring from a key → sender name map.
func NewKeyring(keys map[string]string) *Keyring {
	k := &Keyring{}
	k.Replace(keys)
	return k
}

// Replace swaps the whole key set. The map is copied.
func (k *Keyring) Replace(keys map[string]string) {
	cp := make(map[string]string, len(keys))
	for key, name := range keys {
		cp[key] = name
	}
	k.mu.Lock()
	k.keys = cp
	k.mu.Unlock()
}

// Len returns the number of keys.
func (k *Keyring) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys)
}

// Lookup returns the sender bound to key. Every stored key is compared in
// constant time so the match position does not leak through timing.
func (k *Keyring) Lookup(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	k.mu.RLock()
	defer k.mu.RUnlock()

	var sender string
	found := false
	for stored, name := range k.keys {
		if subtle.ConstantTimeCompare([]byte(stored), []byte(key)) == 1 {
			sender = name
			found = true
		}
	}
	return sender, found
}
