package counter

import (
	"fmt"
	"strings"
)

// unnamedLabel is displayed for the counter of an engine configured without
// direction keys
const unnamedLabel = "count"

// Counter is the value of a single named counter
type Counter struct {
	Key   string
	Value int
}

// Label returns the display name of the counter
func (c Counter) Label() string {
	if c.Key == "" {
		return unnamedLabel
	}

	return c.Key
}

// Snapshot holds every counter value after a frame, in configuration order
type Snapshot struct {
	// Frame is the 1-based number of the Update call that produced the
	// snapshot
	Frame  uint64
	Counts []Counter
}

// Get returns the value of the counter with the given key
func (s Snapshot) Get(key string) (int, bool) {
	for _, c := range s.Counts {
		if c.Key == key {
			return c.Value, true
		}
	}

	return 0, false
}

// Map returns the counters keyed by label
func (s Snapshot) Map() map[string]int {
	m := make(map[string]int, len(s.Counts))

	for _, c := range s.Counts {
		m[c.Label()] = c.Value
	}

	return m
}

// String formats the snapshot as "label=value" pairs
func (s Snapshot) String() string {
	parts := make([]string, 0, len(s.Counts))

	for _, c := range s.Counts {
		parts = append(parts, fmt.Sprintf("%s=%d", c.Label(), c.Value))
	}

	return strings.Join(parts, " ")
}

// Notifier receives the counter snapshot of every frame in which at least
// one counter changed.  It is called at most once per frame, synchronously
// from Update.
type Notifier interface {
	Notify(Snapshot)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(Snapshot)

// Notify calls f(s)
func (f NotifierFunc) Notify(s Snapshot) {
	f(s)
}
