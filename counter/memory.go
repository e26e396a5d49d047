package counter

import "image"

// sighting is the last known box of an identity and the processed frame it
// was seen on
type sighting struct {
	box  image.Rectangle
	seen uint64
}

// memory maps track identity to its last known position
type memory struct {
	entries map[int]sighting
}

func newMemory() *memory {
	return &memory{entries: make(map[int]sighting)}
}

// evict drops identities that have been absent for more than retain
// processed frames up to and including now.  A retain of zero keeps every
// entry.
func (m *memory) evict(now, retain uint64) int {

	if retain == 0 {
		return 0
	}

	dropped := 0

	for id, s := range m.entries {
		if now-s.seen > retain {
			delete(m.entries, id)
			dropped++
		}
	}

	return dropped
}

// snapshot returns a read only copy of the remembered boxes
func (m *memory) snapshot() map[int]image.Rectangle {

	prev := make(map[int]image.Rectangle, len(m.entries))

	for id, s := range m.entries {
		prev[id] = s.box
	}

	return prev
}

func (m *memory) put(id int, box image.Rectangle, now uint64) {
	m.entries[id] = sighting{box: box, seen: now}
}

func (m *memory) get(id int) (image.Rectangle, bool) {
	s, ok := m.entries[id]
	return s.box, ok
}

func (m *memory) len() int {
	return len(m.entries)
}

func (m *memory) reset() {
	m.entries = make(map[int]sighting)
}
