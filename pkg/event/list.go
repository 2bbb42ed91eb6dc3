package event

import "sort"

// Entry is one registered listener and its priority. Entries are owned by
// the bus; hooks receive them read-only.
type Entry struct {
	listener any
	priority int
}

func (e *Entry) Listener() any { return e.listener }
func (e *Entry) Priority() int { return e.priority }

// listenerList holds the entries of one event name. Entries are sorted
// lazily: insertion marks the list dirty and the next read sorts it.
type listenerList struct {
	entries []*Entry
	dirty   bool
}

func (l *listenerList) add(listener any, priority int) {
	l.entries = append(l.entries, &Entry{listener: listener, priority: priority})
	l.dirty = true
}

// remove drops the first entry matching listener and reports whether one
// was found.
func (l *listenerList) remove(listener any) bool {
	i := l.index(listener)
	if i < 0 {
		return false
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return true
}

func (l *listenerList) index(listener any) int {
	for i, e := range l.entries {
		if sameListener(e.listener, listener) {
			return i
		}
	}
	return -1
}

// sorted returns the entries by priority descending, ties in insertion
// order. The slice is owned by the list; callers copy before mutating.
func (l *listenerList) sorted() []*Entry {
	if l.dirty {
		sort.SliceStable(l.entries, func(i, j int) bool {
			return l.entries[i].priority > l.entries[j].priority
		})
		l.dirty = false
	}
	return l.entries
}

// snapshot is a copy of the sorted entries, safe to iterate while
// listeners add or remove others.
func (l *listenerList) snapshot() []*Entry {
	sorted := l.sorted()
	out := make([]*Entry, len(sorted))
	copy(out, sorted)
	return out
}

func (l *listenerList) len() int { return len(l.entries) }
