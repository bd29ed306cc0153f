package history

import "strings"

// Retention caps for the two recent-item lists.
const (
	MaxQueries = 20
	MaxGlobs   = 15
)

// List is a bounded most-recent-first list with exact-string deduplication.
// Adding an existing entry moves it to the front instead of duplicating it.
type List struct {
	max   int
	items []string
}

// NewList creates a list retaining at most max entries.
func NewList(max int) *List {
	if max <= 0 {
		max = 1
	}
	return &List{max: max}
}

// Add pushes item to the front. Whitespace-only items are ignored; an item
// already present moves to the front; the oldest entry falls off when the
// list is full.
func (l *List) Add(item string) {
	item = strings.TrimSpace(item)
	if item == "" {
		return
	}

	for i, existing := range l.items {
		if existing == item {
			copy(l.items[1:i+1], l.items[:i])
			l.items[0] = item
			return
		}
	}

	l.items = append(l.items, "")
	copy(l.items[1:], l.items)
	l.items[0] = item
	if len(l.items) > l.max {
		l.items = l.items[:l.max]
	}
}

// Items returns a copy, most recent first.
func (l *List) Items() []string {
	return append([]string(nil), l.items...)
}

// Replace reloads the list from a persisted snapshot, applying the same
// trimming and dedup rules entry by entry.
func (l *List) Replace(items []string) {
	l.items = l.items[:0]
	for i := len(items) - 1; i >= 0; i-- {
		l.Add(items[i])
	}
}

// Clear empties the list.
func (l *List) Clear() {
	l.items = nil
}

// Len returns the number of retained entries.
func (l *List) Len() int {
	return len(l.items)
}
