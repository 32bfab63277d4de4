package domain

type CurrentSource int

const (
	SourceNone CurrentSource = iota
	SourceQueue
	SourceExternal
)

// Current is the media a room is playing. Index is meaningful only for SourceQueue.
type Current struct {
	Source    CurrentSource
	Index     int
	Reference MediaReference
}

// Queue is a cyclic playlist: advancing past the last entry wraps to the first.
// Entries are never removed.
type Queue struct {
	items   []MediaReference
	current Current
}

func NewQueue() *Queue {
	return &Queue{
		current: Current{Source: SourceNone, Index: -1},
	}
}

func (q Queue) Len() int {
	return len(q.items)
}

func (q Queue) Current() Current {
	return q.current
}

// CurrentIndex returns -1 unless the current media comes from the queue.
func (q Queue) CurrentIndex() int {
	if q.current.Source != SourceQueue {
		return -1
	}
	return q.current.Index
}

func (q Queue) CurrentReference() (MediaReference, bool) {
	if q.current.Source == SourceNone {
		return MediaReference{}, false
	}
	return q.current.Reference, true
}

// Append adds ref to the end and reports whether it became current, which happens only when
// nothing was current before.
func (q *Queue) Append(ref MediaReference) bool {
	q.items = append(q.items, ref)

	if q.current.Source != SourceNone {
		return false
	}

	q.current = Current{Source: SourceQueue, Index: len(q.items) - 1, Reference: ref}
	return true
}

// SetExternal makes ref current without adding it to the queue.
func (q *Queue) SetExternal(ref MediaReference) {
	q.current = Current{Source: SourceExternal, Index: -1, Reference: ref}
}

// Advance moves to the next entry, wrapping to the first. With an empty queue and an external
// current reference it returns that reference unchanged. ok is false when there is nothing to play.
func (q *Queue) Advance() (ref MediaReference, ok bool) {
	return q.step(1)
}

// Retreat is the backward counterpart of Advance.
func (q *Queue) Retreat() (ref MediaReference, ok bool) {
	return q.step(-1)
}

func (q *Queue) step(delta int) (MediaReference, bool) {
	n := len(q.items)
	if n == 0 {
		return q.CurrentReference()
	}

	from := q.CurrentIndex()
	var next int
	switch {
	case from >= 0:
		next = ((from+delta)%n + n) % n
	case delta > 0:
		next = 0
	default:
		next = n - 1
	}

	q.current = Current{Source: SourceQueue, Index: next, Reference: q.items[next]}
	return q.current.Reference, true
}
