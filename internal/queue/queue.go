// Package queue implements the source queue: a FIFO of pending (source,
// tree) pairs plus the set of busy object directories that enforces "at
// most one in-flight compile per object directory".
//
// The single supervisor goroutine is the only thing that ever touches a
// Queue, so — unlike a channel-based scheduler that hands work to many
// goroutines — this is a plain, unsynchronized FIFO: no mutex, because
// there is no concurrent access to protect against.
package queue

import (
	"path/filepath"

	"golang.org/x/exp/slices"

	"github.com/gprtools/compiledriver/internal/model"
)

// Entry pairs a Source with the Tree that owns it, since a single compile
// phase can span more than one tree context (e.g. an aggregate project
// pulling in sources from a different tree).
type Entry struct {
	Source *model.Source
	Tree   *model.Tree
}

type entryKey struct {
	tree *model.Tree
	id   model.SourceID
}

// Queue is a FIFO of pending Entries. It is not safe for concurrent use —
// see the package doc.
type Queue struct {
	entries []Entry
	busy    map[string]bool
	seen    map[entryKey]bool
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{
		busy: make(map[string]bool),
		seen: make(map[entryKey]bool),
	}
}

// objectDir returns the object-directory lock key for e: the directory
// containing the source's resolved object path.
func objectDir(e Entry) string {
	return filepath.Dir(e.Source.ObjectPath)
}

// ObjectDir exposes the lock key Extract used for e, so a caller that
// skips compiling an entry outright (the staleness oracle said it's
// up-to-date) can still call MarkFree with the right key.
func ObjectDir(e Entry) string {
	return objectDir(e)
}

// Insert appends e to the back of the queue, unless (Source, Tree) is
// already present — the queue holds each pair at most once per compile
// phase.
func (q *Queue) Insert(e Entry) {
	k := entryKey{e.Tree, e.Source.ID}
	if q.seen[k] {
		return
	}
	q.seen[k] = true
	q.entries = append(q.entries, e)
}

// Extract returns the first entry in queue order whose object directory
// is not currently busy, removes it from the queue, and marks that
// directory busy. It returns (Entry{}, false) if no such entry exists
// (either the queue is empty, or every head is blocked — see
// IsVirtuallyEmpty).
func (q *Queue) Extract() (Entry, bool) {
	for i, e := range q.entries {
		dir := objectDir(e)
		if q.busy[dir] {
			continue
		}
		q.entries = slices.Delete(q.entries, i, i+1)
		q.busy[dir] = true
		return e, true
	}
	return Entry{}, false
}

// MarkFree releases the busy lock on dir, called when a compile targeting
// that object directory completes (success or failure).
func (q *Queue) MarkFree(dir string) {
	delete(q.busy, dir)
}

// IsVirtuallyEmpty reports whether no entry can be extracted right now:
// the queue may be non-empty, but every remaining head is blocked on a
// busy object directory.
func (q *Queue) IsVirtuallyEmpty() bool {
	for _, e := range q.entries {
		if !q.busy[objectDir(e)] {
			return false
		}
	}
	return true
}

// Len returns the number of entries still queued (not yet extracted).
func (q *Queue) Len() int {
	return len(q.entries)
}

// BusyDirs returns a copy of the set of currently busy object directories.
func (q *Queue) BusyDirs() map[string]bool {
	out := make(map[string]bool, len(q.busy))
	for k, v := range q.busy {
		out[k] = v
	}
	return out
}

// InsertDiscovered enqueues every source newly reachable via a
// dependency-parser result, skipping any source already present.
func (q *Queue) InsertDiscovered(tree *model.Tree, sources []*model.Source) {
	for _, s := range sources {
		q.Insert(Entry{Source: s, Tree: tree})
	}
}
