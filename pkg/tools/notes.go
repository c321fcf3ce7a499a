package tools

import (
	"context"
	"sync"
)

// Notes collects side messages produced by capabilities during one run
// (capability listings, transcripts, and similar). One note per tool; a
// second write from the same tool replaces the first.
type Notes struct {
	mu    sync.Mutex
	order []string
	msgs  map[string]string
}

func NewNotes() *Notes {
	return &Notes{msgs: make(map[string]string)}
}

// Add records a message from a tool. Safe on a nil receiver so capabilities
// can write unconditionally.
func (n *Notes) Add(tool, message string) {
	if n == nil {
		return
	}
	key := Normalize(tool)
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.msgs[key]; !ok {
		n.order = append(n.order, key)
	}
	n.msgs[key] = message
}

// Note is one (tool, message) pair in first-write order.
type Note struct {
	Tool    string
	Message string
}

// All returns the collected notes in first-write order.
func (n *Notes) All() []Note {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Note, 0, len(n.order))
	for _, key := range n.order {
		out = append(out, Note{Tool: key, Message: n.msgs[key]})
	}
	return out
}

// Get returns the note left by one tool, if any.
func (n *Notes) Get(tool string) (string, bool) {
	if n == nil {
		return "", false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	msg, ok := n.msgs[Normalize(tool)]
	return msg, ok
}

type notesKey struct{}

// WithNotes attaches a note store to the context for one run.
func WithNotes(ctx context.Context, n *Notes) context.Context {
	return context.WithValue(ctx, notesKey{}, n)
}

// NotesFrom extracts the note store, or nil when none is attached.
func NotesFrom(ctx context.Context) *Notes {
	n, _ := ctx.Value(notesKey{}).(*Notes)
	return n
}
