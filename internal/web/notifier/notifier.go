// Package notifier tells connected dashboards that the source spreadsheet was
// reloaded. Each broadcast carries the ID of the new snapshot.
package notifier

import "sync"

// Notifier delivers snapshot IDs to subscribed SSE streams. A listener only
// ever holds the most recent ID; older pending ones are replaced.
type Notifier struct {
	mu        sync.Mutex
	listeners map[chan string]struct{}
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{listeners: make(map[chan string]struct{})}
}

// Subscribe returns a channel that receives the snapshot ID of each reload.
// Callers must Unsubscribe when done.
func (n *Notifier) Subscribe() chan string {
	ch := make(chan string, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a listener channel. Repeated calls are no-ops.
func (n *Notifier) Unsubscribe(ch chan string) {
	n.mu.Lock()
	if _, ok := n.listeners[ch]; ok {
		delete(n.listeners, ch)
		close(ch)
	}
	n.mu.Unlock()
}

// Broadcast sends snapshotID to every listener without blocking.
func (n *Notifier) Broadcast(snapshotID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.listeners {
		// Broadcast is the only sender and holds the lock, so after the drain
		// the buffered send cannot block.
		select {
		case <-ch:
		default:
		}
		ch <- snapshotID
	}
}

// Count returns the number of listeners.
func (n *Notifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
