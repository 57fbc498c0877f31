package main

import "sync"

// PendingOpen holds the file path waiting for the first window to be shown.
// It keeps a single value; a later Set replaces an unconsumed one.
type PendingOpen struct {
	mu   sync.Mutex
	path string
	set  bool
}

// Set stores path, replacing any previous value.
func (p *PendingOpen) Set(path string) {
	p.mu.Lock()
	p.path = path
	p.set = true
	p.mu.Unlock()
}

// Take returns the stored path and clears the slot.
func (p *PendingOpen) Take() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	path, ok := p.path, p.set
	p.path, p.set = "", false
	return path, ok
}

// HasValue reports whether a path is waiting, without consuming it.
func (p *PendingOpen) HasValue() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.set
}
