package store

import "sync"

// SchemeDefault holds the default scheme for the lifetime of the process.
// It is empty until Set is called and is never written to disk.
type SchemeDefault struct {
	mu     sync.RWMutex
	scheme string
}

// Set replaces the default scheme.
func (d *SchemeDefault) Set(scheme string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scheme = scheme
}

// Get returns the default scheme and whether one has been set.
func (d *SchemeDefault) Get() (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.scheme, d.scheme != ""
}
