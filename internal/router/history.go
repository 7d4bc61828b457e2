package router

import "sync"

// History records visited paths.
type History interface {
	Push(path string)
	// Previous returns the entry before the current one.
	Previous() (string, bool)
	// Pop drops the current entry.
	Pop()
	Current() string
	Entries() []string
}

// MemoryHistory is an in-process History.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []string
}

// NewMemoryHistory creates an empty history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

func (h *MemoryHistory) Push(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, path)
}

func (h *MemoryHistory) Previous() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) < 2 {
		return "", false
	}
	return h.entries[len(h.entries)-2], true
}

func (h *MemoryHistory) Pop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) > 0 {
		h.entries = h.entries[:len(h.entries)-1]
	}
}

func (h *MemoryHistory) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

func (h *MemoryHistory) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}
