package ui

import (
	"html"
	"sync"
)

// Container is the application root that view pages are mounted into.
type Container struct {
	mu      sync.RWMutex
	page    *Page
	errText string
	mounts  int
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{}
}

// Mount replaces the current content with page.
func (c *Container) Mount(page *Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = page
	c.errText = ""
	c.mounts++
}

// ShowError replaces the current content with an inline error message.
func (c *Container) ShowError(message string) {
	page, err := ParsePage("inline-error", `<div class="alert alert-danger" id="app-error">`+html.EscapeString(message)+`</div>`)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		c.page = page
	} else {
		c.page = nil
	}
	c.errText = message
}

// Page returns the mounted page, or nil.
func (c *Container) Page() *Page {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

// Error returns the inline error shown in place of a page, if any.
func (c *Container) Error() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errText
}

// Mounts returns how many pages have been mounted.
func (c *Container) Mounts() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mounts
}

// Render returns the visible text of the current content.
func (c *Container) Render() string {
	page := c.Page()
	if page == nil {
		return ""
	}
	return page.Render()
}
