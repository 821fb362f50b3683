// Package view selects which part of the site is shown and which overlays
// are open on top of it.
package view

import "sync"

// View is a full-page view.
type View string

const (
	Home    View = "home"
	Recipes View = "recipes"
	Chat    View = "chat"
)

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	switch v {
	case Home, Recipes, Chat:
		return true
	}
	return false
}

// Router holds the current view and the two overlay flags. The chat widget
// is never open while the full-page chat is current.
type Router struct {
	mu         sync.Mutex
	current    View
	admin      bool
	chatWidget bool
}

// New returns a router showing Home with no overlays.
func New() *Router {
	return &Router{current: Home}
}

// Navigate switches to v and reports the view that was current before.
// Entering Chat closes the chat widget. Unknown views are ignored.
func (r *Router) Navigate(v View) (prev View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev = r.current
	if !v.Valid() {
		return prev
	}
	r.current = v
	if v == Chat {
		r.chatWidget = false
	}
	return prev
}

// Current returns the current view.
func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// SetAdmin opens or closes the admin overlay.
func (r *Router) SetAdmin(open bool) {
	r.mu.Lock()
	r.admin = open
	r.mu.Unlock()
}

// Admin reports whether the admin overlay is open.
func (r *Router) Admin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.admin
}

// SetChatWidget opens or closes the floating chat. Opening is ignored while
// the full-page chat is current.
func (r *Router) SetChatWidget(open bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if open && r.current == Chat {
		return
	}
	r.chatWidget = open
}

// ToggleChatWidget flips the floating chat, subject to SetChatWidget's rule.
func (r *Router) ToggleChatWidget() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == Chat {
		return
	}
	r.chatWidget = !r.chatWidget
}

// ChatWidget reports whether the floating chat is open.
func (r *Router) ChatWidget() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chatWidget
}

// Reset returns to Home with every overlay closed.
func (r *Router) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = Home
	r.admin = false
	r.chatWidget = false
}
