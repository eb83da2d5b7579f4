package lifecycle

import (
	"sync"
	"time"
)

// Notices holds the single transient message shown to the player. A new
// notice replaces the previous one; each expires after its ttl.
type Notices struct {
	mu        sync.Mutex
	message   string
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewNotices creates an empty notice slot.
func NewNotices(ttl time.Duration) *Notices {
	return &Notices{ttl: ttl, now: time.Now}
}

// Post replaces the current notice.
func (n *Notices) Post(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.message = message
	n.expiresAt = n.now().Add(n.ttl)
}

// Current returns the live notice, if any.
func (n *Notices) Current() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.message == "" {
		return "", false
	}
	if !n.now().Before(n.expiresAt) {
		n.message = ""
		return "", false
	}
	return n.message, true
}
