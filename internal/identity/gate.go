package identity

import (
	"sync"
	"time"
)

// State is one observation of who is signed in. A nil Identity means
// signed out. Resolved distinguishes "still checking" from "checked and
// anonymous", so consumers can hold rendering decisions until the first
// real observation lands.
type State struct {
	Identity  *Identity `json:"identity,omitempty"`
	Resolved  bool      `json:"resolved"`
	CheckedAt time.Time `json:"checked_at"`
}

// Role returns the effective role for the observation.
func (s State) Role() Role {
	if s.Identity == nil {
		return RoleAnonymous
	}
	return s.Identity.Role
}

// Gate broadcasts identity changes to subscribers and decides access.
// Every Subscribe returns an unsubscribe that MUST be called, or the
// subscriber channel leaks.
type Gate struct {
	mu   sync.Mutex
	subs map[int]chan State
	next int
	last State
}

// NewGate starts with an unresolved state.
func NewGate() *Gate {
	return &Gate{subs: map[int]chan State{}}
}

// Subscribe registers for identity updates. The current state is replayed
// immediately, then every Publish is delivered in order. Slow subscribers
// drop intermediate states rather than block publishers.
func (g *Gate) Subscribe() (<-chan State, func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.next
	g.next++
	ch := make(chan State, 8)
	g.subs[id] = ch
	ch <- g.last

	unsubscribe := func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if sub, ok := g.subs[id]; ok {
			delete(g.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// Publish records the new state and fans it out.
func (g *Gate) Publish(identity *Identity) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.last = State{Identity: identity, Resolved: true, CheckedAt: time.Now().UTC()}
	for _, ch := range g.subs {
		select {
		case ch <- g.last:
		default:
		}
	}
}

// Current returns the latest observation.
func (g *Gate) Current() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Decision is the outcome of a guarded access check.
type Decision struct {
	Allowed bool `json:"allowed"`
	// RedirectTo points anonymous callers at sign-in and denied callers
	// at the standard landing view; Destination preserves where an
	// anonymous caller was headed so sign-in can return them there.
	RedirectTo  string `json:"redirect_to,omitempty"`
	Destination string `json:"destination,omitempty"`
}

// Decide checks identity against the required role. Anonymous callers are
// redirected to sign-in with the destination preserved; authenticated
// callers that lack the role are denied and sent back to the standard
// landing view.
func Decide(identity *Identity, required Role, destination string) Decision {
	role := RoleAnonymous
	if identity != nil {
		role = identity.Role
	}
	if role.Allows(required) {
		return Decision{Allowed: true}
	}
	if role == RoleAnonymous {
		return Decision{RedirectTo: "/signin", Destination: destination}
	}
	return Decision{RedirectTo: "/"}
}
