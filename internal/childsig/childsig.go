//go:build !windows

package childsig

import (
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"
)

// Manager owns the application's SIGCHLD subscription and a reference count
// of the guards currently held.
type Manager struct {
	mu      sync.Mutex
	refs    int
	handler chan<- os.Signal
}

// Default is the process-wide manager used by command sources.
var Default = &Manager{}

// Handle registers ch as the application's SIGCHLD handler, replacing a
// previously registered one. Delivery starts immediately unless a guard is
// held, in which case it starts with the last Release.
func (m *Manager) Handle(ch chan<- os.Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handler != nil {
		signal.Stop(m.handler)
	}

	m.handler = ch
	if m.refs == 0 && ch != nil {
		signal.Notify(ch, unix.SIGCHLD)
	}
}

// Unhandle removes the application's handler.
func (m *Manager) Unhandle() {
	m.Handle(nil)
}

// Acquire returns a guard, suspending the application's handler if this is
// the first one.
func (m *Manager) Acquire() *Guard {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.refs == 0 && m.handler != nil {
		signal.Stop(m.handler)
	}
	m.refs++

	return &Guard{m: m}
}

// Refs returns the number of guards currently held.
func (m *Manager) Refs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refs
}

func (m *Manager) release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refs--
	if m.refs == 0 && m.handler != nil {
		signal.Notify(m.handler, unix.SIGCHLD)
	}
}

// Guard is held while a subprocess may terminate. Release may be called more
// than once, only the first call has an effect.
type Guard struct {
	m    *Manager
	once sync.Once
}

// Release gives the guard back to its manager.
func (g *Guard) Release() {
	g.once.Do(g.m.release)
}
