package namespace

import "github.com/nvandessel/procsim/internal/signal"

// Hook observes variable reads. Hooks run synchronously on the reading
// goroutine and must neither block nor modify the address space.
type Hook interface {
	AfterRead(n *Node, v signal.Value)
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(n *Node, v signal.Value)

// AfterRead calls f.
func (f HookFunc) AfterRead(n *Node, v signal.Value) {
	f(n, v)
}

// AcceptHook registers a hook invoked after every successful read.
func (s *Space) AcceptHook(h Hook) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()

	s.hooks = append(s.hooks, h)
}

func (s *Space) invokeHooks(n *Node, v signal.Value) {
	s.hooksMu.RLock()
	defer s.hooksMu.RUnlock()

	for _, h := range s.hooks {
		h.AfterRead(n, v)
	}
}
