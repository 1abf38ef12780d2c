package browser

import "sync"

// domEvents fans a single page listener out to removable subscribers.
type domEvents struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func()
}

func newDOMEvents() *domEvents {
	return &domEvents{handlers: map[int]func(){}}
}

func (e *domEvents) subscribe(fn func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.next
	e.next++
	e.handlers[id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		delete(e.handlers, id)
	}
}

func (e *domEvents) fire() {
	e.mu.Lock()
	handlers := make([]func(), 0, len(e.handlers))
	for _, h := range e.handlers {
		handlers = append(handlers, h)
	}
	e.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}

func (e *domEvents) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.handlers)
}
