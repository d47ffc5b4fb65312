// Package mailbox provides an unbounded, ordered channel adapter. Pushing never
// blocks, so a slow reader cannot stall the producer.
package mailbox

import "sync"

// Mailbox queues values of type T and delivers them on Out in push order.
type Mailbox[T any] struct {
	mu     sync.Mutex
	queue  []T
	wake   chan struct{}
	out    chan T
	done   chan struct{}
	closer sync.Once
}

// New creates a Mailbox and starts its delivery goroutine. Close must be called
// to stop it.
func New[T any]() *Mailbox[T] {
	m := &Mailbox[T]{
		wake: make(chan struct{}, 1),
		out:  make(chan T),
		done: make(chan struct{}),
	}
	go m.run()
	return m
}

// Push appends v. Values pushed after Close are dropped.
func (m *Mailbox[T]) Push(v T) {
	select {
	case <-m.done:
		return
	default:
	}

	m.mu.Lock()
	m.queue = append(m.queue, v)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Out returns the delivery channel. It is closed after Close.
func (m *Mailbox[T]) Out() <-chan T {
	return m.out
}

// Close stops delivery. Undelivered values are dropped. It is safe to call more than once.
func (m *Mailbox[T]) Close() {
	m.closer.Do(func() {
		close(m.done)
	})
}

func (m *Mailbox[T]) pop() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	if len(m.queue) == 0 {
		return zero, false
	}
	next := m.queue[0]
	m.queue[0] = zero
	m.queue = m.queue[1:]
	return next, true
}

func (m *Mailbox[T]) run() {
	defer close(m.out)
	for {
		select {
		case <-m.wake:
		case <-m.done:
			return
		}
		for {
			next, ok := m.pop()
			if !ok {
				break
			}
			select {
			case m.out <- next:
			case <-m.done:
				return
			}
		}
	}
}
