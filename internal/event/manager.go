package event

import (
	"log/slog"
	"sync"
)

type Listener func(*PacketEvent)

// Manager 是监听器注册表，按方向分组，按注册顺序同步调用
type Manager struct {
	mu        sync.RWMutex
	listeners map[Direction][]Listener
}

func NewManager() *Manager {
	return &Manager{
		listeners: make(map[Direction][]Listener),
	}
}

func (m *Manager) Register(d Direction, l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners[d] = append(m.listeners[d], l)
}

// Dispatch invokes every listener registered for the event's direction,
// in registration order, on the caller's goroutine. post runs after the
// listeners and before Dispatch returns, even if a listener panicked; the
// interceptor uses it to restore the buffer cursor.
func (m *Manager) Dispatch(evt *PacketEvent, post func()) {
	m.mu.RLock()
	listeners := make([]Listener, len(m.listeners[evt.Dir]))
	copy(listeners, m.listeners[evt.Dir])
	m.mu.RUnlock()

	if post != nil {
		defer post()
	}
	for _, l := range listeners {
		invoke(l, evt)
	}
}

func invoke(l Listener, evt *PacketEvent) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Packet listener panicked", "direction", evt.Dir.String(), "panic", r)
		}
	}()
	l(evt)
}
