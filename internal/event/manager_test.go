package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/HaHaWTH/packetevents/internal/connection"
)

func newEvent(d Direction) *PacketEvent {
	return &PacketEvent{
		Conn: connection.New("127.0.0.1:55231"),
		Dir:  d,
	}
}

// TestDispatchOrder 按注册顺序同步调用
func TestDispatchOrder(t *testing.T) {
	m := NewManager()
	var calls []int
	for i := 0; i < 3; i++ {
		i := i
		m.Register(Inbound, func(*PacketEvent) {
			calls = append(calls, i)
		})
	}

	m.Dispatch(newEvent(Inbound), nil)
	assert.Equal(t, []int{0, 1, 2}, calls)
}

// TestDispatchDirectionFilter 只调用同方向的监听器
func TestDispatchDirectionFilter(t *testing.T) {
	m := NewManager()
	var inbound, outbound int
	m.Register(Inbound, func(*PacketEvent) { inbound++ })
	m.Register(Outbound, func(*PacketEvent) { outbound++ })

	m.Dispatch(newEvent(Outbound), nil)
	assert.Equal(t, 0, inbound)
	assert.Equal(t, 1, outbound)
}

// TestDispatchCancel 取消标志对后续监听器可见
func TestDispatchCancel(t *testing.T) {
	m := NewManager()
	m.Register(Inbound, func(e *PacketEvent) { e.Cancel() })
	var sawCancelled bool
	m.Register(Inbound, func(e *PacketEvent) { sawCancelled = e.Cancelled() })

	evt := newEvent(Inbound)
	m.Dispatch(evt, nil)
	assert.True(t, evt.Cancelled())
	assert.True(t, sawCancelled, "后注册的监听器应看到取消标志")
}

// TestDispatchPost post 回调在所有监听器之后、返回之前执行
func TestDispatchPost(t *testing.T) {
	m := NewManager()
	var order []string
	m.Register(Inbound, func(*PacketEvent) { order = append(order, "listener") })

	m.Dispatch(newEvent(Inbound), func() { order = append(order, "post") })
	assert.Equal(t, []string{"listener", "post"}, order)
}

// TestDispatchPanicRecovery 单个监听器崩溃不影响其余监听器和 post
func TestDispatchPanicRecovery(t *testing.T) {
	m := NewManager()
	m.Register(Inbound, func(*PacketEvent) { panic("listener bug") })
	var survived, posted bool
	m.Register(Inbound, func(*PacketEvent) { survived = true })

	assert.NotPanics(t, func() {
		m.Dispatch(newEvent(Inbound), func() { posted = true })
	})
	assert.True(t, survived, "崩溃之后的监听器仍应被调用")
	assert.True(t, posted)
}

func TestDispatchNoListeners(t *testing.T) {
	m := NewManager()
	var posted bool
	m.Dispatch(newEvent(Inbound), func() { posted = true })
	assert.True(t, posted, "没有监听器时 post 仍应执行")
}
