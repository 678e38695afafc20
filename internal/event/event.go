// Package event carries intercepted packets to registered listeners.
// Dispatch is synchronous: a pipeline pass does not continue until every
// listener has returned, so listeners may inspect and mutate the buffer
// in place.
package event

import (
	"github.com/HaHaWTH/packetevents/internal/buffer"
	"github.com/HaHaWTH/packetevents/internal/connection"
)

// Direction of an intercepted frame.
type Direction int

const (
	Inbound  Direction = iota // client -> server
	Outbound                  // server -> client
)

func (d Direction) String() string {
	if d == Outbound {
		return "outbound"
	}
	return "inbound"
}

// PacketEvent is one intercepted frame. Buffer is the working copy for
// this pass: listeners may read from it (the interceptor restores the
// cursor afterwards) and mutate its contents. Cancelling the event stops
// the frame from being forwarded; it is a terminal outcome for this pass
// only, not for the connection.
type PacketEvent struct {
	Conn      *connection.Connection
	Dir       Direction
	Buffer    *buffer.Buffer
	cancelled bool
}

func (e *PacketEvent) Cancel() {
	e.cancelled = true
}

func (e *PacketEvent) Cancelled() bool {
	return e.cancelled
}
