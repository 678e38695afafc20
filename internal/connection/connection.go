// Package connection holds the per-connection state the interception
// stages hang off of: identity, protocol phase, and the one-shot flags
// driving compression correction.
package connection

import (
	"sync"

	"github.com/google/uuid"

	"github.com/HaHaWTH/packetevents/internal/protocol"
)

// CompressionPhase is how compression ordering resolved for a connection.
// Unresolved and Absent can recur (the host may enable compression at any
// point during login); AlreadyCorrect and Corrected are latched and
// terminal for the connection's lifetime.
type CompressionPhase int

const (
	CompressionUnresolved CompressionPhase = iota
	CompressionAbsent
	CompressionAlreadyCorrect
	CompressionCorrected
)

func (p CompressionPhase) String() string {
	switch p {
	case CompressionAbsent:
		return "absent"
	case CompressionAlreadyCorrect:
		return "already-correct"
	case CompressionCorrected:
		return "corrected"
	}
	return "unresolved"
}

// Connection 表示一个被拦截的连接
// 标志位只会被该连接的收发循环串行访问，互斥锁只为状态读取方服务
type Connection struct {
	id         uuid.UUID
	remoteAddr string
	state      *protocol.ConnState

	mu sync.Mutex
	// handledCompression latches once the compression stage has been seen
	// and its ordering resolved. At most one corrective action per
	// connection hangs off this flag.
	handledCompression bool
	// skipTransform suppresses exactly one interception pass, the re-entry
	// the corrective recompression produces.
	skipTransform bool
	phase         CompressionPhase
}

func New(remoteAddr string) *Connection {
	return &Connection{
		id:         uuid.New(),
		remoteAddr: remoteAddr,
		state:      protocol.NewConnState(),
	}
}

func (c *Connection) ID() uuid.UUID              { return c.id }
func (c *Connection) RemoteAddr() string         { return c.remoteAddr }
func (c *Connection) State() *protocol.ConnState { return c.state }

// CompressionHandled reports whether ordering has been resolved.
func (c *Connection) CompressionHandled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handledCompression
}

// MarkCompressionHandled sets the exactly-once latch.
func (c *Connection) MarkCompressionHandled() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handledCompression = true
}

func (c *Connection) CompressionPhase() CompressionPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Connection) SetCompressionPhase(p CompressionPhase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = p
}

// SetSkipTransform arms the one-shot pass-through flag.
func (c *Connection) SetSkipTransform() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipTransform = true
}

// TakeSkipTransform consumes the flag: it reports whether the flag was
// set and always leaves it cleared.
func (c *Connection) TakeSkipTransform() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	was := c.skipTransform
	c.skipTransform = false
	return was
}
