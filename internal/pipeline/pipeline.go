// Package pipeline implements an ordered chain of named processing stages
// for a single connection. Inbound passes walk the chain front to back,
// outbound passes back to front, so one stage list describes both
// directions the way a server's channel pipeline does.
package pipeline

import (
	"fmt"
	"sync"

	"github.com/HaHaWTH/packetevents/internal/buffer"
)

// NotFound is returned by IndexOf for absent stage names.
const NotFound = -1

// InboundHandler processes bytes flowing from the client toward the server.
//
// The traversal owns the reference on in; the handler must not release it.
// The returned buffer carries one reference owned by the traversal. A nil
// return consumes the pass (nothing is forwarded).
type InboundHandler interface {
	HandleInbound(ctx *Context, in *buffer.Buffer) (*buffer.Buffer, error)
}

// OutboundHandler processes bytes flowing from the server toward the
// client, under the same ownership contract as InboundHandler.
type OutboundHandler interface {
	HandleOutbound(ctx *Context, in *buffer.Buffer) (*buffer.Buffer, error)
}

type entry struct {
	name    string
	handler any
}

// Pipeline 是单连接的有序命名阶段链
// 阶段列表可在遍历过程中被修改（压缩纠正会重排阶段）
type Pipeline struct {
	mu      sync.RWMutex
	alloc   *buffer.Allocator
	entries []entry
}

func New(alloc *buffer.Allocator) *Pipeline {
	return &Pipeline{alloc: alloc}
}

// Context is handed to stages so they can reach the allocator and the
// pipeline they are installed in.
type Context struct {
	p *Pipeline
}

func (c *Context) Alloc() *buffer.Allocator { return c.p.alloc }
func (c *Context) Pipeline() *Pipeline      { return c.p }

// Names returns the stage names in current order.
func (p *Pipeline) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, len(p.entries))
	for i, e := range p.entries {
		names[i] = e.name
	}
	return names
}

// IndexOf returns the position of a named stage, or NotFound.
func (p *Pipeline) IndexOf(name string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.indexOf(name)
}

func (p *Pipeline) indexOf(name string) int {
	for i, e := range p.entries {
		if e.name == name {
			return i
		}
	}
	return NotFound
}

func (p *Pipeline) AddFirst(name string, h any) error {
	return p.insert(0, name, h)
}

func (p *Pipeline) AddLast(name string, h any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.insertLocked(len(p.entries), name, h)
}

// AddBefore inserts a stage before the named anchor. A missing anchor is
// an error: interception depends on exact pipeline structure, so the
// caller treats this as fatal at attach time.
func (p *Pipeline) AddBefore(anchor, name string, h any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexOf(anchor)
	if i == NotFound {
		return fmt.Errorf("pipeline: %w: %q", ErrStageNotFound, anchor)
	}
	return p.insertLocked(i, name, h)
}

func (p *Pipeline) AddAfter(anchor, name string, h any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexOf(anchor)
	if i == NotFound {
		return fmt.Errorf("pipeline: %w: %q", ErrStageNotFound, anchor)
	}
	return p.insertLocked(i+1, name, h)
}

func (p *Pipeline) insert(at int, name string, h any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.insertLocked(at, name, h)
}

func (p *Pipeline) insertLocked(at int, name string, h any) error {
	if p.indexOf(name) != NotFound {
		return fmt.Errorf("pipeline: %w: %q", ErrDuplicateStage, name)
	}
	switch h.(type) {
	case InboundHandler, OutboundHandler:
	default:
		return fmt.Errorf("pipeline: %w: %q", ErrNotAHandler, name)
	}
	p.entries = append(p.entries, entry{})
	copy(p.entries[at+1:], p.entries[at:])
	p.entries[at] = entry{name: name, handler: h}
	return nil
}

// Remove detaches a stage and returns its handler so the caller can
// reinstall it elsewhere.
func (p *Pipeline) Remove(name string) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexOf(name)
	if i == NotFound {
		return nil, fmt.Errorf("pipeline: %w: %q", ErrStageNotFound, name)
	}
	h := p.entries[i].handler
	p.entries = append(p.entries[:i], p.entries[i+1:]...)
	return h, nil
}

// FireInbound pushes one frame through the inbound stages in order and
// returns the transformed buffer, or nil if a stage consumed the pass.
// The caller's reference on in is consumed; the returned buffer carries
// one reference owned by the caller.
//
// The successor of each stage is resolved against the live stage order
// right before the stage runs. A stage that repositions itself further
// down the chain is therefore visited again within the same pass, which
// is exactly what the compression correction relies on.
func (p *Pipeline) FireInbound(in *buffer.Buffer) (*buffer.Buffer, error) {
	return p.fire(in, false)
}

// FireOutbound pushes one frame through the outbound stages in reverse
// stage order, under the same contract as FireInbound.
func (p *Pipeline) FireOutbound(in *buffer.Buffer) (*buffer.Buffer, error) {
	return p.fire(in, true)
}

func (p *Pipeline) fire(in *buffer.Buffer, outbound bool) (*buffer.Buffer, error) {
	ctx := &Context{p: p}
	cur := in
	name, h := p.next("", outbound)
	for h != nil {
		// Resolve the successor from the live order before the stage runs,
		// so a stage that repositions itself further down the chain is still
		// followed by its old neighbor now, and visited again afterwards.
		nextName, nextH := p.next(name, outbound)
		out, err := p.invoke(ctx, h, cur, outbound)
		cur.Release()
		if err != nil {
			return nil, err
		}
		if out == nil {
			return nil, nil
		}
		cur = out
		name, h = nextName, nextH
	}
	return cur, nil
}

func (p *Pipeline) invoke(ctx *Context, h any, cur *buffer.Buffer, outbound bool) (*buffer.Buffer, error) {
	if outbound {
		return h.(OutboundHandler).HandleOutbound(ctx, cur)
	}
	return h.(InboundHandler).HandleInbound(ctx, cur)
}

// next returns the first handler of the wanted direction after the named
// stage ("" means start of the traversal) in the live stage order.
func (p *Pipeline) next(after string, outbound bool) (string, any) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if outbound {
		start := len(p.entries) - 1
		if after != "" {
			i := p.indexOf(after)
			if i == NotFound {
				return "", nil
			}
			start = i - 1
		}
		for i := start; i >= 0; i-- {
			if _, ok := p.entries[i].handler.(OutboundHandler); ok {
				return p.entries[i].name, p.entries[i].handler
			}
		}
		return "", nil
	}
	start := 0
	if after != "" {
		i := p.indexOf(after)
		if i == NotFound {
			return "", nil
		}
		start = i + 1
	}
	for i := start; i < len(p.entries); i++ {
		if _, ok := p.entries[i].handler.(InboundHandler); ok {
			return p.entries[i].name, p.entries[i].handler
		}
	}
	return "", nil
}
