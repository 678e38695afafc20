// Package buffer 提供带引用计数的字节缓冲区
// 所有权规则：每一次 Buffer()/Retain()/Duplicate() 必须对应一次 Release()
package buffer

import (
	"fmt"
	"io"
	"sync"
)

// Allocator hands out reference-counted buffers and keeps an
// acquire/release ledger so ownership balance can be asserted in tests.
type Allocator struct {
	mu       sync.Mutex
	acquired int
	released int
}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// Buffer allocates an empty buffer with one reference.
func (a *Allocator) Buffer() *Buffer {
	a.track(1, 0)
	return &Buffer{
		backing: &backing{alloc: a, refs: 1},
	}
}

// Balance 返回未释放的引用数，泄漏检测用
func (a *Allocator) Balance() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.acquired - a.released
}

func (a *Allocator) track(acquired, released int) {
	a.mu.Lock()
	a.acquired += acquired
	a.released += released
	a.mu.Unlock()
}

// backing is the storage shared by a buffer and its duplicates.
// The reference count lives here so a duplicate keeps the bytes alive.
type backing struct {
	alloc *Allocator
	data  []byte
	refs  int
}

// Buffer is one view over a reference-counted byte sequence. Views created
// with Duplicate share bytes but keep an independent read cursor.
//
// Buffers are not safe for concurrent use; a connection's passes are
// serialized by the host read loop, which is the only writer.
type Buffer struct {
	backing *backing
	reader  int
}

func (b *Buffer) check() {
	if b.backing.refs <= 0 {
		panic("buffer: use after final release")
	}
}

// WriteBytes appends p and returns b for chaining.
func (b *Buffer) WriteBytes(p []byte) *Buffer {
	b.check()
	b.backing.data = append(b.backing.data, p...)
	return b
}

// Bytes returns the readable bytes (from the read cursor to the end).
// The slice shares storage with the buffer.
func (b *Buffer) Bytes() []byte {
	b.check()
	return b.backing.data[b.reader:]
}

func (b *Buffer) ReadableBytes() int {
	b.check()
	return len(b.backing.data) - b.reader
}

func (b *Buffer) ReaderIndex() int {
	b.check()
	return b.reader
}

func (b *Buffer) SetReaderIndex(i int) {
	b.check()
	if i < 0 || i > len(b.backing.data) {
		panic(fmt.Sprintf("buffer: reader index %d out of range [0, %d]", i, len(b.backing.data)))
	}
	b.reader = i
}

// Read implements io.Reader over the readable bytes, advancing the cursor.
func (b *Buffer) Read(p []byte) (int, error) {
	b.check()
	if b.ReadableBytes() == 0 {
		return 0, io.EOF
	}
	n := copy(p, b.backing.data[b.reader:])
	b.reader += n
	return n, nil
}

// Clear drops all content and resets the cursor. Duplicates observe the
// truncation since they share storage.
func (b *Buffer) Clear() *Buffer {
	b.check()
	b.backing.data = b.backing.data[:0]
	b.reader = 0
	return b
}

// Retain adds a reference and returns b.
func (b *Buffer) Retain() *Buffer {
	b.check()
	b.backing.refs++
	b.backing.alloc.track(1, 0)
	return b
}

// Duplicate returns a new view with its own read cursor and a new
// reference on the shared bytes.
func (b *Buffer) Duplicate() *Buffer {
	b.check()
	b.backing.refs++
	b.backing.alloc.track(1, 0)
	return &Buffer{backing: b.backing, reader: b.reader}
}

// Release drops one reference and reports whether it was the last.
func (b *Buffer) Release() bool {
	b.check()
	b.backing.refs--
	b.backing.alloc.track(0, 1)
	if b.backing.refs == 0 {
		b.backing.data = nil
		return true
	}
	return false
}

// Refs 返回当前引用计数
func (b *Buffer) Refs() int {
	return b.backing.refs
}
