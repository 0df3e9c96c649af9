// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msg

import "code.hybscloud.com/devstack/pool"

// outOfRangeSentinel is returned by At for an out-of-range index. Whether
// this is intentional UX or a historical quirk of the system this core is
// modeled on is an open question the spec declines to resolve; this
// implementation preserves the observable contract rather than guessing.
const outOfRangeSentinel byte = 0xCC

// Msg is the zero-copy, deque-like message buffer of §4.2: an ordered list
// of pool-backed pages viewed through a (head, tail) window. The zero
// value is not usable; construct with New.
//
// A Msg is owned by whichever layer currently holds it (§3); it is not
// safe for concurrent use by multiple goroutines without external
// synchronization, matching the protocols-are-single-threaded-per-stack
// model of §5.
type Msg struct {
	p      *pool.Pool
	pages  pageRing
	head   int // offset of first live byte in the first page
	tail   int // offset one past the last live byte in the last page
	shared bool
}

// New returns an empty Msg backed by p. Pages are acquired lazily on the
// first write.
func New(p *pool.Pool) *Msg {
	return &Msg{p: p}
}

// Pool returns the pool.Pool backing m.
func (m *Msg) Pool() *pool.Pool { return m.p }

// Shared reports whether m was made read-only by a RefCopy (either as the
// source or the destination).
func (m *Msg) Shared() bool { return m.shared }

// Size returns the number of live bytes in the window.
func (m *Msg) Size() int {
	if m.pages.Len() == 0 {
		return 0
	}
	B := m.p.PageSize()
	return m.pages.Len()*B - m.head - (B - m.tail)
}

// Empty reports whether Size() == 0.
func (m *Msg) Empty() bool { return m.Size() == 0 }

// PushBack appends v to the end of the message. Returns false if the
// message is shared or the pool is exhausted and a new trailing page was
// needed.
func (m *Msg) PushBack(v byte) bool {
	if m.shared {
		return false
	}
	B := m.p.PageSize()
	if m.pages.Len() == 0 || m.tail == B {
		pg, ok := pool.Acquire(m.p)
		if !ok {
			return false
		}
		m.pages.PushBack(pg)
		m.tail = 0
		if m.pages.Len() == 1 {
			m.head = 0
		}
	}
	last := m.pages.Len() - 1
	m.pages.At(last).Bytes()[m.tail] = v
	m.tail++
	return true
}

// PushFront prepends v to the start of the message. Returns false if the
// message is shared or the pool is exhausted and a new leading page was
// needed.
func (m *Msg) PushFront(v byte) bool {
	if m.shared {
		return false
	}
	B := m.p.PageSize()
	if m.pages.Len() == 0 || m.head == 0 {
		pg, ok := pool.Acquire(m.p)
		if !ok {
			return false
		}
		m.pages.PushFront(pg)
		m.head = B
		if m.pages.Len() == 1 {
			m.tail = B
		}
	}
	m.head--
	m.pages.At(0).Bytes()[m.head] = v
	return true
}

// PopBack removes the last byte, releasing the trailing page if it becomes
// empty. Precondition: m is not empty and not shared; calling on an empty
// message panics (§4.2 names this undefined behavior). Returns false only
// for the shared case, so callers that only risk the shared state can
// check the return value instead of guarding emptiness themselves.
func (m *Msg) PopBack() bool {
	if m.shared {
		return false
	}
	if m.Empty() {
		panic("msg: PopBack on empty message")
	}
	B := m.p.PageSize()
	m.tail--
	if m.pages.Len() == 1 {
		if m.tail == m.head {
			pg := m.pages.PopBack()
			pg.Release()
			m.head, m.tail = 0, 0
		}
		return true
	}
	if m.tail == 0 {
		pg := m.pages.PopBack()
		pg.Release()
		m.tail = B
	}
	return true
}

// PopFront removes the first byte, releasing the leading page if it
// becomes empty. Same preconditions as PopBack.
func (m *Msg) PopFront() bool {
	if m.shared {
		return false
	}
	if m.Empty() {
		panic("msg: PopFront on empty message")
	}
	B := m.p.PageSize()
	m.head++
	if m.pages.Len() == 1 {
		if m.head == m.tail {
			pg := m.pages.PopFront()
			pg.Release()
			m.head, m.tail = 0, 0
		}
		return true
	}
	if m.head == B {
		pg := m.pages.PopFront()
		pg.Release()
		m.head = 0
	}
	return true
}

// At returns the byte at logical index i, or the sentinel 0xCC if i is out
// of range (§4.2, §9 open question: the sentinel is preserved rather than
// guessed at).
func (m *Msg) At(i int) byte {
	if i < 0 || i >= m.Size() {
		return outOfRangeSentinel
	}
	return m.byteAt(i)
}

// Index returns the byte at logical index i without bounds checking,
// mirroring operator[]. The result for an out-of-range i is not defined:
// it may be a stale byte from a page m still holds, or a panic; it is
// never At's sentinel.
func (m *Msg) Index(i int) byte {
	return m.byteAt(i)
}

// SetIndex writes v at logical index i without bounds checking. Returns
// false if m is shared.
func (m *Msg) SetIndex(i int, v byte) bool {
	if m.shared {
		return false
	}
	B := m.p.PageSize()
	abs := m.head + i
	m.pages.At(abs / B).Bytes()[abs%B] = v
	return true
}

// Front returns the first byte. Panics if m is empty.
func (m *Msg) Front() byte {
	if m.Empty() {
		panic("msg: Front on empty message")
	}
	return m.byteAt(0)
}

// Back returns the last byte. Panics if m is empty.
func (m *Msg) Back() byte {
	if m.Empty() {
		panic("msg: Back on empty message")
	}
	return m.byteAt(m.Size() - 1)
}

func (m *Msg) byteAt(i int) byte {
	B := m.p.PageSize()
	abs := m.head + i
	return m.pages.At(abs / B).Bytes()[abs%B]
}

// Resize truncates or zero-pads m to exactly n bytes. Returns false if
// growing and the pool is exhausted partway through, or if m is shared;
// on truncation it always succeeds.
func (m *Msg) Resize(n int) bool {
	if m.shared {
		return false
	}
	for m.Size() > n {
		m.PopBack()
	}
	for m.Size() < n {
		if !m.PushBack(0) {
			return false
		}
	}
	return true
}

// Clear releases every page and restores m to an empty, writable state,
// regardless of whether m was shared -- this is how a cheap-copy holder
// gives up its hold on shared pages (§8: "a.clear() ... does not affect
// the other, except reference counts").
func (m *Msg) Clear() {
	m.releaseAll()
	m.head, m.tail = 0, 0
	m.shared = false
}

func (m *Msg) releaseAll() {
	for m.pages.Len() > 0 {
		m.pages.PopBack().Release()
	}
}

// InsertBytes inserts data starting at logical index i (0 <= i <= Size()),
// shifting existing bytes at or after i backward. O(Size()): the tail is
// materialized, the message truncated to i, then data and the saved tail
// are appended back via Put.
func (m *Msg) InsertBytes(i int, data []byte) bool {
	if m.shared {
		return false
	}
	if i < 0 || i > m.Size() {
		panic("msg: InsertBytes index out of range")
	}
	tailBuf := make([]byte, m.Size()-i)
	m.Get(tailBuf, i)
	for m.Size() > i {
		m.PopBack()
	}
	ok := m.Put(data)
	ok = m.Put(tailBuf) && ok
	return ok
}

// InsertAt inserts the single byte v at logical index i.
func (m *Msg) InsertAt(i int, v byte) bool {
	return m.InsertBytes(i, []byte{v})
}

// InsertN inserts n copies of v at logical index i.
func (m *Msg) InsertN(i, n int, v byte) bool {
	data := make([]byte, n)
	for j := range data {
		data[j] = v
	}
	return m.InsertBytes(i, data)
}

// EraseRange removes bytes in [first, last). O(Size()).
func (m *Msg) EraseRange(first, last int) bool {
	if m.shared {
		return false
	}
	if first < 0 || last > m.Size() || first > last {
		panic("msg: EraseRange out of bounds")
	}
	tailBuf := make([]byte, m.Size()-last)
	m.Get(tailBuf, last)
	for m.Size() > first {
		m.PopBack()
	}
	return m.Put(tailBuf)
}

// EraseAt removes the single byte at logical index i.
func (m *Msg) EraseAt(i int) bool {
	return m.EraseRange(i, i+1)
}

// Append concatenates other's bytes onto the end of m. When m is empty,
// other's pages are shared directly (page-sharing, §4.2); otherwise the
// bytes are copied via Get/Put since m's existing trailing page is not
// page-size aligned to share into.
func (m *Msg) Append(other *Msg) bool {
	if m.shared {
		return false
	}
	if other.Empty() {
		return true
	}
	if m.pages.Len() == 0 {
		for i := 0; i < other.pages.Len(); i++ {
			m.pages.PushBack(other.pages.At(i).Share())
		}
		m.head, m.tail = other.head, other.tail
		return true
	}
	buf := make([]byte, other.Size())
	other.Get(buf, 0)
	return m.Put(buf)
}

// Equal reports whether m and other have identical logical byte content,
// regardless of page layout or sharing.
func (m *Msg) Equal(other *Msg) bool {
	if m.Size() != other.Size() {
		return false
	}
	for i := 0; i < m.Size(); i++ {
		if m.byteAt(i) != other.byteAt(i) {
			return false
		}
	}
	return true
}
