// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pool

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/devstack/internal/cacheline"
	"code.hybscloud.com/lfq"
	"code.hybscloud.com/spin"
)

// PageRef is an opaque handle to one page in a Pool. The zero value refers
// to the pool's first page; use NoRef to test for "no page".
type PageRef int32

// NoRef is the sentinel PageRef returned alongside a failed Acquire.
const NoRef PageRef = -1

// Pool is a fixed-capacity array of Count pages of Size bytes each, backed
// by a single contiguous allocation made once at construction. Every page
// carries its own reference count; a page returns to the free list only
// when its count decrements to zero.
//
// Pool is safe for concurrent use. Acquire/Release/Share never allocate
// and never block; Acquire reports exhaustion as (NoRef, false).
type Pool struct {
	_ noCopy

	pageSize int
	count    int
	storage  []byte
	refs     []atomic.Int32
	free     *lfq.MPMC[int32]

	usedPages    atomic.Int32
	usedPagesMax atomic.Int32
}

// New creates a Pool of count pages, each pageSize bytes. Both are
// compile-time-style constants for a given deployment, chosen by the
// caller at process or stack-builder start-up; New is the only place pool
// storage is allocated.
func New(count, pageSize int) *Pool {
	if count < 1 {
		panic("pool: count must be >= 1")
	}
	if pageSize < 1 {
		panic("pool: pageSize must be >= 1")
	}

	p := &Pool{
		pageSize: pageSize,
		count:    count,
		storage:  cacheLineAlignedMem(count * pageSize),
		refs:     make([]atomic.Int32, count),
		free:     lfq.NewMPMC[int32](max(2, count)),
	}
	for i := 0; i < count; i++ {
		idx := int32(i)
		if err := p.free.Enqueue(&idx); err != nil {
			panic("pool: free list capacity smaller than page count")
		}
	}
	return p
}

// PageSize returns B, the fixed size in bytes of every page.
func (p *Pool) PageSize() int { return p.pageSize }

// Count returns P, the total number of pages the pool manages.
func (p *Pool) Count() int { return p.count }

// Acquire takes one free page, sets its reference count to 1, and returns
// its handle. Returns (NoRef, false) if the free list is empty -- this is
// the only failure mode and it is never a wait.
func (p *Pool) Acquire() (PageRef, bool) {
	idx, err := p.free.Dequeue()
	if err != nil {
		return NoRef, false
	}
	p.refs[idx].Store(1)
	p.bumpUsed(1)
	return PageRef(idx), true
}

// Share increments ref's reference count, implementing the "cheap copy"
// page-sharing of §4.2: both the original and the new owner now hold an
// independent release obligation against the same backing bytes.
func (p *Pool) Share(ref PageRef) {
	p.refs[ref].Add(1)
}

// Release decrements ref's reference count. When it reaches zero, the page
// is returned to the free list and becomes eligible for a future Acquire.
func (p *Pool) Release(ref PageRef) {
	if p.refs[ref].Add(-1) == 0 {
		p.bumpUsed(-1)
		idx := int32(ref)
		sw := spin.Wait{}
		for p.free.Enqueue(&idx) != nil {
			// The free list was sized to Count and every index is enqueued
			// exactly once per Acquire/Release pair; a persistent failure here
			// indicates transient contention with concurrent Dequeues, not
			// pool exhaustion.
			sw.Once()
		}
	}
}

// RefCount returns ref's current reference count. Intended for tests and
// diagnostics, not for steady-state control flow.
func (p *Pool) RefCount(ref PageRef) int32 {
	return p.refs[ref].Load()
}

// Bytes returns the page's backing storage. The slice is valid for as long
// as the caller holds a reference obtained via Acquire/Share and not yet
// given up via Release.
func (p *Pool) Bytes(ref PageRef) []byte {
	off := int(ref) * p.pageSize
	return p.storage[off : off+p.pageSize : off+p.pageSize]
}

// UsedPages returns the current count of outstanding (non-free) pages.
func (p *Pool) UsedPages() int { return int(p.usedPages.Load()) }

// UsedPagesMax returns the high-water mark of UsedPages since the last
// ClearUsedPagesMax (or since construction).
func (p *Pool) UsedPagesMax() int { return int(p.usedPagesMax.Load()) }

// ClearUsedPagesMax resets the high-water mark to the current UsedPages.
func (p *Pool) ClearUsedPagesMax() {
	p.usedPagesMax.Store(p.usedPages.Load())
}

// Stats is a point-in-time snapshot of pool utilization.
type Stats struct {
	PageSize     int
	PageCount    int
	UsedPages    int
	UsedPagesMax int
	FreePages    int
}

// Stats returns a consistent-enough snapshot for operational visibility. In
// a highly concurrent pool the three counters may be read at slightly
// different instants; this is diagnostic data, not a control-flow input.
func (p *Pool) Stats() Stats {
	used := p.UsedPages()
	return Stats{
		PageSize:     p.pageSize,
		PageCount:    p.count,
		UsedPages:    used,
		UsedPagesMax: p.UsedPagesMax(),
		FreePages:    p.count - used,
	}
}

func (p *Pool) bumpUsed(delta int32) {
	used := p.usedPages.Add(delta)
	if delta <= 0 {
		return
	}
	for {
		cur := p.usedPagesMax.Load()
		if used <= cur {
			return
		}
		if p.usedPagesMax.CompareAndSwap(cur, used) {
			return
		}
	}
}

// cacheLineAlignedMem returns a zeroed byte slice of size bytes whose first
// byte starts on a cache-line boundary, so the first page of a Pool never
// shares a cache line with an unrelated prior allocation.
func cacheLineAlignedMem(size int) []byte {
	align := uintptr(cacheline.CacheLineSize)
	buf := make([]byte, uintptr(size)+align-1)
	base := unsafe.Pointer(unsafe.SliceData(buf))
	offset := ((uintptr(base)+align-1)/align)*align - uintptr(base)
	return unsafe.Slice((*byte)(unsafe.Add(base, offset)), size)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// noCopy is embedded to make `go vet` flag accidental copies of Pool, which
// would duplicate the free-list queue and the refs slice header while
// still aliasing the same backing storage.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
