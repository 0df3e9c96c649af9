// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msg

import "code.hybscloud.com/devstack/pool"

// pageRing is a growable double-ended array of pool.Page, indexed modulo
// its capacity the same way code.hybscloud.com/iobuf's BoundedPool indexes
// its free-list slots. It gives push/pop at either end in O(1) amortized
// and random access to the nth page in O(1), which is what lets Msg offer
// O(1) At() despite being logically a list of pages (§4.2).
//
// pageRing is not safe for concurrent use; a Msg is owned by one layer at
// a time per §3's ownership-transfer rule.
type pageRing struct {
	buf   []pool.Page
	start int
	count int
}

// Len returns the number of pages currently held.
func (r *pageRing) Len() int { return r.count }

// At returns the ith page (0 <= i < Len()).
func (r *pageRing) At(i int) pool.Page {
	return r.buf[(r.start+i)%len(r.buf)]
}

func (r *pageRing) growTo(want int) {
	if want <= len(r.buf) {
		return
	}
	newCap := max(4, len(r.buf)*2)
	for newCap < want {
		newCap *= 2
	}
	nb := make([]pool.Page, newCap)
	for i := 0; i < r.count; i++ {
		nb[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	r.buf = nb
	r.start = 0
}

// PushBack appends a page at the logical end.
func (r *pageRing) PushBack(p pool.Page) {
	r.growTo(r.count + 1)
	r.buf[(r.start+r.count)%len(r.buf)] = p
	r.count++
}

// PushFront prepends a page at the logical start.
func (r *pageRing) PushFront(p pool.Page) {
	r.growTo(r.count + 1)
	r.start = (r.start - 1 + len(r.buf)) % len(r.buf)
	r.buf[r.start] = p
	r.count++
}

// PopBack removes and returns the page at the logical end.
func (r *pageRing) PopBack() pool.Page {
	i := (r.start + r.count - 1) % len(r.buf)
	p := r.buf[i]
	r.buf[i] = pool.Page{}
	r.count--
	return p
}

// PopFront removes and returns the page at the logical start.
func (r *pageRing) PopFront() pool.Page {
	p := r.buf[r.start]
	r.buf[r.start] = pool.Page{}
	r.start = (r.start + 1) % len(r.buf)
	r.count--
	return p
}

// Reset drops all pages without releasing them; callers release first.
func (r *pageRing) Reset() {
	r.buf = nil
	r.start = 0
	r.count = 0
}

// insertAt inserts p at logical index i, shifting later pages back by one.
// Msg's Insert/Erase family does not use it (nor removeAt): those rebuild
// the tail of the message through Get, PopBack, and Put.
func (r *pageRing) insertAt(i int, p pool.Page) {
	r.growTo(r.count + 1)
	for j := r.count; j > i; j-- {
		r.buf[(r.start+j)%len(r.buf)] = r.buf[(r.start+j-1)%len(r.buf)]
	}
	r.buf[(r.start+i)%len(r.buf)] = p
	r.count++
}

// removeAt removes and returns the page at logical index i, shifting later
// pages forward by one.
func (r *pageRing) removeAt(i int) pool.Page {
	p := r.buf[(r.start+i)%len(r.buf)]
	for j := i; j < r.count-1; j++ {
		r.buf[(r.start+j)%len(r.buf)] = r.buf[(r.start+j+1)%len(r.buf)]
	}
	r.buf[(r.start+r.count-1)%len(r.buf)] = pool.Page{}
	r.count--
	return p
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
