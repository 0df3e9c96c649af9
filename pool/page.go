// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pool

// Page bundles a Pool with one of its page handles, giving callers outside
// this package (msg.Msg, chiefly) a self-contained value to carry around
// instead of a (Pool, PageRef) pair threaded through every call.
type Page struct {
	pool *Pool
	ref  PageRef
}

// Acquire takes a fresh page from p and wraps it as a Page. The bool result
// is false (Page is the zero value) if p is exhausted.
func Acquire(p *Pool) (Page, bool) {
	ref, ok := p.Acquire()
	if !ok {
		return Page{}, false
	}
	return Page{pool: p, ref: ref}, true
}

// AcquireErr is Acquire with an error return in place of the bool, for
// callers that already propagate iox-style non-blocking errors (ErrExhausted
// aliases iox.ErrWouldBlock) rather than checking a second return value.
func AcquireErr(p *Pool) (Page, error) {
	pg, ok := Acquire(p)
	if !ok {
		return Page{}, ErrExhausted
	}
	return pg, nil
}

// Valid reports whether pg refers to an acquired page (as opposed to the
// zero value).
func (pg Page) Valid() bool { return pg.pool != nil }

// Bytes returns the page's backing storage.
func (pg Page) Bytes() []byte { return pg.pool.Bytes(pg.ref) }

// Share increments the page's reference count and returns a second Page
// value referring to the same backing storage -- the "cheap copy" of §4.2.
// Both values must be independently Released.
func (pg Page) Share() Page {
	pg.pool.Share(pg.ref)
	return pg
}

// Release decrements the page's reference count, returning it to the pool
// when it reaches zero.
func (pg Page) Release() {
	pg.pool.Release(pg.ref)
}

// RefCount returns the page's current reference count.
func (pg Page) RefCount() int32 { return pg.pool.RefCount(pg.ref) }

// Pool returns the owning Pool.
func (pg Page) Pool() *Pool { return pg.pool }
