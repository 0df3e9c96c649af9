// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msg

// RefCopy makes m a cheap copy of src: every page src currently holds is
// shared (reference count incremented), and both m and src become
// read-only (§4.2). Any pages m held before the call are released first,
// so RefCopy may be called on a Msg that already holds content -- the
// prior content is discarded the same way Clear discards it.
//
// RefCopy always succeeds; sharing a page only increments an atomic
// counter and cannot be rejected by pool exhaustion.
func (m *Msg) RefCopy(src *Msg) {
	m.releaseAll()
	for i := 0; i < src.pages.Len(); i++ {
		m.pages.PushBack(src.pages.At(i).Share())
	}
	m.head, m.tail = src.head, src.tail
	m.shared = true
	src.shared = true
}
