// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msg

// Iterator is a bidirectional, random-access cursor over a Msg's logical
// byte sequence (§4.2). Go has no operator overloading, so the C++-style
// ++/--/+=/-/subtract operations become Next/Prev/Advance/Sub.
//
// An Iterator is invalidated by any structural mutation of its Msg (push,
// pop, insert, erase, resize, clear, ref copy) performed after the
// iterator was obtained; using it afterward is undefined, matching §4.2.
type Iterator struct {
	m   *Msg
	idx int
}

// Begin returns an iterator positioned at logical index 0.
func (m *Msg) Begin() Iterator { return Iterator{m: m, idx: 0} }

// End returns an iterator positioned one past the last byte.
func (m *Msg) End() Iterator { return Iterator{m: m, idx: m.Size()} }

// Iter returns an iterator positioned at logical index i.
func (m *Msg) Iter(i int) Iterator { return Iterator{m: m, idx: i} }

// Value returns the byte the iterator refers to.
func (it Iterator) Value() byte { return it.m.byteAt(it.idx) }

// Set writes v at the iterator's position. Returns false if the
// underlying Msg is shared.
func (it Iterator) Set(v byte) bool { return it.m.SetIndex(it.idx, v) }

// Index returns the iterator's logical index.
func (it Iterator) Index() int { return it.idx }

// Next advances the iterator by one position (the "++" operation).
func (it *Iterator) Next() { it.idx++ }

// Prev moves the iterator back by one position (the "--" operation).
func (it *Iterator) Prev() { it.idx-- }

// Advance moves the iterator by n positions (n may be negative); this is
// the "+=" / "-=" operation.
func (it *Iterator) Advance(n int) { it.idx += n }

// Sub returns the distance (it.idx - other.idx), the "subtract" operation.
func (it Iterator) Sub(other Iterator) int { return it.idx - other.idx }

// Equal reports whether two iterators refer to the same Msg and position.
func (it Iterator) Equal(other Iterator) bool {
	return it.m == other.m && it.idx == other.idx
}

// Valid reports whether the iterator's position is within [0, Size()] of
// its Msg (End() itself is a valid, non-dereferenceable position).
func (it Iterator) Valid() bool {
	return it.idx >= 0 && it.idx <= it.m.Size()
}
