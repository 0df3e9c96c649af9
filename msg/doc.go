// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package msg implements the zero-copy message buffer of §4.2: an ordered
// list of fixed-size pages borrowed from a pool.Pool plus a (head, tail)
// window, giving deque semantics (push/pop at either end, random access,
// insert/erase in the middle, resize, linearized extraction/injection) over
// page-backed storage with no per-byte heap allocation.
//
// A Msg that has had RefCopy taken against it becomes shared: both sides
// read identical bytes through independent page reference counts, and
// both refuse further mutation until cleared. This is the cheap-copy
// invariant of §4.2 -- sharing is a refcount bump, never a value copy.
package msg
