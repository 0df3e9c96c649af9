// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pool implements the message pool of §4.1: a process-wide (or, for
// tests and multi-tenant processes, an explicitly-scoped) array of P pages
// of B bytes, each page reference-counted, with free pages held on a
// lock-free FIFO queue rather than a mutex-guarded slice. Released pages
// are handed out again in release order; the most recently released page
// is not preferred.
//
// All storage is allocated once at construction; Acquire/Release never
// allocate and never block -- exhaustion is reported as a (zero value,
// false) return, never a wait and never a panic. This is the one place in
// the stack permitted to hand out raw byte storage; msg.Msg is built
// entirely on top of it.
//
// The free list is a code.hybscloud.com/lfq.MPMC queue of page indices,
// the same lock-free algorithm code.hybscloud.com/iobuf's BoundedPool uses
// internally, chosen here off the shelf from the pack instead of
// hand-rolled: acquire/release happen from the communicator's worker
// threads (§5, "parallel threads at the communicator boundary only") as
// well as from the single protocol goroutine, an MPMC access pattern.
package pool
