// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package devstack provides a composable, non-blocking device-communication
// stack built from a small number of symmetric layers.
//
// A stack is assembled bottom-up: one communicator (hardware-facing), zero
// or more protocols (segmentation, framing, ...), and one device (the
// application-facing top). Every node in the stack implements Layer: the
// same five operations (Open, Close, Send, Receive, Indication) regardless
// of position. Data flows upward via Receive, downward via Send, status
// flows upward via Indication, and lifecycle is driven by Open/Close.
//
// Subpackages implement the concrete pieces that plug into a Layer chain:
//
//   - pool: a paged, pool-backed, reference-counted page allocator with no
//     runtime heap allocation on the steady-state path.
//   - msg: a zero-copy, deque-like message buffer built on pool.
//   - timer: one-shot/periodic timers and a binary latch event, the
//     cooperative-scheduling primitives the protocols rely on.
//   - isotp: an ISO 15765-2 (CAN-TP) segmentation/reassembly protocol Layer.
//   - slip: a SLIP (RFC 1055) byte-stuffed framing protocol Layer.
//
// None of these paths block the producer except the single, bounded wait
// isotp's sender performs for a lower-layer transmit acknowledgment.
package devstack
