// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package timer provides the cooperative-scheduling primitives the
// protocol state machines of §4.4 and §4.5 rely on (§4.6): a one-shot or
// periodic Timer, and a binary-latch Event used for the single deliberate
// blocking wait in the stack (the CAN-TP sender's bounded wait for
// tx_done before the next consecutive frame).
package timer
