// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package isotp implements ISO 15765-2 (CAN-TP): segmentation and
// reassembly of up to 4095-byte messages into 8-byte frames over a
// frame-oriented lower layer, with flow control and multi-timer
// supervision (§4.4).
//
// Protocol is a devstack.Layer. It sits directly above a communicator
// that exchanges individual 8-byte CAN frames (one frame per Send/Receive
// call) and directly below a device or another protocol that exchanges
// whole messages up to MaxDL bytes.
//
// Sending and receiving are independent state machines sharing one
// Protocol instance, matching §5's "protocols are single-threaded per
// stack instance": Protocol serializes its own Send/Receive/Indication
// entry points internally so the caller does not have to.
package isotp
