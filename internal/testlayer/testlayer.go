// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package testlayer provides an in-memory devstack.Layer test double
// standing in for the hardware communicator the specification places out
// of scope (§2): it records every frame a protocol under test sends
// downward, and lets the test inject upward Receive/Indication calls as
// if a peer communicator had produced them.
package testlayer

import (
	"sync"

	"code.hybscloud.com/devstack"
	"code.hybscloud.com/devstack/msg"
	"code.hybscloud.com/devstack/pool"
)

// Frame is one recorded downward Send call.
type Frame struct {
	Payload []byte
	ID      devstack.EID
	More    bool
}

// Recorder is a bottom-of-stack Layer: it has no lower peer, accepts every
// Send unless told to Refuse, and records the bytes for test assertions.
type Recorder struct {
	devstack.Base

	mu     sync.Mutex
	sent   []Frame
	refuse bool
}

// New returns a Recorder ready to be wired as a stack's bottom layer by
// passing it to SetLower on the next layer up.
func New() *Recorder {
	return &Recorder{}
}

// Open always succeeds; a real communicator's link establishment is out
// of scope here.
func (r *Recorder) Open(devstack.EID) error { return nil }

// Close is a no-op; there is no lower-layer state to tear down.
func (r *Recorder) Close(devstack.EID) {}

// Refuse makes subsequent Send calls return devstack.ErrRejected, for
// exercising a protocol's handling of a lower layer that declines frames.
func (r *Recorder) Refuse(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refuse = v
}

// Send records the frame's linearized bytes.
func (r *Recorder) Send(m *msg.Msg, id devstack.EID, more bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refuse {
		return devstack.ErrRejected
	}
	buf := make([]byte, m.Size())
	m.Get(buf, 0)
	m.Clear()
	r.sent = append(r.sent, Frame{Payload: buf, ID: id, More: more})
	return nil
}

// Receive is never called on the bottom-most layer; present only to
// satisfy devstack.Layer.
func (r *Recorder) Receive(*msg.Msg, devstack.EID, bool) {}

// Indication is never called on the bottom-most layer; present only to
// satisfy devstack.Layer.
func (r *Recorder) Indication(devstack.Status, devstack.EID) {}

// Sent returns and clears every frame recorded since the last call.
func (r *Recorder) Sent() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sent
	r.sent = nil
	return out
}

// InjectReceive delivers payload upward as if it had just arrived from a
// peer communicator.
func (r *Recorder) InjectReceive(p *pool.Pool, payload []byte, id devstack.EID) {
	m := msg.New(p)
	m.Put(payload)
	r.ReceiveUpper(m, id, false)
}

// InjectIndication delivers status upward as if reported by a real
// communicator.
func (r *Recorder) InjectIndication(status devstack.Status, id devstack.EID) {
	r.IndicateUpper(status, id)
}
