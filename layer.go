// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package devstack

import "code.hybscloud.com/devstack/msg"

// Layer is the one contract every stack node honors, from the bottom
// communicator to the top device (§4.3). Ownership of a *msg.Msg transfers
// to the callee on every Send/Receive call that does not return an error.
type Layer interface {
	// Open establishes downstream state for id (Any if unspecified). A
	// layer below the top device that has no upper peer wired refuses to
	// open (ErrNoUpper).
	Open(id EID) error

	// Close tears down state for id. Reentrant and idempotent; safe to call
	// from any layer at any time.
	Close(id EID)

	// Send is called by the layer above (or the application, at the top)
	// with a fragment (more=true) or a complete unit (more=false) addressed
	// to id. A non-nil error means the message was rejected outright and
	// was not queued; the caller keeps ownership.
	Send(m *msg.Msg, id EID, more bool) error

	// Receive is called by the layer below with upward data for id.
	// Ownership of m transfers to the callee.
	Receive(m *msg.Msg, id EID, more bool)

	// Indication is called by the layer below to report a Status event
	// for id.
	Indication(status Status, id EID)
}

// Peer exposes the upward half of a wired Layer: the three operations a
// lower layer uses to deliver data and status to whatever sits above it.
// It is the same shape as Layer minus Open/Close, named separately because
// a layer only ever calls these three on its upper, never Open/Close.
type Peer interface {
	Receive(m *msg.Msg, id EID, more bool)
	Indication(status Status, id EID)
}

// Base is embedded by concrete layers to get the standard wiring and the
// pass-through helpers of §4.3 ("forward to the opposite peer unchanged"):
// SendLower, ReceiveUpper, and IndicateUpper. Base does not implement
// Send, Receive, or Indication itself; every concrete layer defines all
// five Layer operations and calls these helpers where it passes data or
// status through untouched.
//
// Construction order matters: call SetLower after the lower layer exists,
// which also installs the owning layer as the lower's upper (§3
// "Lifecycle").
type Base struct {
	lower Layer
	upper Peer
}

// SetLower wires lower as this layer's downward peer and, if self is
// non-nil, installs self as lower's upward peer. Pass the owning concrete
// layer (which embeds this Base) as self so lower's Receive/Indication
// calls land on the concrete layer's overrides rather than on Base's
// pass-through defaults.
func (b *Base) SetLower(lower Layer, self Peer) {
	b.lower = lower
	if settable, ok := lower.(upperSetter); ok && self != nil {
		settable.setUpper(self)
	}
}

// setUpper installs p as this layer's upward peer. Unexported: only
// SetLower (i.e. construction-time wiring) may call it, matching §4.3's
// "wiring is established at construction".
func (b *Base) setUpper(p Peer) { b.upper = p }

type upperSetter interface {
	setUpper(Peer)
}

// Lower returns the wired downward peer, or nil for the bottom
// communicator.
func (b *Base) Lower() Layer { return b.lower }

// Upper returns the wired upward peer, or nil if nothing has attached
// above yet.
func (b *Base) Upper() Peer { return b.upper }

// HasUpper reports whether an upper peer is wired. Open implementations
// should refuse (ErrNoUpper) when this is false, per §4.3's dangling-stack
// safety gate -- except for the top-most device layer, which has no
// upper by design and must not apply this gate.
func (b *Base) HasUpper() bool { return b.upper != nil }

// OpenLower opens the downward peer, if any, returning nil when there is
// none (a communicator at the bottom of the stack).
func (b *Base) OpenLower(id EID) error {
	if b.lower == nil {
		return nil
	}
	return b.lower.Open(id)
}

// CloseLower closes the downward peer, if any. Close propagates downward
// top-down: callers close their own state before calling CloseLower.
func (b *Base) CloseLower(id EID) {
	if b.lower != nil {
		b.lower.Close(id)
	}
}

// SendLower forwards m to the downward peer unchanged. Returns ErrNotOpen
// if there is no lower (nothing to send a fragment or unit to).
func (b *Base) SendLower(m *msg.Msg, id EID, more bool) error {
	if b.lower == nil {
		return ErrNotOpen
	}
	return b.lower.Send(m, id, more)
}

// ReceiveUpper forwards m to the upward peer unchanged. A no-op if nothing
// is wired above (message is dropped; the top device always has an
// upper-less terminus that consumes data through its own application API,
// not through Peer).
func (b *Base) ReceiveUpper(m *msg.Msg, id EID, more bool) {
	if b.upper != nil {
		b.upper.Receive(m, id, more)
	}
}

// IndicateUpper forwards status to the upward peer unchanged.
func (b *Base) IndicateUpper(status Status, id EID) {
	if b.upper != nil {
		b.upper.Indication(status, id)
	}
}
