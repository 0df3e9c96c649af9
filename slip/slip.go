// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slip

import (
	"sync"

	"code.hybscloud.com/devstack"
	"code.hybscloud.com/devstack/msg"
	"code.hybscloud.com/devstack/pool"
)

// Special bytes of RFC 1055 (§4.5).
const (
	byteEND    byte = 0xC0
	byteESC    byte = 0xDB
	byteEscEnd byte = 0xDC
	byteEscEsc byte = 0xDD
)

type rxState uint8

const (
	rxIdle rxState = iota
	rxData
	rxEscSeen
)

// Stats is a point-in-time snapshot of decoder activity not otherwise
// visible through the Layer interface.
type Stats struct {
	// EmptyFramesDiscarded counts back-to-back END bytes, SLIP's natural
	// resync mechanism (§4.5): "Empty frames ... are discarded without
	// notification".
	EmptyFramesDiscarded uint64
}

// Protocol is the SLIP devstack.Layer: a byte-stuffing encoder on Send and
// a three-state decoder (IDLE, DATA, ESC_SEEN) on Receive.
type Protocol struct {
	devstack.Base

	mu   sync.Mutex
	pool *pool.Pool

	txBuf *msg.Msg // non-nil while a frame is being accumulated for Send

	rxState rxState
	rxBuf   *msg.Msg
	stats   Stats
}

// New returns a SLIP Protocol that allocates its frame buffers from p.
func New(p *pool.Pool) *Protocol {
	return &Protocol{pool: p}
}

// Open refuses (ErrNoUpper) unless something is wired above.
func (p *Protocol) Open(id devstack.EID) error {
	if !p.HasUpper() {
		return devstack.ErrNoUpper
	}
	return p.OpenLower(id)
}

// Close resets both encoder and decoder state before cascading downward.
func (p *Protocol) Close(id devstack.EID) {
	p.mu.Lock()
	if p.txBuf != nil {
		p.txBuf.Clear()
		p.txBuf = nil
	}
	if p.rxBuf != nil {
		p.rxBuf.Clear()
		p.rxBuf = nil
	}
	p.rxState = rxIdle
	p.mu.Unlock()
	p.CloseLower(id)
}

// Stats returns a snapshot of decoder activity.
func (p *Protocol) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Send byte-stuffs m's content into the in-progress outgoing frame. The
// frame starts with a flush-initiator END on the first call since the
// last complete frame. When more is false the frame is terminated with a
// trailing END and forwarded downward; when more is true, the bytes are
// only accumulated and a TxDone indication is raised upward so the caller
// may keep streaming (§4.5).
func (p *Protocol) Send(m *msg.Msg, id devstack.EID, more bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.txBuf == nil {
		p.txBuf = msg.New(p.pool)
		if !p.txBuf.PushBack(byteEND) {
			p.txBuf = nil
			return devstack.ErrRejected
		}
	}

	n := m.Size()
	for i := 0; i < n; i++ {
		b := m.At(i)
		var ok bool
		switch b {
		case byteEND:
			ok = p.txBuf.PushBack(byteESC) && p.txBuf.PushBack(byteEscEnd)
		case byteESC:
			ok = p.txBuf.PushBack(byteESC) && p.txBuf.PushBack(byteEscEsc)
		default:
			ok = p.txBuf.PushBack(b)
		}
		if !ok {
			p.txBuf.Clear()
			p.txBuf = nil
			return devstack.ErrRejected
		}
	}
	m.Clear()

	if !more {
		if !p.txBuf.PushBack(byteEND) {
			p.txBuf.Clear()
			p.txBuf = nil
			return devstack.ErrRejected
		}
		out := p.txBuf
		p.txBuf = nil
		return p.SendLower(out, id, false)
	}

	p.IndicateUpper(devstack.TxDone, id)
	return nil
}

// Receive runs each incoming byte through the decoder state machine,
// delivering every completed frame and raising RxOverrun for any frame
// abandoned due to pool exhaustion (§4.5).
func (p *Protocol) Receive(m *msg.Msg, id devstack.EID, more bool) {
	defer m.Clear()
	var completed []*msg.Msg
	var overruns int

	p.mu.Lock()
	n := m.Size()
	for i := 0; i < n; i++ {
		b := m.At(i)
		switch p.rxState {
		case rxIdle:
			if b == byteEND {
				p.rxState = rxData
				p.rxBuf = msg.New(p.pool)
			}

		case rxData:
			switch b {
			case byteEND:
				if p.rxBuf != nil && !p.rxBuf.Empty() {
					completed = append(completed, p.rxBuf)
					p.rxBuf = nil
					p.rxState = rxIdle
				} else {
					p.stats.EmptyFramesDiscarded++
				}
			case byteESC:
				p.rxState = rxEscSeen
			default:
				if p.rxBuf == nil || !p.rxBuf.PushBack(b) {
					overruns++
					p.abandonRxLocked()
				}
			}

		case rxEscSeen:
			switch b {
			case byteEscEnd:
				if p.rxBuf == nil || !p.rxBuf.PushBack(byteEND) {
					overruns++
					p.abandonRxLocked()
					continue
				}
				p.rxState = rxData
			case byteEscEsc:
				if p.rxBuf == nil || !p.rxBuf.PushBack(byteESC) {
					overruns++
					p.abandonRxLocked()
					continue
				}
				p.rxState = rxData
			default:
				p.abandonRxLocked()
			}
		}
	}
	p.mu.Unlock()

	for _, frame := range completed {
		p.ReceiveUpper(frame, id, false)
	}
	for i := 0; i < overruns; i++ {
		p.IndicateUpper(devstack.RxOverrun, id)
	}
}

// abandonRxLocked discards the in-progress receive buffer and returns the
// decoder to IDLE. Requires p.mu held.
func (p *Protocol) abandonRxLocked() {
	if p.rxBuf != nil {
		p.rxBuf.Clear()
		p.rxBuf = nil
	}
	p.rxState = rxIdle
}
