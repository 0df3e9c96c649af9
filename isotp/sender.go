// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

import (
	"code.hybscloud.com/devstack"
	"code.hybscloud.com/devstack/msg"
	"code.hybscloud.com/devstack/timer"
)

// Send implements the sender half of §4.4: accumulate fragments while
// more is true, then on the final call emit either a Single Frame or,
// for larger messages, a First Frame followed by Consecutive Frames
// paced by flow control.
func (p *Protocol) Send(m *msg.Msg, id devstack.EID, more bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.txAccum == nil {
		p.txAccum = msg.New(p.pool)
	}
	if !p.txAccum.Append(m) {
		return devstack.ErrRejected
	}
	m.Clear()
	if more {
		return nil
	}

	whole := p.txAccum
	p.txAccum = nil
	return p.startTransferLocked(whole, id)
}

// startTransferLocked begins a new transfer for whole, which the caller
// has already fully accumulated. Requires p.mu held.
func (p *Protocol) startTransferLocked(whole *msg.Msg, id devstack.EID) error {
	if p.txState != txIdle {
		whole.Clear()
		return devstack.ErrRejected
	}
	size := whole.Size()
	if size > p.cfg.MaxDL {
		whole.Clear()
		return devstack.ErrRejected
	}

	if size <= sfMax(&p.cfg) {
		payload := make([]byte, size)
		whole.Get(payload, 0)
		whole.Clear()
		buf := make([]byte, FrameBytes)
		n := buildSF(buf, &p.cfg, payload)
		return p.sendFrameLocked(buf[:n], id)
	}

	firstLen := ffFirstLen(&p.cfg)
	payload := make([]byte, firstLen)
	whole.Get(payload, 0)
	buf := make([]byte, FrameBytes)
	n := buildFF(buf, &p.cfg, size, payload)
	if err := p.sendFrameLocked(buf[:n], id); err != nil {
		whole.Clear()
		return err
	}

	// whole already holds its own pages outright -- keep it as the frame
	// buffer CF chunks are served from instead of taking a second share.
	p.txFrame = whole
	p.txSN = 1
	p.txDL = firstLen
	p.txSize = size
	p.txBScnt = 0
	p.txID = id
	p.txState = txWaitFC
	p.txNBs.Start(NBs, false, p.onNBsExpire, nil)
	return nil
}

// sendFrameLocked wraps buf in a fresh Msg and forwards it to the lower
// layer as one complete frame.
func (p *Protocol) sendFrameLocked(buf []byte, id devstack.EID) error {
	out := msg.New(p.pool)
	if !out.Put(buf) {
		return devstack.ErrRejected
	}
	return p.SendLower(out, id, false)
}

// handleFC processes an incoming Flow Control frame against the sender
// state machine, per §4.4's WAIT_FC transitions.
func (p *Protocol) handleFC(frame decodedFrame, id devstack.EID) {
	p.mu.Lock()
	if p.txState != txWaitFC {
		p.mu.Unlock()
		return
	}
	p.txNBs.Stop()

	switch frame.fs {
	case CTS:
		p.txFCBS = frame.bs
		p.txFCSTmin = frame.stMin
		p.txState = txSendCF
		stMin := p.txFCSTmin
		p.mu.Unlock()
		p.txCFTimer.Start(stMin, false, p.doSendCF, nil)
		return
	case WAIT:
		p.txNBs.Start(NBs, false, p.onNBsExpire, nil)
		p.mu.Unlock()
		return
	default: // Overflow or unknown FS: abort
		p.abortTxLocked()
		p.mu.Unlock()
		p.IndicateUpper(devstack.RxError, id)
		return
	}
}

// doSendCF is the Timer callback that emits the next Consecutive Frame.
// It waits (bounded by N_As) for the previous frame's tx_done before
// putting the next one on the wire -- the one deliberate blocking point
// named in §5 -- so it must never be called while p.mu is held.
func (p *Protocol) doSendCF(arg any) {
	p.mu.Lock()
	if p.txState != txSendCF {
		p.mu.Unlock()
		return
	}
	id := p.txID
	sn := p.txSN
	dl := p.txDL
	size := p.txSize
	frame := p.txFrame
	p.mu.Unlock()

	if res := p.txDone.WaitFor(NAs); res == timer.TimedOut {
		p.mu.Lock()
		if p.txState != txIdle {
			p.abortTxLocked()
			p.mu.Unlock()
			p.IndicateUpper(devstack.TxTimeout, id)
			return
		}
		p.mu.Unlock()
		return
	}
	p.txDone.Reset()

	chunkLen := size - dl
	if max := cfMax(&p.cfg); chunkLen > max {
		chunkLen = max
	}
	payload := make([]byte, chunkLen)
	frame.Get(payload, dl)
	buf := make([]byte, FrameBytes)
	n := buildCF(buf, &p.cfg, sn, payload)
	err := p.sendOneCF(buf[:n], id)

	p.mu.Lock()
	if p.txState == txIdle {
		p.mu.Unlock()
		return // aborted while the frame was in flight
	}
	if err != nil {
		p.abortTxLocked()
		p.mu.Unlock()
		p.IndicateUpper(devstack.TxError, id)
		return
	}

	p.txDL += chunkLen
	p.txSN = (p.txSN + 1) & 0xF
	if p.txDL >= p.txSize {
		p.finishTxLocked()
		p.mu.Unlock()
		return
	}
	if p.txFCBS != 0 {
		p.txBScnt++
		if p.txBScnt >= p.txFCBS {
			p.txBScnt = 0
			p.txState = txWaitFC
			p.txNBs.Start(NBs, false, p.onNBsExpire, nil)
			p.mu.Unlock()
			return
		}
	}
	stMin := p.txFCSTmin
	p.mu.Unlock()
	p.txCFTimer.Start(stMin, false, p.doSendCF, nil)
}

func (p *Protocol) sendOneCF(buf []byte, id devstack.EID) error {
	out := msg.New(p.pool)
	if !out.Put(buf) {
		return devstack.ErrRejected
	}
	return p.SendLower(out, id, false)
}

// onNBsExpire handles N_Bs expiry: the sender was awaiting a Flow Control
// frame that never arrived. Per §4.4 this raises rx_timeout, since N_Bs
// bounds the wait for an *incoming* frame.
func (p *Protocol) onNBsExpire(arg any) {
	p.mu.Lock()
	if p.txState != txWaitFC {
		p.mu.Unlock()
		return
	}
	id := p.txID
	p.abortTxLocked()
	p.mu.Unlock()
	p.IndicateUpper(devstack.RxTimeout, id)
}

// abortTxLocked resets the sender to IDLE and releases its held frame.
// Requires p.mu held.
func (p *Protocol) abortTxLocked() {
	p.txNBs.Stop()
	p.txCFTimer.Stop()
	if p.txFrame != nil {
		p.txFrame.Clear()
		p.txFrame = nil
	}
	p.txState = txIdle
	p.txSN, p.txDL, p.txSize, p.txBScnt = 0, 0, 0, 0
}

func (p *Protocol) finishTxLocked() {
	if p.txFrame != nil {
		p.txFrame.Clear()
		p.txFrame = nil
	}
	p.txState = txIdle
	p.txSN, p.txDL, p.txSize, p.txBScnt = 0, 0, 0, 0
}
