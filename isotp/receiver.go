// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

import (
	"time"

	"code.hybscloud.com/devstack"
	"code.hybscloud.com/devstack/msg"
)

// handleRx dispatches one SF, FF, or CF frame to the receiver state
// machine (§4.4's IDLE -> RECEIVING -> IDLE).
func (p *Protocol) handleRx(frame decodedFrame, id devstack.EID) {
	switch frame.typ {
	case SF:
		p.handleSF(frame, id)
	case FF:
		p.handleFF(frame, id)
	case CF:
		p.handleCF(frame, id)
	}
}

// handleSF validates and delivers a complete Single Frame message.
func (p *Protocol) handleSF(frame decodedFrame, id devstack.EID) {
	p.mu.Lock()
	sfLimit := sfMax(&p.cfg)
	p.mu.Unlock()

	if frame.dl > sfLimit || len(frame.payload) < frame.dl {
		p.IndicateUpper(devstack.RxError, id)
		return
	}

	out := msg.New(p.pool)
	if !out.Put(frame.payload[:frame.dl]) {
		p.IndicateUpper(devstack.RxError, id)
		return
	}
	p.ReceiveUpper(out, id, false)
}

// handleFF validates a First Frame, begins reassembly, and replies with a
// Flow Control CTS frame sized per this stack's configuration.
func (p *Protocol) handleFF(frame decodedFrame, id devstack.EID) {
	p.mu.Lock()
	cfg := p.cfg
	ffLen := ffFirstLen(&cfg)

	if frame.dl < ffLen+2 || frame.dl > cfg.MaxDL {
		p.abortRxLocked()
		sendOverflow := cfg.FCSendOverflow && frame.dl > cfg.MaxDL
		p.mu.Unlock()
		if sendOverflow {
			p.sendFC(Overflow, 0, 0, id)
		}
		p.IndicateUpper(devstack.RxError, id)
		return
	}

	n := len(frame.payload)
	if n > ffLen {
		n = ffLen
	}
	buf := msg.New(p.pool)
	buf.Put(frame.payload[:n])

	p.rxBuf = buf
	p.rxDL = frame.dl
	p.rxSN = 1
	p.rxBScnt = 0
	p.rxID = id
	p.rxState = rxReceiving
	p.rxNCr.Start(NCr, false, p.onNCrExpire, nil)
	stMin, bs := cfg.STmin, cfg.BlockSize
	p.mu.Unlock()

	p.sendFC(CTS, bs, stMin, id)
}

// handleCF appends a Consecutive Frame's payload to the in-progress
// reassembly buffer, validating the sequence number and pacing further
// flow control per the configured block size.
func (p *Protocol) handleCF(frame decodedFrame, id devstack.EID) {
	p.mu.Lock()
	p.rxNCr.Stop()

	if p.rxState != rxReceiving {
		p.mu.Unlock()
		p.IndicateUpper(devstack.RxError, id)
		return
	}
	expected := p.rxSN & 0xF
	if frame.sn != expected {
		p.abortRxLocked()
		p.mu.Unlock()
		p.IndicateUpper(devstack.RxError, id)
		return
	}

	remaining := p.rxDL - p.rxBuf.Size()
	n := len(frame.payload)
	if n > remaining {
		n = remaining
	}
	if !p.rxBuf.Put(frame.payload[:n]) {
		p.abortRxLocked()
		p.mu.Unlock()
		p.IndicateUpper(devstack.RxOverrun, id)
		return
	}
	p.rxSN = (p.rxSN + 1) & 0xF

	if p.rxBuf.Size() >= p.rxDL {
		complete := p.rxBuf
		p.rxBuf = nil
		p.rxState = rxIdle
		p.rxDL, p.rxSN, p.rxBScnt = 0, 0, 0
		p.mu.Unlock()
		p.ReceiveUpper(complete, id, false)
		return
	}

	bs := p.cfg.BlockSize
	sendCTS := false
	if bs != 0 {
		p.rxBScnt++
		if p.rxBScnt >= bs {
			p.rxBScnt = 0
			sendCTS = true
		}
	}
	stMin := p.cfg.STmin
	p.rxNCr.Start(NCr, false, p.onNCrExpire, nil)
	p.mu.Unlock()

	if sendCTS {
		p.sendFC(CTS, bs, stMin, id)
	}
}

// sendFC builds and forwards one Flow Control frame.
func (p *Protocol) sendFC(fs FlowStatus, bs byte, stMin time.Duration, id devstack.EID) {
	p.mu.Lock()
	cfg := p.cfg
	p.mu.Unlock()

	buf := make([]byte, FrameBytes)
	n := buildFC(buf, &cfg, fs, bs, stMin)
	out := msg.New(p.pool)
	if !out.Put(buf[:n]) {
		return
	}
	_ = p.SendLower(out, id, false)
}

// onNCrExpire handles N_Cr expiry: an expected Consecutive Frame never
// arrived.
func (p *Protocol) onNCrExpire(arg any) {
	p.mu.Lock()
	if p.rxState != rxReceiving {
		p.mu.Unlock()
		return
	}
	id := p.rxID
	p.abortRxLocked()
	p.mu.Unlock()
	p.IndicateUpper(devstack.RxTimeout, id)
}

// abortRxLocked resets the receiver to IDLE and releases its reassembly
// buffer. Requires p.mu held.
func (p *Protocol) abortRxLocked() {
	p.rxNCr.Stop()
	if p.rxBuf != nil {
		p.rxBuf.Clear()
		p.rxBuf = nil
	}
	p.rxState = rxIdle
	p.rxDL, p.rxSN, p.rxBScnt = 0, 0, 0
}
