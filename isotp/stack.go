// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

import (
	"sync"
	"time"

	"code.hybscloud.com/devstack"
	"code.hybscloud.com/devstack/msg"
	"code.hybscloud.com/devstack/pool"
	"code.hybscloud.com/devstack/timer"
)

type txPhase uint8

const (
	txIdle txPhase = iota
	txWaitFC
	txSendCF
)

type rxPhase uint8

const (
	rxIdle rxPhase = iota
	rxReceiving
)

// Protocol is the CAN-TP devstack.Layer (§4.4): one sender state machine
// and one receiver state machine sharing a single configuration and a
// single lock, since §5 requires a protocol's upward and downward calls to
// be serialized by the implementer.
type Protocol struct {
	devstack.Base

	mu   sync.Mutex
	cfg  Config
	pool *pool.Pool

	txState   txPhase
	txID      devstack.EID
	txAccum   *msg.Msg
	txFrame   *msg.Msg
	txSN      byte
	txDL      int
	txSize    int
	txBScnt   byte
	txFCBS    byte
	txFCSTmin time.Duration
	txDone    *timer.Event
	txNBs     *timer.Timer
	txCFTimer *timer.Timer

	rxState rxPhase
	rxID    devstack.EID
	rxBuf   *msg.Msg
	rxDL    int
	rxSN    byte
	rxBScnt byte
	rxNCr   *timer.Timer
}

// New returns a CAN-TP Protocol backed by p for frame and reassembly
// buffer allocation, configured by opts.
func New(p *pool.Pool, opts ...Option) *Protocol {
	return &Protocol{
		cfg:       newConfig(opts...),
		pool:      p,
		txDone:    timer.NewEvent(),
		txNBs:     timer.New(),
		txCFTimer: timer.New(),
		rxNCr:     timer.New(),
	}
}

// Open refuses (ErrNoUpper) unless a device or further protocol is wired
// above, then opens the communicator below.
func (p *Protocol) Open(id devstack.EID) error {
	if !p.HasUpper() {
		return devstack.ErrNoUpper
	}
	return p.OpenLower(id)
}

// Close stops every outstanding timer and resets both state machines
// before cascading downward. Idempotent and reentrant, as required by §5.
func (p *Protocol) Close(id devstack.EID) {
	p.mu.Lock()
	p.abortTxLocked()
	p.abortRxLocked()
	p.mu.Unlock()
	p.CloseLower(id)
}

// Receive decodes one incoming wire frame and dispatches it to the sender
// (FC) or receiver (SF/FF/CF) state machine. Malformed or address-mismatched
// frames are dropped per §4.4.
func (p *Protocol) Receive(m *msg.Msg, id devstack.EID, more bool) {
	defer m.Clear()
	buf := make([]byte, FrameBytes)
	n := m.Get(buf, 0)
	buf = buf[:n]

	p.mu.Lock()
	cfg := p.cfg
	p.mu.Unlock()

	if !addressMatches(buf, &cfg) {
		return
	}
	frame, ok := parseFrame(buf, &cfg)
	if !ok {
		p.mu.Lock()
		p.abortRxLocked()
		p.mu.Unlock()
		p.IndicateUpper(devstack.RxError, id)
		return
	}

	switch frame.typ {
	case FC:
		p.handleFC(frame, id)
	default:
		p.handleRx(frame, id)
	}
}

// Indication routes TxDone to the sender's latched tx_done event and
// resets both state machines on a Terminal status before forwarding it
// upward unchanged (§7).
func (p *Protocol) Indication(status devstack.Status, id devstack.EID) {
	if status == devstack.TxDone {
		p.txDone.Set()
		return
	}
	if status.Terminal() {
		p.mu.Lock()
		p.abortTxLocked()
		p.abortRxLocked()
		p.mu.Unlock()
	}
	p.IndicateUpper(status, id)
}
