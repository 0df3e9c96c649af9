// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package devstack

// Status is the closed set of events a layer reports upward via Indication.
type Status uint8

const (
	// Connected reports that the layer below has established its link.
	Connected Status = iota + 1
	// Disconnected reports that the layer below has lost its link. Terminal:
	// the receiving protocol resets its per-transfer state.
	Disconnected
	// TxDone reports that a previously accepted Send has been transmitted.
	TxDone
	// TxError reports that a previously accepted Send failed to transmit.
	TxError
	// TxTimeout reports that a transmit acknowledgment was not observed in
	// time. Terminal: the receiving protocol resets its per-transfer state.
	TxTimeout
	// RxError reports a malformed or out-of-sequence frame was discarded.
	RxError
	// RxOverrun reports reassembly buffer exhaustion; the frame continues to
	// be consumed to maintain sync.
	RxOverrun
	// RxTimeout reports that an expected continuation frame never arrived.
	// Terminal: the receiving protocol resets its per-transfer state.
	RxTimeout
)

// String renders the status using the names from §3 of the specification.
func (s Status) String() string {
	switch s {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case TxDone:
		return "tx_done"
	case TxError:
		return "tx_error"
	case TxTimeout:
		return "tx_timeout"
	case RxError:
		return "rx_error"
	case RxOverrun:
		return "rx_overrun"
	case RxTimeout:
		return "rx_timeout"
	default:
		return "status(unknown)"
	}
}

// Terminal reports whether the status ends the active transfer and resets
// the protocol's per-transfer state, per §7.
func (s Status) Terminal() bool {
	switch s {
	case Disconnected, TxTimeout, RxTimeout:
		return true
	default:
		return false
	}
}
