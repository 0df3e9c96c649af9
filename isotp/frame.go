// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

import "time"

// FrameBytes is the fixed size of one CAN-TP wire frame.
const FrameBytes = 8

// MaxDL is the largest message size CAN-TP can segment (§4.4).
const MaxDL = 4095

// Timing constants from §4.4. All four default N_xx supervision timers
// share the same value in this protocol's single configured profile.
const (
	NAs = 1000 * time.Millisecond
	NAr = 1000 * time.Millisecond
	NBs = 1000 * time.Millisecond
	NCr = 1000 * time.Millisecond
)

// FrameType is the 4-bit N_PCI type nibble occupying the top nibble of the
// first frame byte (after any addressing byte).
type FrameType uint8

const (
	SF FrameType = 0x0 // Single Frame
	FF FrameType = 0x1 // First Frame
	CF FrameType = 0x2 // Consecutive Frame
	FC FrameType = 0x3 // Flow Control
)

func (t FrameType) String() string {
	switch t {
	case SF:
		return "SF"
	case FF:
		return "FF"
	case CF:
		return "CF"
	case FC:
		return "FC"
	default:
		return "unknown"
	}
}

// FlowStatus is the FC frame's FS nibble.
type FlowStatus uint8

const (
	CTS      FlowStatus = 0
	WAIT     FlowStatus = 1
	Overflow FlowStatus = 2
)

// addressingOverhead returns the number of bytes the configured addressing
// mode consumes out of every frame's 8-byte payload.
func addressingOverhead(cfg *Config) int {
	if cfg.ExtendedAddressing {
		return 1
	}
	return 0
}

// sfMax returns the largest payload an SF can carry: 7 bytes normal
// addressing, 6 under extended addressing.
func sfMax(cfg *Config) int {
	return 7 - addressingOverhead(cfg)
}

// ffFirstLen returns the number of payload bytes an FF carries in its own
// frame: 6 normal, 5 extended.
func ffFirstLen(cfg *Config) int {
	return 6 - addressingOverhead(cfg)
}

// cfMax returns the largest payload a CF can carry: 7 normal, 6 extended.
func cfMax(cfg *Config) int {
	return 7 - addressingOverhead(cfg)
}

// encodeSTmin maps a duration to the ISO 15765-2 STmin wire byte: 0x00-0x7F
// are 0-127ms, 0xF1-0xF9 are 100-900us. Values outside the representable
// range saturate to the nearest bound.
func encodeSTmin(d time.Duration) byte {
	switch {
	case d <= 0:
		return 0x00
	case d < time.Millisecond:
		us := d / (100 * time.Microsecond)
		if us < 1 {
			us = 1
		}
		if us > 9 {
			us = 9
		}
		return 0xF0 + byte(us)
	case d <= 127*time.Millisecond:
		return byte(d / time.Millisecond)
	default:
		return 0x7F
	}
}

// decodeSTmin is the inverse of encodeSTmin. Reserved byte values (0x80-
// 0xF0, 0xFA-0xFF) decode to 0, matching a conformant receiver treating
// them as "no minimum separation time".
func decodeSTmin(b byte) time.Duration {
	switch {
	case b <= 0x7F:
		return time.Duration(b) * time.Millisecond
	case b >= 0xF1 && b <= 0xF9:
		return time.Duration(b-0xF0) * 100 * time.Microsecond
	default:
		return 0
	}
}

// buildSF encodes a Single Frame into buf, which must have capacity for at
// least FrameBytes. Returns the frame length: the number of encoded bytes,
// or FrameBytes when zero padding is configured.
func buildSF(buf []byte, cfg *Config, payload []byte) int {
	off := 0
	if cfg.ExtendedAddressing {
		buf[0] = cfg.TargetAddr
		off = 1
	}
	buf[off] = byte(SF)<<4 | byte(len(payload))
	n := off + 1 + copy(buf[off+1:], payload)
	return padFrame(buf, n, cfg)
}

// buildFF encodes a First Frame carrying dl total bytes (the full message
// length) and the first chunk of payload.
func buildFF(buf []byte, cfg *Config, dl int, payload []byte) int {
	off := 0
	if cfg.ExtendedAddressing {
		buf[0] = cfg.TargetAddr
		off = 1
	}
	buf[off] = byte(FF)<<4 | byte((dl>>8)&0xF)
	buf[off+1] = byte(dl & 0xFF)
	n := off + 2 + copy(buf[off+2:], payload)
	return padFrame(buf, n, cfg)
}

// buildCF encodes a Consecutive Frame with sequence number sn (low nibble
// only is significant).
func buildCF(buf []byte, cfg *Config, sn byte, payload []byte) int {
	off := 0
	if cfg.ExtendedAddressing {
		buf[0] = cfg.TargetAddr
		off = 1
	}
	buf[off] = byte(CF)<<4 | (sn & 0xF)
	n := off + 1 + copy(buf[off+1:], payload)
	return padFrame(buf, n, cfg)
}

// buildFC encodes a Flow Control frame.
func buildFC(buf []byte, cfg *Config, fs FlowStatus, bs byte, stMin time.Duration) int {
	off := 0
	if cfg.ExtendedAddressing {
		buf[0] = cfg.TargetAddr
		off = 1
	}
	buf[off] = byte(FC)<<4 | byte(fs&0xF)
	buf[off+1] = bs
	buf[off+2] = encodeSTmin(stMin)
	return padFrame(buf, off+3, cfg)
}

func padFrame(buf []byte, n int, cfg *Config) int {
	if !cfg.ZeroPadding {
		return n
	}
	for i := n; i < FrameBytes; i++ {
		buf[i] = 0
	}
	return FrameBytes
}

// decodedFrame is the parsed form of one incoming wire frame, valid only
// for the lifetime of the buffer it was parsed from (payload aliases it).
type decodedFrame struct {
	typ     FrameType
	dl      int    // SF, FF: declared data length
	sn      byte   // CF: sequence number nibble
	fs      FlowStatus
	bs      byte   // FC: block size
	stMin   time.Duration
	payload []byte
}

// addressMatches reports whether buf's leading address byte (if extended
// addressing is configured) equals the peer's expected source address.
// Per §4.4, a mismatch is silently discarded, not an error -- callers must
// check this before parseFrame and simply drop the frame on false.
func addressMatches(buf []byte, cfg *Config) bool {
	if !cfg.ExtendedAddressing {
		return true
	}
	return len(buf) >= 1 && buf[0] == cfg.SourceAddr
}

// parseFrame decodes buf (already address-checked by the caller) into a
// decodedFrame. Returns false for a buffer too short for its declared
// N_PCI type.
func parseFrame(buf []byte, cfg *Config) (decodedFrame, bool) {
	off := 0
	if cfg.ExtendedAddressing {
		off = 1
	}
	if len(buf) <= off {
		return decodedFrame{}, false
	}
	typ := FrameType(buf[off] >> 4)
	switch typ {
	case SF:
		dl := int(buf[off] & 0xF)
		if len(buf) < off+1+dl {
			return decodedFrame{}, false
		}
		return decodedFrame{typ: SF, dl: dl, payload: buf[off+1 : off+1+dl]}, true
	case FF:
		if len(buf) < off+2 {
			return decodedFrame{}, false
		}
		dl := int(buf[off]&0xF)<<8 | int(buf[off+1])
		return decodedFrame{typ: FF, dl: dl, payload: buf[off+2:]}, true
	case CF:
		return decodedFrame{typ: CF, sn: buf[off] & 0xF, payload: buf[off+1:]}, true
	case FC:
		if len(buf) < off+3 {
			return decodedFrame{}, false
		}
		return decodedFrame{
			typ:   FC,
			fs:    FlowStatus(buf[off] & 0xF),
			bs:    buf[off+1],
			stMin: decodeSTmin(buf[off+2]),
		}, true
	default:
		return decodedFrame{}, false
	}
}
