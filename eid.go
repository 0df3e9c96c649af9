// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package devstack

import (
	"bytes"
	"encoding/binary"
)

// EID is an endpoint identifier: an (address, port) pair used to multiplex
// several logical channels over one lower-layer binding (§4.7). Address is
// a 16-byte buffer compatible with both IPv4 (low 4 bytes) and IPv6 (all 16
// bytes). EID is a plain value type: comparable, orderable, and usable as a
// map key.
type EID struct {
	Address [16]byte
	Port    uint16
}

// Any is the sentinel EID denoting "default/unmultiplexed endpoint".
var Any = EID{}

// IsAny reports whether e is the sentinel "default" endpoint.
func (e EID) IsAny() bool {
	return e == Any
}

// Compare returns -1, 0, or 1 ordering e before, equal to, or after other,
// lexicographically over (address bytes, then port). This total order makes
// EID usable as an ordered map key.
func (e EID) Compare(other EID) int {
	if c := bytes.Compare(e.Address[:], other.Address[:]); c != 0 {
		return c
	}
	switch {
	case e.Port < other.Port:
		return -1
	case e.Port > other.Port:
		return 1
	default:
		return 0
	}
}

// IPv4EID builds an EID from a 4-byte IPv4 address and a port. The IPv4
// bytes occupy the low 4 bytes of Address, per §4.7.
func IPv4EID(a, b, c, d byte, port uint16) EID {
	var e EID
	e.Address[12], e.Address[13], e.Address[14], e.Address[15] = a, b, c, d
	e.Port = port
	return e
}

// IPv6EID builds an EID from a full 16-byte IPv6 address and a port.
func IPv6EID(addr [16]byte, port uint16) EID {
	return EID{Address: addr, Port: port}
}

// MarshalBinary encodes the EID as 18 bytes: 16-byte address followed by a
// big-endian 16-bit port, matching the wire layout used by the Layer
// interface's id parameters when serialized on the wire by a communicator.
func (e EID) MarshalBinary() ([]byte, error) {
	out := make([]byte, 18)
	copy(out, e.Address[:])
	binary.BigEndian.PutUint16(out[16:], e.Port)
	return out, nil
}

// UnmarshalBinary decodes an EID from the layout produced by MarshalBinary.
func (e *EID) UnmarshalBinary(data []byte) error {
	if len(data) != 18 {
		return ErrInvalidEID
	}
	copy(e.Address[:], data[:16])
	e.Port = binary.BigEndian.Uint16(data[16:])
	return nil
}
