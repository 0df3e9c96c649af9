// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package slip implements SLIP (RFC 1055) byte-stuffed framing (§4.5) as
// a devstack.Layer: encode on Send, a three-state decoder (IDLE, DATA,
// ESC_SEEN) on Receive.
package slip
