// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package devstack

import "errors"

var (
	// ErrNoUpper is returned by Open when a layer has no upper peer wired.
	// This is the safety gate against dangling stacks described in §4.3.
	ErrNoUpper = errors.New("devstack: layer has no upper peer")

	// ErrNotOpen is returned by Base.SendLower when the layer has no lower
	// peer wired to send to.
	ErrNotOpen = errors.New("devstack: layer is not open")

	// ErrRejected is returned by Send when the message was declined, by the
	// layer itself or by a layer below it. The caller retains ownership of
	// the message.
	ErrRejected = errors.New("devstack: message rejected")

	// ErrInvalidEID is returned when decoding a malformed wire-format EID.
	ErrInvalidEID = errors.New("devstack: invalid endpoint identifier")
)
