// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msg

import "errors"

// ErrShared names the condition of a Msg made read-only by RefCopy (§4.2:
// "a message marked shared ... rejects mutating operations"). Msg's
// mutating methods report that condition by returning false; none of them
// returns ErrShared.
var ErrShared = errors.New("msg: message is shared (read-only)")
