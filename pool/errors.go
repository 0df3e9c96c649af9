// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pool

import "code.hybscloud.com/iox"

// ErrExhausted reports that the free list had no page to hand out. Callers
// see this as a plain (ref, false) return from Acquire rather than as an
// error value in the hot path, per §4.1; it exists so higher layers that do
// want to log/wrap the condition have a stable sentinel to compare against.
// It aliases iox.ErrWouldBlock: page exhaustion is the same non-blocking
// contract the rest of the stack uses for "try again, do not block".
var ErrExhausted = iox.ErrWouldBlock
