// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build mips64 || mips64le || ppc64 || ppc64le || s390x || sparc64 || wasm

package cacheline

// CacheLineSize is the typical SIMD/L1 cache line size for 64-bit architectures.

const CacheLineSize = 64
