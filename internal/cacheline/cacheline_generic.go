// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !amd64 && !arm64 && !riscv64 && !loong64 && !mips64 && !mips64le && !ppc64 && !ppc64le && !s390x && !sparc64 && !wasm && !386 && !arm && !mips && !mipsle && !ppc && !s390 && !armbe && !mipsbe && !riscv32

package cacheline

// CacheLineSize is the default L1 cache line size for architectures that
// have no file of their own here (cpu_64.go and cpu_32.go cover the other
// common 64-bit and 32-bit targets).
// 64 bytes is the most common cache line size on modern CPUs.
const CacheLineSize = 64
