// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msg

import "code.hybscloud.com/devstack/pool"

// Get copies min(len(buf), Size()-off) bytes starting at logical offset
// off into buf, crossing page boundaries as needed, and returns the number
// of bytes copied. Out-of-range off (off >= Size()) copies zero bytes.
func (m *Msg) Get(buf []byte, off int) int {
	remaining := m.Size() - off
	if remaining <= 0 {
		return 0
	}
	n := remaining
	if n > len(buf) {
		n = len(buf)
	}

	B := m.p.PageSize()
	abs := m.head + off
	copied := 0
	for copied < n {
		page := abs / B
		pOff := abs % B
		avail := B - pOff
		chunk := n - copied
		if chunk > avail {
			chunk = avail
		}
		src := m.pages.At(page).Bytes()[pOff : pOff+chunk]
		copy(buf[copied:copied+chunk], src)
		copied += chunk
		abs += chunk
	}
	return copied
}

// Put appends all of buf to the end of m, allocating pages as needed.
// Returns false (and m holding whatever prefix of buf was appended before
// failure) if the pool is exhausted partway through, or if m is shared.
func (m *Msg) Put(buf []byte) bool {
	if m.shared {
		return false
	}
	B := m.p.PageSize()
	written := 0
	for written < len(buf) {
		if m.pages.Len() == 0 || m.tail == B {
			pg, ok := pool.Acquire(m.p)
			if !ok {
				return false
			}
			m.pages.PushBack(pg)
			m.tail = 0
			if m.pages.Len() == 1 {
				m.head = 0
			}
		}
		last := m.pages.Len() - 1
		space := B - m.tail
		chunk := len(buf) - written
		if chunk > space {
			chunk = space
		}
		dst := m.pages.At(last).Bytes()[m.tail : m.tail+chunk]
		copy(dst, buf[written:written+chunk])
		m.tail += chunk
		written += chunk
	}
	return true
}
