// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msg_test

import (
	"testing"

	"code.hybscloud.com/devstack/msg"
	"code.hybscloud.com/devstack/pool"
)

func TestMsg_RefCopyMakesBothReadOnly(t *testing.T) {
	p := pool.New(8, 4)
	a := msg.New(p)
	for _, v := range []byte{1, 2, 3, 4, 5} {
		a.PushBack(v)
	}

	b := msg.New(p)
	b.RefCopy(a)

	if !a.Shared() || !b.Shared() {
		t.Fatal("both a and b should be shared after RefCopy")
	}
	if !a.Equal(b) {
		t.Fatal("a and b should have identical logical content")
	}

	if a.PushBack(9) {
		t.Fatal("PushBack on a should fail after RefCopy")
	}
	if b.PushBack(9) {
		t.Fatal("PushBack on b should fail after RefCopy")
	}
	if a.PopBack() {
		t.Fatal("PopBack on a should fail after RefCopy")
	}
}

func TestMsg_ClearOnSharedDoesNotAffectOther(t *testing.T) {
	p := pool.New(8, 4)
	a := msg.New(p)
	for _, v := range []byte{1, 2, 3} {
		a.PushBack(v)
	}
	usedBefore := p.UsedPages()

	b := msg.New(p)
	b.RefCopy(a)

	b.Clear()
	if got := b.Size(); got != 0 {
		t.Fatalf("b.Size() after Clear = %d, want 0", got)
	}
	if got := a.Size(); got != 3 {
		t.Fatalf("a.Size() after b.Clear() = %d, want 3 (unaffected)", got)
	}
	// a still holds its references; pool usage should not have dropped
	// below what a alone needs.
	if p.UsedPages() < usedBefore {
		t.Fatalf("UsedPages() dropped below pre-share level: %d < %d", p.UsedPages(), usedBefore)
	}

	a.Clear()
	if got := p.UsedPages(); got != 0 {
		t.Fatalf("UsedPages() after both cleared = %d, want 0", got)
	}
}

func TestMsg_RefCopyIsNotValueCopy(t *testing.T) {
	p := pool.New(4, 4)
	a := msg.New(p)
	a.PushBack(42)
	before := p.UsedPages()

	b := msg.New(p)
	b.RefCopy(a)

	if got := p.UsedPages(); got != before {
		t.Fatalf("RefCopy should not acquire new pages: UsedPages() = %d, want %d", got, before)
	}
}
