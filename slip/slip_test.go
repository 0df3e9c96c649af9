// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slip_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/devstack"
	"code.hybscloud.com/devstack/internal/testlayer"
	"code.hybscloud.com/devstack/msg"
	"code.hybscloud.com/devstack/pool"
	"code.hybscloud.com/devstack/slip"
)

type appSink struct {
	devstack.Base
	mu       sync.Mutex
	received [][]byte
	statuses []devstack.Status
}

func (s *appSink) Open(devstack.EID) error                { return nil }
func (s *appSink) Close(devstack.EID)                      {}
func (s *appSink) Send(*msg.Msg, devstack.EID, bool) error { return nil }
func (s *appSink) Receive(m *msg.Msg, id devstack.EID, more bool) {
	buf := make([]byte, m.Size())
	m.Get(buf, 0)
	s.mu.Lock()
	s.received = append(s.received, buf)
	s.mu.Unlock()
}
func (s *appSink) Indication(status devstack.Status, id devstack.EID) {
	s.mu.Lock()
	s.statuses = append(s.statuses, status)
	s.mu.Unlock()
}

func (s *appSink) last() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.received) == 0 {
		return nil, false
	}
	return s.received[len(s.received)-1], true
}

func (s *appSink) statusCount(want devstack.Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, st := range s.statuses {
		if st == want {
			n++
		}
	}
	return n
}

func newHarness(p *pool.Pool) (*slip.Protocol, *testlayer.Recorder, *appSink) {
	rec := testlayer.New()
	proto := slip.New(p)
	proto.SetLower(rec, proto)
	sink := &appSink{}
	sink.SetLower(proto, sink)
	return proto, rec, sink
}

func TestSlip_EncodePlainBytes(t *testing.T) {
	p := pool.New(16, 64)
	proto, rec, _ := newHarness(p)
	id := devstack.Any

	m := msg.New(p)
	m.Put([]byte{1, 2, 3})
	if err := proto.Send(m, id, false); err != nil {
		t.Fatalf("Send: %v", err)
	}

	frames := rec.Sent()
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	want := []byte{0xC0, 1, 2, 3, 0xC0}
	got := frames[0].Payload
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSlip_EncodeEscapesSpecialBytes(t *testing.T) {
	p := pool.New(16, 64)
	proto, rec, _ := newHarness(p)
	id := devstack.Any

	m := msg.New(p)
	m.Put([]byte{0xC0, 0xDB, 5})
	if err := proto.Send(m, id, false); err != nil {
		t.Fatalf("Send: %v", err)
	}

	frames := rec.Sent()
	want := []byte{0xC0, 0xDB, 0xDC, 0xDB, 0xDD, 5, 0xC0}
	got := frames[0].Payload
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestSlip_StreamingMoreDefersTransmission(t *testing.T) {
	p := pool.New(16, 64)
	proto, rec, sink := newHarness(p)
	id := devstack.Any

	m1 := msg.New(p)
	m1.Put([]byte{1, 2})
	if err := proto.Send(m1, id, true); err != nil {
		t.Fatalf("Send(more=true): %v", err)
	}
	if len(rec.Sent()) != 0 {
		t.Fatal("expected no downward frame while more=true")
	}
	if sink.statusCount(devstack.TxDone) != 1 {
		t.Fatal("expected a TxDone indication while streaming")
	}

	m2 := msg.New(p)
	m2.Put([]byte{3, 4})
	if err := proto.Send(m2, id, false); err != nil {
		t.Fatalf("Send(more=false): %v", err)
	}
	frames := rec.Sent()
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	want := []byte{0xC0, 1, 2, 3, 4, 0xC0}
	got := frames[0].Payload
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSlip_DecodeRoundTrip(t *testing.T) {
	p := pool.New(16, 64)
	proto, _, sink := newHarness(p)
	id := devstack.Any

	wire := []byte{0xC0, 1, 0xDB, 0xDC, 2, 0xDB, 0xDD, 3, 0xC0}
	m := msg.New(p)
	m.Put(wire)
	proto.Receive(m, id, false)

	got, ok := sink.last()
	if !ok {
		t.Fatal("decoder never delivered a frame")
	}
	want := []byte{1, 0xC0, 2, 0xDB, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestSlip_EmptyFramesDiscardedWithoutNotification(t *testing.T) {
	p := pool.New(16, 64)
	proto, _, sink := newHarness(p)
	id := devstack.Any

	m := msg.New(p)
	m.Put([]byte{0xC0, 0xC0, 0xC0})
	proto.Receive(m, id, false)

	if _, ok := sink.last(); ok {
		t.Fatal("back-to-back END bytes should not deliver any frame")
	}
	if got := proto.Stats().EmptyFramesDiscarded; got != 2 {
		t.Fatalf("EmptyFramesDiscarded = %d, want 2", got)
	}
}

func TestSlip_DecoderResyncsAfterGarbage(t *testing.T) {
	p := pool.New(16, 64)
	proto, _, sink := newHarness(p)
	id := devstack.Any

	m := msg.New(p)
	m.Put([]byte{9, 9, 0xC0, 7, 8, 0xC0})
	proto.Receive(m, id, false)

	got, ok := sink.last()
	if !ok {
		t.Fatal("decoder should sync on the first END and deliver the framed bytes")
	}
	want := []byte{7, 8}
	if len(got) != len(want) || got[0] != 7 || got[1] != 8 {
		t.Fatalf("got %v, want %v", got, want)
	}
}
