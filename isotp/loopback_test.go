// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

import (
	"testing"
	"time"

	"code.hybscloud.com/devstack"
	"code.hybscloud.com/devstack/internal/testlayer"
	"code.hybscloud.com/devstack/msg"
	"code.hybscloud.com/devstack/pool"
)

// bus wires two Recorders back to back: whatever A sends is delivered to
// B's Protocol.Receive, and vice versa, standing in for a shared CAN bus
// (§8's "Loopback CAN-TP: two stacks A<->B").
type bus struct {
	aOut *testlayer.Recorder
	bOut *testlayer.Recorder
	a    *Protocol
	b    *Protocol
	id   devstack.EID
}

// pump drains both directions' outgoing frames, delivering each to the
// peer's Receive and acking the sender with a simulated TxDone, until the
// deadline expires. It always runs for the full period, since CFs are
// emitted later by timers and a pass may see no frame mid-transfer.
func (bus *bus) pump(t *testing.T, p *pool.Pool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		moved := false
		for _, f := range bus.aOut.Sent() {
			moved = true
			m := msg.New(p)
			m.Put(f.Payload)
			bus.b.Receive(m, bus.id, false)
			bus.a.Indication(devstack.TxDone, bus.id)
		}
		for _, f := range bus.bOut.Sent() {
			moved = true
			m := msg.New(p)
			m.Put(f.Payload)
			bus.a.Receive(m, bus.id, false)
			bus.b.Indication(devstack.TxDone, bus.id)
		}
		if !moved {
			time.Sleep(2 * time.Millisecond)
		}
	}
}

func TestProtocol_LoopbackMultiFrameRoundTrip(t *testing.T) {
	p := pool.New(64, 32)
	p.ClearUsedPagesMax()
	baseline := p.UsedPages()

	aOut := testlayer.New()
	bOut := testlayer.New()
	a := New(p, WithSTmin(time.Millisecond), WithBlockSize(2))
	b := New(p, WithSTmin(time.Millisecond), WithBlockSize(2))
	a.SetLower(aOut, a)
	b.SetLower(bOut, b)
	aSink := newAppSink()
	bSink := newAppSink()
	aSink.SetLower(a, aSink)
	bSink.SetLower(b, bSink)

	id := devstack.IPv4EID(127, 0, 0, 1, 7)
	if err := a.Open(id); err != nil {
		t.Fatalf("a.Open: %v", err)
	}
	if err := b.Open(id); err != nil {
		t.Fatalf("b.Open: %v", err)
	}

	payload := make([]byte, 30)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	m := msg.New(p)
	m.Put(payload)
	if err := a.Send(m, id, false); err != nil {
		t.Fatalf("a.Send: %v", err)
	}

	bus := &bus{aOut: aOut, bOut: bOut, a: a, b: b, id: id}
	bus.pump(t, p)

	got, ok := bSink.lastReceived()
	if !ok {
		t.Fatal("b never reassembled the message sent by a")
	}
	if len(got) != len(payload) {
		t.Fatalf("reassembled length = %d, want %d", len(got), len(payload))
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("byte %d = %d, want %d", i, got[i], payload[i])
		}
	}

	a.Close(id)
	b.Close(id)

	if used := p.UsedPages(); used != baseline {
		t.Fatalf("UsedPages() after loopback+close = %d, want baseline %d", used, baseline)
	}
}
