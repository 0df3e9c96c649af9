// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

import (
	"sync"

	"code.hybscloud.com/devstack"
	"code.hybscloud.com/devstack/internal/testlayer"
	"code.hybscloud.com/devstack/msg"
	"code.hybscloud.com/devstack/pool"
)

// appSink stands in for the application/device layer above a Protocol
// under test: it records every message and status delivered upward.
type appSink struct {
	devstack.Base

	mu       sync.Mutex
	received [][]byte
	statuses []devstack.Status
}

func newAppSink() *appSink { return &appSink{} }

func (s *appSink) Open(devstack.EID) error { return nil }
func (s *appSink) Close(devstack.EID)      {}

func (s *appSink) Send(*msg.Msg, devstack.EID, bool) error {
	return nil
}

func (s *appSink) Receive(m *msg.Msg, id devstack.EID, more bool) {
	buf := make([]byte, m.Size())
	m.Get(buf, 0)
	m.Clear()
	s.mu.Lock()
	s.received = append(s.received, buf)
	s.mu.Unlock()
}

func (s *appSink) Indication(status devstack.Status, id devstack.EID) {
	s.mu.Lock()
	s.statuses = append(s.statuses, status)
	s.mu.Unlock()
}

func (s *appSink) lastReceived() ([]byte, bool) {
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

// newTestProtocol wires a Recorder communicator below and an appSink
// device above a fresh Protocol, returning all three.
func newTestProtocol(p *pool.Pool, opts ...Option) (*Protocol, *testlayer.Recorder, *appSink) {
	rec := testlayer.New()
	proto := New(p, opts...)
	proto.SetLower(rec, proto)
	sink := newAppSink()
	sink.SetLower(proto, sink)
	return proto, rec, sink
}
