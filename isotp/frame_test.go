// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

import (
	"bytes"
	"testing"
	"time"
)

func TestBuildSF_NormalAddressing(t *testing.T) {
	cfg := &Config{}
	buf := make([]byte, FrameBytes)
	n := buildSF(buf, cfg, []byte{1, 2, 3})
	if n != 4 {
		t.Fatalf("n = %d, want 4", n)
	}
	if buf[0] != 0x03 {
		t.Fatalf("N_PCI byte = %#x, want 0x03", buf[0])
	}
	frame, ok := parseFrame(buf[:n], cfg)
	if !ok || frame.typ != SF || frame.dl != 3 {
		t.Fatalf("parseFrame = %+v, ok=%v", frame, ok)
	}
	if !bytes.Equal(frame.payload, []byte{1, 2, 3}) {
		t.Fatalf("payload = %v, want [1 2 3]", frame.payload)
	}
}

func TestBuildSF_ExtendedAddressing(t *testing.T) {
	cfg := &Config{ExtendedAddressing: true, SourceAddr: 0xAA, TargetAddr: 0xBB}
	buf := make([]byte, FrameBytes)
	n := buildSF(buf, cfg, []byte{9, 9})
	if buf[0] != 0xBB {
		t.Fatalf("address byte = %#x, want 0xBB", buf[0])
	}
	if !addressMatches([]byte{0xAA, 0x02, 9, 9}, &Config{ExtendedAddressing: true, SourceAddr: 0xAA}) {
		t.Fatal("expected address match")
	}
	if addressMatches([]byte{0xCC, 0x02, 9, 9}, &Config{ExtendedAddressing: true, SourceAddr: 0xAA}) {
		t.Fatal("expected address mismatch to be detected")
	}
	_ = n
}

func TestBuildSF_ZeroPadding(t *testing.T) {
	cfg := &Config{ZeroPadding: true}
	buf := make([]byte, FrameBytes)
	n := buildSF(buf, cfg, []byte{1})
	if n != FrameBytes {
		t.Fatalf("n = %d, want %d (padded)", n, FrameBytes)
	}
	for i := 2; i < FrameBytes; i++ {
		if buf[i] != 0 {
			t.Fatalf("buf[%d] = %#x, want 0 (padding)", i, buf[i])
		}
	}
}

func TestBuildFF_AndParse(t *testing.T) {
	cfg := &Config{}
	buf := make([]byte, FrameBytes)
	payload := []byte{1, 2, 3, 4, 5, 6}
	n := buildFF(buf, cfg, 100, payload)
	frame, ok := parseFrame(buf[:n], cfg)
	if !ok || frame.typ != FF || frame.dl != 100 {
		t.Fatalf("parseFrame = %+v, ok=%v", frame, ok)
	}
	if !bytes.Equal(frame.payload, payload) {
		t.Fatalf("payload = %v, want %v", frame.payload, payload)
	}
}

func TestBuildCF_SNRoundTrip(t *testing.T) {
	cfg := &Config{}
	buf := make([]byte, FrameBytes)
	n := buildCF(buf, cfg, 7, []byte{1, 2, 3, 4, 5, 6, 7})
	frame, ok := parseFrame(buf[:n], cfg)
	if !ok || frame.typ != CF || frame.sn != 7 {
		t.Fatalf("parseFrame = %+v, ok=%v", frame, ok)
	}
}

func TestBuildFC_AndParse(t *testing.T) {
	cfg := &Config{}
	buf := make([]byte, FrameBytes)
	n := buildFC(buf, cfg, CTS, 8, 20*time.Millisecond)
	frame, ok := parseFrame(buf[:n], cfg)
	if !ok || frame.typ != FC || frame.fs != CTS || frame.bs != 8 {
		t.Fatalf("parseFrame = %+v, ok=%v", frame, ok)
	}
	if frame.stMin != 20*time.Millisecond {
		t.Fatalf("stMin = %v, want 20ms", frame.stMin)
	}
}

func TestSTminEncodeDecode(t *testing.T) {
	cases := []time.Duration{
		0, time.Millisecond, 50 * time.Millisecond, 127 * time.Millisecond,
		200 * time.Microsecond, 900 * time.Microsecond,
	}
	for _, d := range cases {
		got := decodeSTmin(encodeSTmin(d))
		if got != d {
			t.Errorf("round trip %v -> %#x -> %v", d, encodeSTmin(d), got)
		}
	}
}

func TestSfMaxAndCfMax_Addressing(t *testing.T) {
	normal := &Config{}
	ext := &Config{ExtendedAddressing: true}
	if got := sfMax(normal); got != 7 {
		t.Errorf("sfMax(normal) = %d, want 7", got)
	}
	if got := sfMax(ext); got != 6 {
		t.Errorf("sfMax(ext) = %d, want 6", got)
	}
	if got := ffFirstLen(normal); got != 6 {
		t.Errorf("ffFirstLen(normal) = %d, want 6", got)
	}
	if got := ffFirstLen(ext); got != 5 {
		t.Errorf("ffFirstLen(ext) = %d, want 5", got)
	}
	if got := cfMax(normal); got != 7 {
		t.Errorf("cfMax(normal) = %d, want 7", got)
	}
	if got := cfMax(ext); got != 6 {
		t.Errorf("cfMax(ext) = %d, want 6", got)
	}
}
