package wsproto

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestBuildParseRoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, 125, 126, 65535, 65536} {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i)
		}

		raw := BuildTextFrame(payload)
		frame, consumed, err := ParseFrame(raw)
		if err != nil {
			t.Fatalf("size %d: parse failed: %v", size, err)
		}
		if consumed != len(raw) {
			t.Errorf("size %d: consumed %d bytes, frame is %d", size, consumed, len(raw))
		}
		if !frame.Fin {
			t.Errorf("size %d: FIN not set", size)
		}
		if frame.Opcode != OpcodeText {
			t.Errorf("size %d: opcode = %v, want text", size, frame.Opcode)
		}
		if frame.Masked {
			t.Errorf("size %d: server frame must not be masked", size)
		}
		if !bytes.Equal(frame.Payload, payload) {
			t.Errorf("size %d: payload does not round-trip", size)
		}
	}
}

func TestBuildTextFrameLengthEncoding(t *testing.T) {
	tests := []struct {
		size      int
		headerLen int
		marker    byte
	}{
		{0, 2, 0},
		{125, 2, 125},
		{126, 4, 126},
		{65535, 4, 126},
		{65536, 10, 127},
	}
	for _, tt := range tests {
		raw := BuildTextFrame(make([]byte, tt.size))
		if len(raw) != tt.headerLen+tt.size {
			t.Errorf("size %d: frame length = %d, want %d", tt.size, len(raw), tt.headerLen+tt.size)
		}
		if raw[1] != tt.marker {
			t.Errorf("size %d: length marker = %d, want %d", tt.size, raw[1], tt.marker)
		}
	}
}

func TestParseFrameUnmasks(t *testing.T) {
	mask := [4]byte{1, 2, 3, 4}
	payload := []byte("AB")

	raw := []byte{0x81, 0x80 | byte(len(payload))}
	raw = append(raw, mask[:]...)
	for i, b := range payload {
		raw = append(raw, b^mask[i%4])
	}

	frame, _, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !frame.Masked {
		t.Error("mask bit not reported")
	}
	if frame.Mask != mask {
		t.Errorf("mask = %v, want %v", frame.Mask, mask)
	}
	if !bytes.Equal(frame.Payload, payload) {
		t.Errorf("payload = %q, want %q", frame.Payload, payload)
	}
}

func TestParseFrameIncomplete(t *testing.T) {
	truncatedExtended := []byte{0x81, 126, 0x01} // 16-bit length cut short

	declared64 := []byte{0x81, 127}
	declared64 = append(declared64, make([]byte, 4)...) // 64-bit length cut short

	full := BuildTextFrame([]byte("hello"))

	cases := [][]byte{
		nil,
		{0x81},
		truncatedExtended,
		declared64,
		full[:len(full)-1],
	}
	for i, buf := range cases {
		if _, _, err := ParseFrame(buf); !errors.Is(err, ErrIncompleteFrame) {
			t.Errorf("case %d: err = %v, want ErrIncompleteFrame", i, err)
		}
	}
}

func TestParseFrameRejectsOversizedLength(t *testing.T) {
	// A header declaring a payload far beyond anything one recv could
	// deliver must be rejected, not used to size a buffer.
	for _, declared := range []uint64{MaxPayloadSize + 1, 1 << 40, 1<<64 - 1} {
		raw := []byte{0x81, 127}
		var ext [8]byte
		binary.BigEndian.PutUint64(ext[:], declared)
		raw = append(raw, ext[:]...)

		if _, _, err := ParseFrame(raw); !errors.Is(err, ErrFrameTooLarge) {
			t.Errorf("declared %d: err = %v, want ErrFrameTooLarge", declared, err)
		}
	}
}

func TestParseFrameConsumesSingleFrame(t *testing.T) {
	first := BuildTextFrame([]byte("one"))
	second := BuildTextFrame([]byte("two"))
	buf := append(append([]byte{}, first...), second...)

	frame, consumed, err := ParseFrame(buf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if string(frame.Payload) != "one" {
		t.Errorf("payload = %q, want %q", frame.Payload, "one")
	}
	if consumed != len(first) {
		t.Errorf("consumed = %d, want %d", consumed, len(first))
	}
}
