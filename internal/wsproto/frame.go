// Package wsproto implements the WebSocket wire protocol pieces the
// signalling server needs: frame parsing, text frame construction and the
// handshake accept token. Parsing and construction are pure functions with
// no shared state.
package wsproto

import (
	"encoding/binary"
	"errors"
	"math"
)

const (
	// MaxPayloadSize bounds the declared payload length of an inbound
	// frame. The server reads client frames through a fixed receive
	// buffer, so any frame claiming more than this cannot be delivered
	// in one piece and is rejected instead of used as an allocation size.
	MaxPayloadSize = 64 * 1024

	maxBaseHeaderLen = 2 + 8 + 4 // base header + 64-bit length + mask key
)

var (
	// ErrIncompleteFrame reports that the buffer does not yet hold the
	// whole frame (header or payload). Not a protocol violation: the
	// caller may retry once more bytes arrive.
	ErrIncompleteFrame = errors.New("wsproto: incomplete frame")

	// ErrFrameTooLarge reports a declared payload length beyond
	// MaxPayloadSize or one whose header+payload size overflows.
	ErrFrameTooLarge = errors.New("wsproto: declared payload too large")
)

// Frame is one parsed WebSocket frame. Immutable once returned by
// ParseFrame; the payload is unmasked.
type Frame struct {
	Fin     bool
	Opcode  Opcode
	Masked  bool
	Mask    [4]byte
	Payload []byte
}

// ParseFrame decodes a single frame from buf and returns it together with
// the number of bytes consumed. Only the length and mask header fields are
// interpreted; the opcode is carried through untouched.
//
// The declared payload length is validated before it is used for any
// slicing or allocation: lengths beyond MaxPayloadSize, or ones whose
// header+payload sum would overflow, fail with ErrFrameTooLarge. A buffer
// shorter than the computed frame size fails with ErrIncompleteFrame.
func ParseFrame(buf []byte) (Frame, int, error) {
	if len(buf) < 2 {
		return Frame{}, 0, ErrIncompleteFrame
	}

	frame := Frame{
		Fin:    buf[0]&0x80 != 0,
		Opcode: Opcode(buf[0] & 0x0F),
		Masked: buf[1]&0x80 != 0,
	}

	payloadLen := uint64(buf[1] & 0x7F)
	headerLen := uint64(2)

	switch payloadLen {
	case 126:
		if len(buf) < 4 {
			return Frame{}, 0, ErrIncompleteFrame
		}
		payloadLen = uint64(binary.BigEndian.Uint16(buf[2:4]))
		headerLen = 4
	case 127:
		if len(buf) < 10 {
			return Frame{}, 0, ErrIncompleteFrame
		}
		payloadLen = binary.BigEndian.Uint64(buf[2:10])
		headerLen = 10
	}

	if frame.Masked {
		headerLen += 4
	}

	// Reject before the length can feed an allocation or slice bound.
	if payloadLen > MaxPayloadSize || payloadLen > math.MaxUint64-maxBaseHeaderLen {
		return Frame{}, 0, ErrFrameTooLarge
	}

	total := headerLen + payloadLen
	if uint64(len(buf)) < total {
		return Frame{}, 0, ErrIncompleteFrame
	}

	if frame.Masked {
		copy(frame.Mask[:], buf[headerLen-4:headerLen])
	}

	payload := make([]byte, payloadLen)
	copy(payload, buf[headerLen:total])
	if frame.Masked {
		for i := range payload {
			payload[i] ^= frame.Mask[i%4]
		}
	}
	frame.Payload = payload

	return frame, int(total), nil
}

// BuildTextFrame encodes payload as a single unfragmented text frame
// (FIN set, opcode 0x1). Server-to-client frames are never masked.
// The returned slice is exactly header+payload bytes.
func BuildTextFrame(payload []byte) []byte {
	headerLen := 2
	switch {
	case len(payload) > 65535:
		headerLen = 10
	case len(payload) > 125:
		headerLen = 4
	}

	frame := make([]byte, headerLen+len(payload))
	frame[0] = 0x80 | byte(OpcodeText)

	switch headerLen {
	case 10:
		frame[1] = 127
		binary.BigEndian.PutUint64(frame[2:10], uint64(len(payload)))
	case 4:
		frame[1] = 126
		binary.BigEndian.PutUint16(frame[2:4], uint16(len(payload)))
	default:
		frame[1] = byte(len(payload))
	}

	copy(frame[headerLen:], payload)
	return frame
}
