// Package api defines the JSON shapes exchanged over the signalling
// WebSocket. The server core passes these payloads through verbatim; the
// types exist for the media engine side of the connection and for tests.
package api

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
)

type MessageType string

const (
	MessageTypeRequestOffer = MessageType("request-offer")
	MessageTypeOffer        = MessageType("offer")
	MessageTypeAnswer       = MessageType("answer")
	MessageTypeIceCandidate = MessageType("ice-candidate")
)

// Message is one signalling message. Exactly one of the body fields is set,
// matching Type; request-offer carries no body.
type Message struct {
	Type      MessageType                `json:"type"`
	Offer     *webrtc.SessionDescription `json:"offer,omitempty"`
	Answer    *webrtc.SessionDescription `json:"answer,omitempty"`
	Candidate *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
}

// Decode parses one text frame payload into a Message.
func Decode(payload []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Encode renders m for transmission in a text frame.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}
