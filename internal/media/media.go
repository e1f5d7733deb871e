// Package media defines the contract between the signalling core and the
// media engine: the frame type pushed into the server, the sink interface
// the engine drives, and the opaque peer handle the engine attaches to a
// registered client.
package media

// Frame is one decoded video frame handed to the sink. Data holds payload
// chunks without copying; the frame must not be retained after Push returns.
type Frame struct {
	Timestamp uint32 // milliseconds
	KeyFrame  bool
	Data      [][]byte
}

// Size returns the total payload size in bytes.
func (f Frame) Size() int {
	n := 0
	for _, chunk := range f.Data {
		n += len(chunk)
	}
	return n
}

// CodecContext describes the stream handed to Sink.Open.
type CodecContext struct {
	MimeType  string
	ClockRate uint32
	Width     int
	Height    int
}

// PeerHandle is an opaque reference to an engine-owned peer connection.
// The engine creates and releases it; the signalling core only stores the
// reference on a client and clears it on disconnect.
type PeerHandle interface{}

// Sink receives the decoded stream from the media engine. Open is called
// once before the first frame, Close once on stream teardown.
type Sink interface {
	Open(ctx CodecContext) error
	Push(frame Frame) error
	Close()
}

// PeerTransport encodes a frame into a transport payload and sends it over
// the peer connection behind handle. This step belongs to the media engine;
// the core only fans frames out to it per connected client.
type PeerTransport interface {
	SendFrame(handle PeerHandle, frame Frame) error
}
