package wsproto

import (
	"crypto/sha1"
	"encoding/base64"
)

// websocketGUID is the fixed GUID from RFC 6455 section 1.3.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// AcceptKey computes the Sec-WebSocket-Accept value for a client-supplied
// Sec-WebSocket-Key. The key is not base64-decoded; the token is
// base64(SHA-1(key + GUID)) over the literal header value.
func AcceptKey(clientKey string) string {
	sum := sha1.Sum([]byte(clientKey + websocketGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}
