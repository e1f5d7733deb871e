package wsproto

import "testing"

func TestAcceptKey(t *testing.T) {
	// Fixture from RFC 6455 section 1.3.
	got := AcceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got != want {
		t.Errorf("AcceptKey = %q, want %q", got, want)
	}
}

func TestAcceptKeyVariesWithClientKey(t *testing.T) {
	a := AcceptKey("AQIDBAUGBwgJCgsMDQ4PEA==")
	b := AcceptKey("EA8ODQwLCgkIBwYFBAMCAQ==")
	if a == b {
		t.Error("accept token must depend on the client key")
	}
}
