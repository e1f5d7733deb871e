package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppConfigDefaults(t *testing.T) {
	cfg, err := LoadAppConfig(t.TempDir())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.MaxClients != 10 {
		t.Errorf("default maxClients = %d, want 10", cfg.Server.MaxClients)
	}
	if cfg.Server.RecvBufferSize != 65536 {
		t.Errorf("default recvBufferSize = %d, want 65536", cfg.Server.RecvBufferSize)
	}
	if cfg.Security.AdminCredential != nil {
		t.Error("default admin credential should be unset")
	}
}

func TestLoadAppConfigYamlOverride(t *testing.T) {
	dir := t.TempDir()
	server := "port: 9000\nmaxClients: 3\n"
	if err := os.WriteFile(filepath.Join(dir, "server.yaml"), []byte(server), 0o644); err != nil {
		t.Fatal(err)
	}
	ice := "turnServer: turn:turn.example.com:3478\nturnUsername: u\nturnPassword: p\n"
	if err := os.WriteFile(filepath.Join(dir, "ice.yaml"), []byte(ice), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Server.MaxClients != 3 {
		t.Errorf("maxClients = %d, want 3", cfg.Server.MaxClients)
	}
	// Values absent from the file keep their defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want default", cfg.Server.Host)
	}
	if cfg.ICE.TurnServer != "turn:turn.example.com:3478" {
		t.Errorf("turnServer = %q", cfg.ICE.TurnServer)
	}
	if cfg.ICE.StunServer == "" {
		t.Error("default stun server lost in merge")
	}
}

func TestWebRTCConfiguration(t *testing.T) {
	ice := ICEConfig{
		StunServer:   "stun:stun.example.com:3478",
		TurnServer:   "turn:turn.example.com:3478",
		TurnUsername: "user",
		TurnPassword: "pass",
	}

	pc := ice.WebRTCConfiguration()
	if len(pc.ICEServers) != 2 {
		t.Fatalf("got %d ICE servers, want 2", len(pc.ICEServers))
	}
	if pc.ICEServers[0].URLs[0] != ice.StunServer {
		t.Errorf("first server = %v, want stun", pc.ICEServers[0].URLs)
	}
	if pc.ICEServers[1].Username != "user" {
		t.Errorf("turn username = %q", pc.ICEServers[1].Username)
	}

	if empty := (ICEConfig{}).WebRTCConfiguration(); len(empty.ICEServers) != 0 {
		t.Errorf("empty config produced %d ICE servers", len(empty.ICEServers))
	}
}
