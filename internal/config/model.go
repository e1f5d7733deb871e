package config

import "github.com/pion/webrtc/v4"

type AppConfig struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	ICE      ICEConfig      `json:"ice" yaml:"ice"`
	Security SecurityConfig `json:"security" yaml:"security"`
	Ops      OpsConfig      `json:"ops" yaml:"ops"`
}

type ServerConfig struct {
	Host           string `json:"host" yaml:"host"`
	Port           int    `json:"port" yaml:"port"`
	MaxClients     int    `json:"maxClients" yaml:"maxClients"`
	RecvBufferSize int    `json:"recvBufferSize" yaml:"recvBufferSize"`
}

// ICEConfig is accepted for the media engine's benefit; the signalling core
// itself never talks to STUN or TURN.
type ICEConfig struct {
	StunServer   string `json:"stunServer" yaml:"stunServer"`
	TurnServer   string `json:"turnServer" yaml:"turnServer"`
	TurnUsername string `json:"turnUsername" yaml:"turnUsername"`
	TurnPassword string `json:"turnPassword" yaml:"turnPassword"`
}

type SecurityConfig struct {
	AdminCredential *string `json:"adminCredential" yaml:"adminCredential"`
}

type OpsConfig struct {
	Disabled bool `json:"disabled" yaml:"disabled"`
	Port     int  `json:"port" yaml:"port"`
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			MaxClients:     10,
			RecvBufferSize: 65536,
		},
		ICE: ICEConfig{
			StunServer: "stun:stun.l.google.com:19302",
		},
		Security: SecurityConfig{
			AdminCredential: nil,
		},
		Ops: OpsConfig{
			Disabled: false,
			Port:     8081,
		},
	}
}

// WebRTCConfiguration maps the configured STUN/TURN servers onto a pion
// peer connection configuration, handed to the media engine untouched.
func (c ICEConfig) WebRTCConfiguration() webrtc.Configuration {
	var servers []webrtc.ICEServer
	if c.StunServer != "" {
		servers = append(servers, webrtc.ICEServer{URLs: []string{c.StunServer}})
	}
	if c.TurnServer != "" {
		servers = append(servers, webrtc.ICEServer{
			URLs:       []string{c.TurnServer},
			Username:   c.TurnUsername,
			Credential: c.TurnPassword,
		})
	}
	return webrtc.Configuration{ICEServers: servers}
}
