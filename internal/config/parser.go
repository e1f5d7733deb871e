package config

type RawServerConfig struct {
	Host           *string `yaml:"host" json:"host"`
	Port           *int    `yaml:"port" json:"port"`
	MaxClients     *int    `yaml:"maxClients" json:"maxClients"`
	RecvBufferSize *int    `yaml:"recvBufferSize" json:"recvBufferSize"`
}

func (r RawServerConfig) ToDomain() ServerConfig {
	var cfg ServerConfig
	if r.Host != nil {
		cfg.Host = *r.Host
	}
	if r.Port != nil {
		cfg.Port = *r.Port
	}
	if r.MaxClients != nil {
		cfg.MaxClients = *r.MaxClients
	}
	if r.RecvBufferSize != nil {
		cfg.RecvBufferSize = *r.RecvBufferSize
	}
	return cfg
}

type RawICEConfig struct {
	StunServer   *string `yaml:"stunServer" json:"stunServer"`
	TurnServer   *string `yaml:"turnServer" json:"turnServer"`
	TurnUsername *string `yaml:"turnUsername" json:"turnUsername"`
	TurnPassword *string `yaml:"turnPassword" json:"turnPassword"`
}

func (r RawICEConfig) ToDomain() ICEConfig {
	var cfg ICEConfig
	if r.StunServer != nil {
		cfg.StunServer = *r.StunServer
	}
	if r.TurnServer != nil {
		cfg.TurnServer = *r.TurnServer
	}
	if r.TurnUsername != nil {
		cfg.TurnUsername = *r.TurnUsername
	}
	if r.TurnPassword != nil {
		cfg.TurnPassword = *r.TurnPassword
	}
	return cfg
}

type RawSecurityConfig struct {
	AdminCredential *string `yaml:"adminCredential" json:"adminCredential"`
}

func (r RawSecurityConfig) ToDomain() SecurityConfig {
	return SecurityConfig{AdminCredential: r.AdminCredential}
}

type RawOpsConfig struct {
	Disabled *bool `yaml:"disabled" json:"disabled"`
	Port     *int  `yaml:"port" json:"port"`
}

func (r RawOpsConfig) ToDomain() OpsConfig {
	var cfg OpsConfig
	if r.Disabled != nil {
		cfg.Disabled = *r.Disabled
	}
	if r.Port != nil {
		cfg.Port = *r.Port
	}
	return cfg
}
