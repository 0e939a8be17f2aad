package server

import "fmt"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// BodyLimitMB caps the size of uploaded objects.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"512"`
	// ReadOnly rejects PUT and DELETE on the gateway.
	ReadOnly bool `mapstructure:"read_only" default:"false"`
}

// Address returns the listen address for Port.
func (c Config) Address() string {
	return ":" + c.Port
}

// BodyLimit returns the request body limit in bytes.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return 4 << 20
	}
	return c.BodyLimitMB << 20
}

// Validate reports configuration that cannot start a server.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("server port is required")
	}
	return nil
}
