package config

import "time"

// Config holds runtime settings for the visitorhub CLI.
type Config struct {
	ServerEndpointAddr string        `env:"VISITORHUB_SERVER_ADDR"`
	RequestTimeout     time.Duration `env:"VISITORHUB_REQUEST_TIMEOUT"`
	Token              string        `env:"VISITORHUB_TOKEN"`
	// SessionDir holds session.db; empty means the user's config directory.
	SessionDir string `env:"VISITORHUB_SESSION_DIR"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
