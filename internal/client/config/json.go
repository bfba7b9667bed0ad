package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/visitorhub/internal/flagx"
	"github.com/dmitrijs2005/visitorhub/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI config file.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	Token              string         `json:"token"`
	SessionDir         string         `json:"session_dir"`
}

// parseJson overlays cfg with the non-empty values of the file named by -c
// or -config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.Token != "" {
		cfg.Token = jc.Token
	}
	if jc.SessionDir != "" {
		cfg.SessionDir = jc.SessionDir
	}
}
