package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", ":8080", "-g", "127.0.0.1:9090", "-d", "db", "-s", "secret",
				"-t", "60", "-l", "debug", "-r", "localhost:6379", "-b", "avatars",
			},
			expected: &Config{
				EndpointAddrHTTP:            ":8080",
				EndpointAddrGRPC:            "127.0.0.1:9090",
				DatabaseDSN:                 "db",
				SecretKey:                   "secret",
				AccessTokenValidityDuration: time.Hour,
				LogLevel:                    "debug",
				RedisAddr:                   "localhost:6379",
				S3Bucket:                    "avatars",
			},
		},
		{
			name: "foreign flags are ignored",
			args: []string{"cmd", "-c", "cfg.json", "-d", "memory", "-test.v"},
			expected: &Config{
				DatabaseDSN: "memory",
			},
		},
		{
			name:        "bad minutes",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
