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
		{name: "address and timeout", args: []string{"cmd", "-a", "127.0.0.1:9090", "-t", "10"},
			expected: &Config{ServerEndpointAddr: "127.0.0.1:9090", RequestTimeout: 10 * time.Second}},
		{name: "positional command is ignored", args: []string{"cmd", "-a", "h:1", "me"},
			expected: &Config{ServerEndpointAddr: "h:1", RequestTimeout: 5 * time.Second}},
		{name: "incorrect timeout", args: []string{"cmd", "-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{RequestTimeout: 5 * time.Second}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
