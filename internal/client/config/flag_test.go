package config

import (
	"flag"
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

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK",
			args:        []string{"cmd", "-a", "http://127.0.0.1:9090", "-r", "Vault111", "-o", "ops-7", "-s", "s3cr3t", "-k", "/tmp/keys", "-t", "15", "-i", "10"},
			expectPanic: false,
			expected: &Config{
				ServerEndpointAddr:    "http://127.0.0.1:9090",
				ProgramID:             "Vault111",
				Operator:              "ops-7",
				SecretKey:             "s3cr3t",
				KeystoreDir:           "/tmp/keys",
				TokenValidityDuration: 15 * time.Minute,
				OnlineCheckInterval:   10 * time.Second,
			}},
		{name: "Test2 partial flags keep zero values",
			args:        []string{"cmd", "-o", "ops-7"},
			expectPanic: false,
			expected:    &Config{Operator: "ops-7"}},
		{name: "Test3 incorrect check interval",
			args: []string{"cmd", "-i", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

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
