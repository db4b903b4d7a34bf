// Package config loads runtime configuration for the vault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the vault daemon HTTP API
//	-r string   program identity (base58), empty selects the dev identity
//	-o string   operator name embedded in minted tokens
//	-s string   shared secret for operator tokens
//	-k string   keystore directory
//	-t int      operator token validity (minutes)
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for durations, so values can be either
// strings like "1h" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:8080",
//	  "operator": "ops-1",
//	  "keystore_dir": "/var/lib/splvault/keys",
//	  "token_validity_duration": "1h",
//	  "online_check_interval": "3s"
//	}
//
// Primary API
//
//   - type Config                     — runtime settings for the CLI
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
