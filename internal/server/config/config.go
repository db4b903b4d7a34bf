// Package config handles configuration for the vault daemon,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the vault daemon.
//
// Fields:
//   - EndpointAddr: bind address for the public HTTP endpoint.
//   - ProgramID: base58 program identity. Empty selects the built-in dev identity.
//   - StoreBackend: account store flavor, one of memory, sqlite or postgres.
//   - StoreDSN: postgres DSN or sqlite file path, depending on the backend.
//   - SecretKey: HMAC secret for signing operator JWTs (HS256). Do not use test defaults in prod.
//   - TokenValidityDuration: operator token lifetime.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: snapshot archive settings. An
//     empty bucket disables archiving.
type Config struct {
	EndpointAddr          string
	ProgramID             string
	StoreBackend          string
	StoreDSN              string
	SecretKey             string
	TokenValidityDuration time.Duration
	S3RootUser            string
	S3RootPassword        string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.ProgramID = ""
	c.StoreBackend = "memory"
	c.StoreDSN = ""
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 60 * time.Minute
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
