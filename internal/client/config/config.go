package config

import "time"

// Config holds runtime settings for the vault CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the vault daemon HTTP API.
//   - ProgramID: base58 program identity; empty selects the shared dev identity.
//   - Operator: subject embedded in locally minted operator tokens.
//   - SecretKey: HMAC secret shared with the daemon for operator tokens.
//   - KeystoreDir: directory holding sealed signing keys.
//   - TokenValidityDuration: lifetime of a minted operator token.
//   - OnlineCheckInterval: how often the CLI probes daemon reachability.
type Config struct {
	ServerEndpointAddr    string
	ProgramID             string
	Operator              string
	SecretKey             string
	KeystoreDir           string
	TokenValidityDuration time.Duration
	OnlineCheckInterval   time.Duration
}

// LoadDefaults populates c with sensible defaults. The defaults pair with
// the daemon defaults: same secret, same (dev) program identity.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.ProgramID = ""
	c.Operator = "operator"
	c.SecretKey = "secretKey"
	c.KeystoreDir = ".splvault/keys"
	c.TokenValidityDuration = 60 * time.Minute
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
