package config

import (
	"encoding/json"
	"os"

	"github.com/TanmayDhobale/splvault/internal/flagx"
	"github.com/TanmayDhobale/splvault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify durations either as
// strings like "1h" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerEndpointAddr    string         `json:"server_endpoint_addr"`
	ProgramID             string         `json:"program_id"`
	Operator              string         `json:"operator"`
	SecretKey             string         `json:"secret_key"`
	KeystoreDir           string         `json:"keystore_dir"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	OnlineCheckInterval   timex.Duration `json:"online_check_interval"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// The DTO is prefilled from the current Config before unmarshalling, so
// fields omitted from the file keep their current values. Panics on read
// or unmarshal errors.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	jc := JsonConfig{
		ServerEndpointAddr:    cfg.ServerEndpointAddr,
		ProgramID:             cfg.ProgramID,
		Operator:              cfg.Operator,
		SecretKey:             cfg.SecretKey,
		KeystoreDir:           cfg.KeystoreDir,
		TokenValidityDuration: timex.Duration{Duration: cfg.TokenValidityDuration},
		OnlineCheckInterval:   timex.Duration{Duration: cfg.OnlineCheckInterval},
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.ProgramID = jc.ProgramID
	cfg.Operator = jc.Operator
	cfg.SecretKey = jc.SecretKey
	cfg.KeystoreDir = jc.KeystoreDir
	cfg.TokenValidityDuration = jc.TokenValidityDuration.Duration
	cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
}
