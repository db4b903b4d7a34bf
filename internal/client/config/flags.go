package config

import (
	"flag"
	"os"
	"time"

	"github.com/TanmayDhobale/splvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the vault daemon HTTP API
//	-r string   program identity (base58), empty selects the dev identity
//	-o string   operator name embedded in minted tokens
//	-s string   shared secret for operator tokens
//	-k string   keystore directory
//	-t int      operator token validity in minutes
//	-i int      online check interval in seconds
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-r", "-o", "-s", "-k", "-t", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the vault daemon")
	fs.StringVar(&cfg.ProgramID, "r", cfg.ProgramID, "program identity (base58)")
	fs.StringVar(&cfg.Operator, "o", cfg.Operator, "operator name")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "shared secret for operator tokens")
	fs.StringVar(&cfg.KeystoreDir, "k", cfg.KeystoreDir, "keystore directory")
	tokenValidity := fs.Int("t", int(cfg.TokenValidityDuration.Minutes()), "operator token validity (in minutes)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
