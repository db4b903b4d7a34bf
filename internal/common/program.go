package common

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// DevProgramID is the ledger program identity used when none is configured.
// It is derived from a fixed seed so the daemon and the CLI agree on the
// same address without sharing a config file.
func DevProgramID() solana.PublicKey {
	return solana.PublicKey(sha256.Sum256([]byte("splvault/dev-program")))
}
