package vault

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Params carries the program identities the engine checks against. The
// deploying program's own identity is injected here rather than read from a
// global so that hosts and tests can run several programs side by side.
type Params struct {
	// ProgramID is the identity of this program. Ledger records are owned by
	// it and derived addresses are derived from it.
	ProgramID solana.PublicKey

	// TokenProgramID identifies the external token program that owns all
	// custody accounts and mints.
	TokenProgramID solana.PublicKey

	// SystemProgramID marks unallocated accounts and handles record creation.
	SystemProgramID solana.PublicKey

	// RentSysvarID is the rent parameter account required by Initialize.
	RentSysvarID solana.PublicKey
}

// DefaultParams returns Params for the given program identity with the
// well-known token, system and rent identities filled in.
func DefaultParams(programID solana.PublicKey) Params {
	return Params{
		ProgramID:       programID,
		TokenProgramID:  solana.TokenProgramID,
		SystemProgramID: solana.SystemProgramID,
		RentSysvarID:    solana.SysVarRentPubkey,
	}
}

// Validate reports whether every identity is set.
func (p Params) Validate() error {
	if p.ProgramID.IsZero() {
		return fmt.Errorf("program id is not set: %w", ErrInvalidInput)
	}
	if p.TokenProgramID.IsZero() || p.SystemProgramID.IsZero() || p.RentSysvarID.IsZero() {
		return fmt.Errorf("well-known program ids are not set: %w", ErrInvalidInput)
	}
	return nil
}
