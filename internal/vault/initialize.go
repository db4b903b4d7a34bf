package vault

import (
	"context"
	"fmt"
)

// initialize creates the vault record for an (owner, mint) pair at its
// derived address and writes the opening state. Account order: owner, vault
// record, vault custody account, mint, token program, system program, rent
// sysvar.
func (e *Engine) initialize(ctx context.Context, accounts []*Account) error {
	rules := []AccountRule{
		{Name: "owner", Signer: true, Writable: true},
		{Name: "vault record", Writable: true},
		{Name: "vault token account", Writable: true, Owner: e.params.TokenProgramID, OwnerErr: ErrInvalidTokenAccount},
		{Name: "token mint", Owner: e.params.TokenProgramID, OwnerErr: ErrInvalidMint},
		{Name: "token program", Address: e.params.TokenProgramID, AddressErr: ErrInvalidTokenAccount},
		{Name: "system program", Address: e.params.SystemProgramID, AddressErr: ErrInvalidInput},
		{Name: "rent sysvar", Address: e.params.RentSysvarID, AddressErr: ErrInvalidInput},
	}
	if err := e.validator.Check(accounts, rules); err != nil {
		return err
	}

	owner := accounts[0]
	vaultAccount := accounts[1]
	vaultToken := accounts[2]
	mintAccount := accounts[3]

	if _, err := DecodeMint(mintAccount.Data); err != nil {
		return err
	}

	vaultTokenState, err := DecodeTokenAccount(vaultToken.Data)
	if err != nil {
		return err
	}
	if !vaultTokenState.Mint.Equals(mintAccount.Address) {
		return fmt.Errorf("vault token account holds mint %s, want %s: %w", vaultTokenState.Mint, mintAccount.Address, ErrInvalidMint)
	}

	derived, bump, err := DeriveVaultAddress(e.params.ProgramID, owner.Address, mintAccount.Address)
	if err != nil {
		return err
	}
	if !derived.Equals(vaultAccount.Address) {
		return fmt.Errorf("vault record address %s does not match derivation %s: %w", vaultAccount.Address, derived, ErrInvalidInput)
	}

	if err := verifyUnallocated(vaultAccount, e.params.SystemProgramID, "vault record"); err != nil {
		return err
	}

	required := e.alloc.MinimumBalance(VaultStateSize)
	if owner.Lamports < required {
		return fmt.Errorf("owner holds %d lamports, record needs %d: %w", owner.Lamports, required, ErrInvalidInput)
	}

	authority := VaultRecordSeedAuthority(e.params.ProgramID, owner.Address, mintAccount.Address, bump)
	if err := e.alloc.Create(ctx, vaultAccount, VaultStateSize, e.params.ProgramID, owner, authority); err != nil {
		e.log.Error(ctx, "vault record allocation failed", "vault", vaultAccount.Address, "error", err)
		return fmt.Errorf("allocate vault record: %w", ErrInvalidInput)
	}

	state := NewVaultState(owner.Address, mintAccount.Address, vaultToken.Address, bump)
	if err := e.storeVaultState(vaultAccount, state); err != nil {
		return err
	}

	e.log.Info(ctx, "vault initialized",
		"vault", vaultAccount.Address,
		"owner", owner.Address,
		"mint", mintAccount.Address,
		"token_account", vaultToken.Address,
		"bump", bump,
	)
	return nil
}
