package vault

import (
	"context"
	"fmt"
)

// close sweeps any remaining custody holdings to the owner and marks the
// vault closed. The record stays on the ledger so later instructions fail
// with a closed-vault error instead of a missing-account one. Account
// order: owner, owner token account, vault token account, vault record,
// token program.
func (e *Engine) close(ctx context.Context, accounts []*Account) error {
	rules := []AccountRule{
		{Name: "owner", Signer: true},
		{Name: "owner token account", Writable: true},
		{Name: "vault token account", Writable: true},
		{Name: "vault record", Writable: true},
		{Name: "token program", Address: e.params.TokenProgramID, AddressErr: ErrInvalidTokenAccount},
	}
	if err := e.validator.Check(accounts, rules); err != nil {
		return err
	}

	owner := accounts[0]
	ownerToken := accounts[1]
	vaultToken := accounts[2]
	vaultAccount := accounts[3]

	state, err := e.loadVaultState(vaultAccount)
	if err != nil {
		return err
	}
	if !state.IsOperational() {
		return fmt.Errorf("vault %s: %w", vaultAccount.Address, ErrVaultClosed)
	}
	if !owner.Address.Equals(state.Owner) {
		return fmt.Errorf("signer %s is not the vault owner: %w", owner.Address, ErrUnauthorizedAccess)
	}

	if err := verifyAccountOwner(ownerToken, e.params.TokenProgramID, ErrInvalidTokenAccount); err != nil {
		return err
	}
	if err := verifyAccountOwner(vaultToken, e.params.TokenProgramID, ErrInvalidTokenAccount); err != nil {
		return err
	}

	ownerTokenState, err := DecodeTokenAccount(ownerToken.Data)
	if err != nil {
		return err
	}
	if !ownerTokenState.Mint.Equals(state.TokenMint) {
		return fmt.Errorf("owner token account holds mint %s, vault expects %s: %w", ownerTokenState.Mint, state.TokenMint, ErrInvalidMint)
	}

	vaultTokenState, err := DecodeTokenAccount(vaultToken.Data)
	if err != nil {
		return err
	}
	if !vaultTokenState.Mint.Equals(state.TokenMint) {
		return fmt.Errorf("vault token account holds mint %s, vault expects %s: %w", vaultTokenState.Mint, state.TokenMint, ErrInvalidMint)
	}

	remaining := vaultTokenState.Amount
	if remaining > 0 {
		authority := DerivedAuthority(VaultSeedAuthority(e.params.ProgramID, state))
		if err := e.token.Transfer(ctx, vaultToken, ownerToken, authority, remaining); err != nil {
			return err
		}
	}

	state.Close()
	if err := e.storeVaultState(vaultAccount, state); err != nil {
		return err
	}

	e.log.Info(ctx, "vault closed",
		"vault", vaultAccount.Address,
		"owner", owner.Address,
		"swept", remaining,
	)
	return nil
}
