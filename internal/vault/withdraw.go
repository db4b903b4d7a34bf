package vault

import (
	"context"
	"fmt"
)

// withdraw moves amount tokens from the vault's custody account back to the
// user's token account and debits the user's balance record. The vault
// record signs the transfer through its seed authority. Account order:
// user, user token account, vault token account, vault record, user balance
// record, token program.
func (e *Engine) withdraw(ctx context.Context, accounts []*Account, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("withdraw amount must be greater than zero: %w", ErrInvalidInput)
	}

	rules := []AccountRule{
		{Name: "user", Signer: true},
		{Name: "user token account", Writable: true},
		{Name: "vault token account", Writable: true},
		{Name: "vault record", Writable: true},
		{Name: "user balance record", Writable: true},
		{Name: "token program", Address: e.params.TokenProgramID, AddressErr: ErrInvalidTokenAccount},
	}
	if err := e.validator.Check(accounts, rules); err != nil {
		return err
	}

	user := accounts[0]
	userToken := accounts[1]
	vaultToken := accounts[2]
	vaultAccount := accounts[3]
	balanceAccount := accounts[4]

	state, err := e.loadVaultState(vaultAccount)
	if err != nil {
		return err
	}
	if !state.IsOperational() {
		return fmt.Errorf("vault %s: %w", vaultAccount.Address, ErrVaultClosed)
	}

	if err := verifyAccountOwner(userToken, e.params.TokenProgramID, ErrInvalidTokenAccount); err != nil {
		return err
	}
	if err := verifyAccountOwner(vaultToken, e.params.TokenProgramID, ErrInvalidTokenAccount); err != nil {
		return err
	}

	userTokenState, err := DecodeTokenAccount(userToken.Data)
	if err != nil {
		return err
	}
	if !userTokenState.Mint.Equals(state.TokenMint) {
		return fmt.Errorf("user token account holds mint %s, vault expects %s: %w", userTokenState.Mint, state.TokenMint, ErrInvalidMint)
	}

	vaultTokenState, err := DecodeTokenAccount(vaultToken.Data)
	if err != nil {
		return err
	}
	if !vaultTokenState.Mint.Equals(state.TokenMint) {
		return fmt.Errorf("vault token account holds mint %s, vault expects %s: %w", vaultTokenState.Mint, state.TokenMint, ErrInvalidMint)
	}
	if vaultTokenState.Amount < amount {
		return fmt.Errorf("vault custody holds %d, withdrawal needs %d: %w", vaultTokenState.Amount, amount, ErrInsufficientFunds)
	}

	derived, _, err := DeriveUserBalanceAddress(e.params.ProgramID, user.Address, vaultAccount.Address)
	if err != nil {
		return err
	}
	if !derived.Equals(balanceAccount.Address) {
		return fmt.Errorf("user balance address %s does not match derivation %s: %w", balanceAccount.Address, derived, ErrInvalidInput)
	}

	balance, err := e.loadUserBalance(balanceAccount)
	if err != nil {
		return err
	}
	if !balance.HasSufficientBalance(amount) {
		return fmt.Errorf("user balance %d, withdrawal needs %d: %w", balance.Balance, amount, ErrInsufficientFunds)
	}

	authority := DerivedAuthority(VaultSeedAuthority(e.params.ProgramID, state))
	if err := e.token.Transfer(ctx, vaultToken, userToken, authority, amount); err != nil {
		return err
	}

	if err := balance.SubtractBalance(amount); err != nil {
		return err
	}
	if err := state.SubtractWithdrawal(amount); err != nil {
		return err
	}

	if err := e.storeUserBalance(balanceAccount, balance); err != nil {
		return err
	}
	if err := e.storeVaultState(vaultAccount, state); err != nil {
		return err
	}

	e.log.Info(ctx, "withdrawal recorded",
		"vault", vaultAccount.Address,
		"user", user.Address,
		"amount", amount,
		"balance", balance.Balance,
		"total_deposited", state.TotalDeposited,
	)
	return nil
}

// withdrawAll sweeps the vault's entire custody holdings to the owner's
// token account and resets the deposit counter. Individual balance records
// are left untouched. Account order: owner, owner token account, vault
// token account, vault record, token program.
func (e *Engine) withdrawAll(ctx context.Context, accounts []*Account) error {
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

	total := vaultTokenState.Amount
	if total == 0 {
		e.log.Info(ctx, "withdraw all skipped, custody empty", "vault", vaultAccount.Address)
		return nil
	}

	authority := DerivedAuthority(VaultSeedAuthority(e.params.ProgramID, state))
	if err := e.token.Transfer(ctx, vaultToken, ownerToken, authority, total); err != nil {
		return err
	}

	state.ResetTotalDeposited()
	if err := e.storeVaultState(vaultAccount, state); err != nil {
		return err
	}

	e.log.Info(ctx, "vault swept",
		"vault", vaultAccount.Address,
		"owner", owner.Address,
		"amount", total,
	)
	return nil
}
