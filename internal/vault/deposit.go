package vault

import (
	"context"
	"fmt"
)

// deposit moves amount tokens from the depositor's token account into the
// vault's custody account and credits the depositor's balance record,
// creating that record on first use. Account order: user, user token
// account, vault token account, vault record, user balance record, token
// program, system program.
func (e *Engine) deposit(ctx context.Context, accounts []*Account, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("deposit amount must be greater than zero: %w", ErrInvalidInput)
	}

	rules := []AccountRule{
		{Name: "user", Signer: true},
		{Name: "user token account", Writable: true},
		{Name: "vault token account", Writable: true},
		{Name: "vault record", Writable: true},
		{Name: "user balance record", Writable: true},
		{Name: "token program", Address: e.params.TokenProgramID, AddressErr: ErrInvalidTokenAccount},
		{Name: "system program", Address: e.params.SystemProgramID, AddressErr: ErrInvalidInput},
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
	if userTokenState.Amount < amount {
		return fmt.Errorf("user token account holds %d, deposit needs %d: %w", userTokenState.Amount, amount, ErrInsufficientFunds)
	}

	vaultTokenState, err := DecodeTokenAccount(vaultToken.Data)
	if err != nil {
		return err
	}
	if !vaultTokenState.Mint.Equals(state.TokenMint) {
		return fmt.Errorf("vault token account holds mint %s, vault expects %s: %w", vaultTokenState.Mint, state.TokenMint, ErrInvalidMint)
	}

	derived, bump, err := DeriveUserBalanceAddress(e.params.ProgramID, user.Address, vaultAccount.Address)
	if err != nil {
		return err
	}
	if !derived.Equals(balanceAccount.Address) {
		return fmt.Errorf("user balance address %s does not match derivation %s: %w", balanceAccount.Address, derived, ErrInvalidInput)
	}

	var balance *UserBalance
	switch {
	case balanceAccount.Owner.Equals(e.params.SystemProgramID):
		authority := UserBalanceSeedAuthority(e.params.ProgramID, user.Address, vaultAccount.Address, bump)
		if err := e.alloc.Create(ctx, balanceAccount, UserBalanceSize, e.params.ProgramID, user, authority); err != nil {
			e.log.Error(ctx, "user balance allocation failed", "balance", balanceAccount.Address, "error", err)
			return fmt.Errorf("allocate user balance record: %w", ErrInvalidInput)
		}
		balance = NewUserBalance(user.Address, vaultAccount.Address, bump)
	case balanceAccount.Owner.Equals(e.params.ProgramID):
		balance, err = e.loadUserBalance(balanceAccount)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("user balance record owned by %s: %w", balanceAccount.Owner, ErrInvalidInput)
	}
	if err := balance.Validate(); err != nil {
		return err
	}

	if err := e.token.Transfer(ctx, userToken, vaultToken, SignerAuthority(user), amount); err != nil {
		return err
	}

	if err := balance.AddBalance(amount); err != nil {
		return err
	}
	if err := state.AddDeposit(amount); err != nil {
		return err
	}

	if err := e.storeUserBalance(balanceAccount, balance); err != nil {
		return err
	}
	if err := e.storeVaultState(vaultAccount, state); err != nil {
		return err
	}

	e.log.Info(ctx, "deposit recorded",
		"vault", vaultAccount.Address,
		"user", user.Address,
		"amount", amount,
		"balance", balance.Balance,
		"total_deposited", state.TotalDeposited,
	)
	return nil
}
