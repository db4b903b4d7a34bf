package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/TanmayDhobale/splvault/internal/client/client"
	"github.com/TanmayDhobale/splvault/internal/vault"
)

// Vaults lists every vault record the daemon knows about.
func (a *App) Vaults(ctx context.Context, _ []string) error {
	vaults, err := a.api.ListVaults(ctx)
	if err != nil {
		return err
	}
	if len(vaults) == 0 {
		fmt.Println("no vaults")
		return nil
	}
	for _, v := range vaults {
		status := "open"
		if v.IsClosed {
			status = "closed"
		}
		fmt.Printf("%s  owner=%s mint=%s deposited=%d %s\n", v.Address, v.Owner, v.TokenMint, v.TotalDeposited, status)
	}
	return nil
}

// VaultInfo shows one vault record, including the live custody amount when
// the custody token account is readable.
func (a *App) VaultInfo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: vault <address>")
	}
	v, err := a.api.GetVault(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("address:   %s\n", v.Address)
	fmt.Printf("owner:     %s\n", v.Owner)
	fmt.Printf("mint:      %s\n", v.TokenMint)
	fmt.Printf("custody:   %s\n", v.TokenAccount)
	fmt.Printf("deposited: %d\n", v.TotalDeposited)
	if v.CustodyAmount != nil {
		fmt.Printf("held:      %d\n", *v.CustodyAmount)
	}
	fmt.Printf("closed:    %v\n", v.IsClosed)
	fmt.Printf("bump:      %d\n", v.Bump)
	return nil
}

// Balances lists the per-user balance records of a vault.
func (a *App) Balances(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: balances <vault-address>")
	}
	balances, err := a.api.ListBalances(ctx, args[0])
	if err != nil {
		return err
	}
	if len(balances) == 0 {
		fmt.Println("no balances")
		return nil
	}
	for _, b := range balances {
		fmt.Printf("%s  user=%s balance=%d\n", b.Address, b.User, b.Balance)
	}
	return nil
}

// AccountInfo shows a raw ledger record.
func (a *App) AccountInfo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: account <address>")
	}
	acc, err := a.api.GetAccount(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("address:  %s\n", acc.Address)
	fmt.Printf("owner:    %s\n", acc.Owner)
	fmt.Printf("lamports: %d\n", acc.Lamports)
	fmt.Printf("data:     %d bytes\n", len(acc.Data))
	return nil
}

// VaultAddr derives the vault record address for an owner/mint pair.
func (a *App) VaultAddr(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: vaultaddr <owner> <mint>")
	}
	owner, err := parseKey(args[0])
	if err != nil {
		return err
	}
	mint, err := parseKey(args[1])
	if err != nil {
		return err
	}

	addr, bump, err := vault.DeriveVaultAddress(a.params.ProgramID, owner, mint)
	if err != nil {
		return err
	}
	fmt.Printf("%s (bump %d)\n", addr, bump)
	return nil
}

// BalanceAddr derives the balance record address for a user/vault pair.
func (a *App) BalanceAddr(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: balanceaddr <user> <vault>")
	}
	user, err := parseKey(args[0])
	if err != nil {
		return err
	}
	vaultAddr, err := parseKey(args[1])
	if err != nil {
		return err
	}

	addr, bump, err := vault.DeriveUserBalanceAddress(a.params.ProgramID, user, vaultAddr)
	if err != nil {
		return err
	}
	fmt.Printf("%s (bump %d)\n", addr, bump)
	return nil
}

// Seed loads a JSON array of accounts from a file and seeds them into the
// daemon's ledger. Meant for dev environments: wallets, mints and token
// accounts have to exist before the first Initialize.
func (a *App) Seed(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: seed <file.json>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var accounts []client.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	n, err := a.api.SeedAccounts(ctx, accounts)
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d accounts\n", n)
	return nil
}
