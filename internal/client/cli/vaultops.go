package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"

	"github.com/TanmayDhobale/splvault/internal/common"
	"github.com/TanmayDhobale/splvault/internal/host"
	"github.com/TanmayDhobale/splvault/internal/vault"
)

func parseKey(raw string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("bad address %s", raw)
	}
	return pk, nil
}

func parseAmount(raw string) (uint64, error) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad amount %s", raw)
	}
	return n, nil
}

// custodyOf resolves the vault's custody token account from the daemon view.
func (a *App) custodyOf(ctx context.Context, vaultAddr solana.PublicKey) (solana.PublicKey, error) {
	view, err := a.api.GetVault(ctx, vaultAddr.String())
	if err != nil {
		return solana.PublicKey{}, err
	}
	return parseKey(view.TokenAccount)
}

// submit wraps the instructions in a unit, signs it and sends it to the
// daemon, reporting the committed unit id.
func (a *App) submit(ctx context.Context, signer solana.PrivateKey, ixs ...*vault.ProgramInstruction) error {
	signed, err := host.NewSignedUnit(host.NewUnit(ixs...))
	if err != nil {
		return err
	}
	if err := signed.Sign(signer); err != nil {
		return err
	}

	res, err := a.api.SubmitUnit(ctx, signed)
	if err != nil {
		return err
	}

	fmt.Printf("unit %s %s\n", res.UnitID, res.Status)
	return nil
}

// InitVault derives the vault record address for the owner/mint pair and
// submits an Initialize unit signed by the owner.
func (a *App) InitVault(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: init <owner-key> <mint> <custody-token-account>")
	}
	mint, err := parseKey(args[1])
	if err != nil {
		return err
	}
	custody, err := parseKey(args[2])
	if err != nil {
		return err
	}

	owner, err := a.loadSigner(args[0])
	if err != nil {
		return err
	}
	defer common.WipeByteArray(owner)

	vaultAddr, _, err := vault.DeriveVaultAddress(a.params.ProgramID, owner.PublicKey(), mint)
	if err != nil {
		return err
	}

	ix, err := vault.NewInitializeInstruction(a.params, owner.PublicKey(), vaultAddr, custody, mint)
	if err != nil {
		return err
	}
	if err := a.submit(ctx, owner, ix); err != nil {
		return err
	}

	fmt.Printf("vault %s initialized\n", vaultAddr)
	return nil
}

// Deposit moves tokens from the user's token account into the vault custody.
// The custody account is resolved from the daemon and the balance record
// address is derived locally.
func (a *App) Deposit(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return errors.New("usage: deposit <vault> <user-key> <user-token-account> <amount>")
	}
	vaultAddr, err := parseKey(args[0])
	if err != nil {
		return err
	}
	userTok, err := parseKey(args[2])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[3])
	if err != nil {
		return err
	}

	custody, err := a.custodyOf(ctx, vaultAddr)
	if err != nil {
		return err
	}

	user, err := a.loadSigner(args[1])
	if err != nil {
		return err
	}
	defer common.WipeByteArray(user)

	balanceAddr, _, err := vault.DeriveUserBalanceAddress(a.params.ProgramID, user.PublicKey(), vaultAddr)
	if err != nil {
		return err
	}

	ix, err := vault.NewDepositInstruction(a.params, user.PublicKey(), userTok, custody, vaultAddr, balanceAddr, amount)
	if err != nil {
		return err
	}
	return a.submit(ctx, user, ix)
}

// Withdraw moves tokens from the vault custody back to the user's token
// account, up to the user's recorded balance.
func (a *App) Withdraw(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return errors.New("usage: withdraw <vault> <user-key> <user-token-account> <amount>")
	}
	vaultAddr, err := parseKey(args[0])
	if err != nil {
		return err
	}
	userTok, err := parseKey(args[2])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[3])
	if err != nil {
		return err
	}

	custody, err := a.custodyOf(ctx, vaultAddr)
	if err != nil {
		return err
	}

	user, err := a.loadSigner(args[1])
	if err != nil {
		return err
	}
	defer common.WipeByteArray(user)

	balanceAddr, _, err := vault.DeriveUserBalanceAddress(a.params.ProgramID, user.PublicKey(), vaultAddr)
	if err != nil {
		return err
	}

	ix, err := vault.NewWithdrawInstruction(a.params, user.PublicKey(), userTok, custody, vaultAddr, balanceAddr, amount)
	if err != nil {
		return err
	}
	return a.submit(ctx, user, ix)
}

// Sweep drains the vault custody into the owner's token account.
func (a *App) Sweep(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: sweep <vault> <owner-key> <owner-token-account>")
	}
	vaultAddr, err := parseKey(args[0])
	if err != nil {
		return err
	}
	ownerTok, err := parseKey(args[2])
	if err != nil {
		return err
	}

	custody, err := a.custodyOf(ctx, vaultAddr)
	if err != nil {
		return err
	}

	owner, err := a.loadSigner(args[1])
	if err != nil {
		return err
	}
	defer common.WipeByteArray(owner)

	ix, err := vault.NewWithdrawAllInstruction(a.params, owner.PublicKey(), ownerTok, custody, vaultAddr)
	if err != nil {
		return err
	}
	return a.submit(ctx, owner, ix)
}

// CloseVault sweeps any remaining custody tokens to the owner and marks the
// vault record closed.
func (a *App) CloseVault(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: close <vault> <owner-key> <owner-token-account>")
	}
	vaultAddr, err := parseKey(args[0])
	if err != nil {
		return err
	}
	ownerTok, err := parseKey(args[2])
	if err != nil {
		return err
	}

	custody, err := a.custodyOf(ctx, vaultAddr)
	if err != nil {
		return err
	}

	owner, err := a.loadSigner(args[1])
	if err != nil {
		return err
	}
	defer common.WipeByteArray(owner)

	ix, err := vault.NewCloseInstruction(a.params, owner.PublicKey(), ownerTok, custody, vaultAddr)
	if err != nil {
		return err
	}
	if err := a.submit(ctx, owner, ix); err != nil {
		return err
	}

	fmt.Printf("vault %s closed\n", vaultAddr)
	return nil
}
