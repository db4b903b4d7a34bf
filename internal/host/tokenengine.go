package host

import (
	"context"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"

	"github.com/TanmayDhobale/splvault/internal/logging"
	"github.com/TanmayDhobale/splvault/internal/vault"
)

// TokenEngine moves balances between token accounts, standing in for the
// token program. All movement happens inside the 64-bit amount field of the
// 165-byte account layout; the engine never touches lamports.
type TokenEngine struct {
	params vault.Params
	log    logging.Logger
}

func NewTokenEngine(params vault.Params, log logging.Logger) *TokenEngine {
	return &TokenEngine{params: params, log: log.With("component", "token")}
}

// Transfer debits from and credits to after checking the authority against
// the source account's owner field. A signer authority must have signed the
// unit and match the owner; a seed credential must recompute to it.
func (e *TokenEngine) Transfer(ctx context.Context, from, to *vault.Account, authority vault.Authority, amount uint64) error {
	if !from.Owner.Equals(e.params.TokenProgramID) || !to.Owner.Equals(e.params.TokenProgramID) {
		return fmt.Errorf("transfer outside the token program: %w", vault.ErrInvalidTokenAccount)
	}

	src, err := vault.DecodeTokenAccount(from.Data)
	if err != nil {
		return err
	}
	dst, err := vault.DecodeTokenAccount(to.Data)
	if err != nil {
		return err
	}

	if src.IsFrozen() || dst.IsFrozen() {
		return fmt.Errorf("frozen token account: %w", vault.ErrInvalidTokenAccount)
	}
	if !src.Mint.Equals(dst.Mint) {
		return fmt.Errorf("mint mismatch %s vs %s: %w", src.Mint, dst.Mint, vault.ErrInvalidMint)
	}

	if err := checkTransferAuthority(src.Owner, authority); err != nil {
		return err
	}

	if src.Amount < amount {
		return fmt.Errorf("token balance %d short of %d: %w", src.Amount, amount, vault.ErrInsufficientFunds)
	}

	// A self-transfer validates like any other but moves nothing.
	if from.Address.Equals(to.Address) {
		return nil
	}

	if dst.Amount > math.MaxUint64-amount {
		return fmt.Errorf("destination balance: %w", vault.ErrArithmeticOverflow)
	}
	src.Amount -= amount
	dst.Amount += amount

	fromRaw, err := src.Marshal()
	if err != nil {
		return err
	}
	toRaw, err := dst.Marshal()
	if err != nil {
		return err
	}
	from.Data = fromRaw
	to.Data = toRaw

	e.log.Info(ctx, "tokens moved", "from", from.Address, "to", to.Address, "amount", amount)
	return nil
}

func checkTransferAuthority(owner solana.PublicKey, authority vault.Authority) error {
	switch {
	case authority.Account != nil:
		holder := authority.Account
		if !holder.IsSigner {
			return fmt.Errorf("authority %s did not sign: %w", holder.Address, vault.ErrUnauthorizedAccess)
		}
		if !holder.Address.Equals(owner) {
			return fmt.Errorf("authority %s does not hold the source account: %w", holder.Address, vault.ErrUnauthorizedAccess)
		}
	case authority.Seed != nil:
		derived, err := authority.Seed.Address()
		if err != nil {
			return err
		}
		if !derived.Equals(owner) {
			return fmt.Errorf("seed credential %s does not hold the source account: %w", derived, vault.ErrUnauthorizedAccess)
		}
	default:
		return fmt.Errorf("transfer without authority: %w", vault.ErrUnauthorizedAccess)
	}
	return nil
}

// NewMintAccount builds a rent-funded, initialized mint snapshot. It backs
// operator seeding and test fixtures.
func (e *TokenEngine) NewMintAccount(address, authority solana.PublicKey, supply uint64, decimals uint8, rent Rent) (*vault.Account, error) {
	raw, err := vault.NewMint(&authority, supply, decimals).Marshal()
	if err != nil {
		return nil, err
	}
	return &vault.Account{
		Address:  address,
		Owner:    e.params.TokenProgramID,
		Lamports: rent.MinimumBalance(vault.MintSize),
		Data:     raw,
	}, nil
}

// NewHolding builds a rent-funded token account snapshot with an opening
// balance.
func (e *TokenEngine) NewHolding(address, mint, owner solana.PublicKey, amount uint64, rent Rent) (*vault.Account, error) {
	raw, err := vault.NewTokenAccount(mint, owner, amount).Marshal()
	if err != nil {
		return nil, err
	}
	return &vault.Account{
		Address:  address,
		Owner:    e.params.TokenProgramID,
		Lamports: rent.MinimumBalance(vault.TokenAccountSize),
		Data:     raw,
	}, nil
}
