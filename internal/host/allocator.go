package host

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/TanmayDhobale/splvault/internal/logging"
	"github.com/TanmayDhobale/splvault/internal/vault"
)

// SystemAllocator provisions fresh program accounts, standing in for the
// system program's create-account path. New accounts are funded to the
// rent-exemption minimum out of the payer's lamports.
type SystemAllocator struct {
	rent   Rent
	system solana.PublicKey
	log    logging.Logger
}

func NewSystemAllocator(rent Rent, params vault.Params, log logging.Logger) *SystemAllocator {
	return &SystemAllocator{
		rent:   rent,
		system: params.SystemProgramID,
		log:    log.With("component", "allocator"),
	}
}

// MinimumBalance returns the rent-exemption deposit for the given data size.
func (a *SystemAllocator) MinimumBalance(size uint64) uint64 {
	return a.rent.MinimumBalance(size)
}

// Create funds, sizes and assigns a brand-new account. The seed credential
// must recompute to the account's address; the target must be untouched
// (system-owned, no data, no funds).
func (a *SystemAllocator) Create(ctx context.Context, account *vault.Account, size uint64, owner solana.PublicKey, payer *vault.Account, authority vault.SeedAuthority) error {
	derived, err := authority.Address()
	if err != nil {
		return err
	}
	if !derived.Equals(account.Address) {
		return fmt.Errorf("seed credential %s cannot open %s: %w", derived, account.Address, ErrMissingSignature)
	}

	if !account.Unallocated(a.system) || account.Lamports > 0 {
		return fmt.Errorf("account %s: %w", account.Address, ErrAccountInUse)
	}

	minimum := a.rent.MinimumBalance(size)
	if payer.Lamports < minimum {
		return fmt.Errorf("payer %s holds %d of %d: %w", payer.Address, payer.Lamports, minimum, ErrInsufficientFunding)
	}

	payer.Lamports -= minimum
	account.Lamports = minimum
	account.Owner = owner
	account.Data = make([]byte, size)

	a.log.Info(ctx, "account allocated", "address", account.Address, "size", size, "owner", owner)
	return nil
}
