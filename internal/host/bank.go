// Package host runs signed units of work against the ledger engine. It
// stands in for the runtime around the program: signature verification,
// account loading, rent, token movement, allocation and the atomic commit
// of every account a successful unit touched.
package host

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/TanmayDhobale/splvault/internal/logging"
	"github.com/TanmayDhobale/splvault/internal/store"
	"github.com/TanmayDhobale/splvault/internal/vault"
)

// VaultClosed describes a vault that reached its terminal state inside a
// committed unit.
type VaultClosed struct {
	UnitID  string
	Address solana.PublicKey
	State   vault.VaultState
}

// Bank owns the account registry. It loads snapshots for a unit, runs the
// engine over them and commits the written set in one store transaction.
// Units execute strictly one at a time.
type Bank struct {
	mu      sync.Mutex
	store   store.AccountStore
	engine  *vault.Engine
	log     logging.Logger
	onClose func(ctx context.Context, ev VaultClosed)
}

func NewBank(st store.AccountStore, engine *vault.Engine, log logging.Logger) *Bank {
	return &Bank{store: st, engine: engine, log: log.With("component", "bank")}
}

// Params exposes the engine's runtime identifiers.
func (b *Bank) Params() vault.Params {
	return b.engine.Params()
}

// OnVaultClosed registers a hook fired after a unit that closed a vault has
// committed. The hook runs synchronously under the bank lock.
func (b *Bank) OnVaultClosed(hook func(ctx context.Context, ev VaultClosed)) {
	b.onClose = hook
}

// Seed installs raw account snapshots directly, bypassing the engine. It
// backs operator fixtures: mints, opening token balances, funded wallets.
func (b *Bank) Seed(ctx context.Context, records ...*store.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.Put(ctx, records...); err != nil {
		return fmt.Errorf("seed accounts: %w", err)
	}
	b.log.Info(ctx, "accounts seeded", "count", len(records))
	return nil
}

// Execute verifies, runs and commits one signed unit. On any failure the
// working set is discarded and nothing reaches the store.
func (b *Bank) Execute(ctx context.Context, signed *SignedUnit) (*Unit, error) {
	unit, signers, err := signed.Verify()
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	working := make(map[solana.PublicKey]*vault.Account)
	written := make(map[solana.PublicKey]bool)
	var closed []VaultClosed

	for _, ix := range unit.Instructions {
		if !ix.Program.Equals(b.engine.Params().ProgramID) {
			return nil, fmt.Errorf("program %s: %w", ix.Program, ErrUnknownProgram)
		}

		accounts := make([]*vault.Account, 0, len(ix.Accounts))
		for _, ref := range ix.Accounts {
			snap, err := b.snapshot(ctx, working, ref.Address)
			if err != nil {
				return nil, err
			}
			snap.IsSigner = ref.Signer && signers[ref.Address]
			snap.IsWritable = ref.Writable
			if ref.Writable {
				written[ref.Address] = true
			}
			accounts = append(accounts, snap)
		}

		b.log.Debug(ctx, "dispatching instruction", "unit", unit.ID, "accounts", len(accounts))
		if err := b.engine.Execute(ctx, ix.Data, accounts); err != nil {
			b.log.Warn(ctx, "unit rejected", "unit", unit.ID, "error", err)
			return nil, err
		}

		if parsed, perr := vault.UnpackInstruction(ix.Data); perr == nil && parsed.Kind == vault.InstructionClose {
			// The vault record rides in the fourth slot of a close.
			if len(accounts) > 3 {
				if state, derr := vault.DecodeVaultState(accounts[3].Data); derr == nil {
					closed = append(closed, VaultClosed{
						UnitID:  unit.ID,
						Address: accounts[3].Address,
						State:   *state,
					})
				}
			}
		}
	}

	records := make([]*store.Record, 0, len(written))
	for addr := range written {
		snap := working[addr]
		records = append(records, &store.Record{
			Address:  addr,
			Owner:    snap.Owner,
			Lamports: snap.Lamports,
			Data:     snap.Data,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Address.String() < records[j].Address.String()
	})

	if len(records) > 0 {
		if err := b.store.Put(ctx, records...); err != nil {
			return nil, fmt.Errorf("commit unit %s: %w", unit.ID, err)
		}
	}

	b.log.Info(ctx, "unit committed",
		"unit", unit.ID, "instructions", len(unit.Instructions), "accounts", len(records))

	if b.onClose != nil {
		for _, ev := range closed {
			b.onClose(ctx, ev)
		}
	}
	return unit, nil
}

// snapshot returns the unit-local copy of an account, loading it on first
// touch. Addresses the store has never seen come back as unallocated:
// system-owned, unfunded, no data.
func (b *Bank) snapshot(ctx context.Context, working map[solana.PublicKey]*vault.Account, address solana.PublicKey) (*vault.Account, error) {
	if snap, ok := working[address]; ok {
		return snap, nil
	}

	rec, err := b.store.Get(ctx, address)
	if errors.Is(err, store.ErrNotFound) {
		snap := &vault.Account{Address: address, Owner: b.engine.Params().SystemProgramID}
		working[address] = snap
		return snap, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", address, err)
	}

	snap := &vault.Account{
		Address:  rec.Address,
		Owner:    rec.Owner,
		Lamports: rec.Lamports,
		Data:     rec.Data,
	}
	working[address] = snap
	return snap, nil
}
