package vault

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/TanmayDhobale/splvault/internal/logging"
)

// TransferExecutor is the external token program boundary. It must fail hard
// with no partial transfer when the source holds less than amount, and it is
// the only way value moves between custody accounts.
type TransferExecutor interface {
	// Transfer moves amount from one custody account to another. The
	// authority is either the depositing user (who signed the unit) or the
	// vault's derivation-seed credential.
	Transfer(ctx context.Context, from, to *Account, authority Authority, amount uint64) error
}

// Allocator is the storage-allocation boundary used for first-use record
// creation.
type Allocator interface {
	// MinimumBalance returns the funding a record of the given size needs to
	// stay rent-exempt.
	MinimumBalance(size uint64) uint64

	// Create allocates account to the given size under the owning program,
	// debiting the payer. The new record authorizes its own creation through
	// its seed credential.
	Create(ctx context.Context, account *Account, size uint64, owner solana.PublicKey, payer *Account, authority SeedAuthority) error
}

// Engine dispatches decoded instructions to their handlers. It executes
// synchronously against the account snapshots the host assembled; atomicity
// comes from the host committing the snapshots only on success.
type Engine struct {
	params    Params
	validator *Validator
	token     TransferExecutor
	alloc     Allocator
	log       logging.Logger
}

// NewEngine wires the engine with its injected program identities and
// external collaborators.
func NewEngine(params Params, token TransferExecutor, alloc Allocator, log logging.Logger) *Engine {
	return &Engine{
		params:    params,
		validator: NewValidator(params),
		token:     token,
		alloc:     alloc,
		log:       log.With("component", "engine"),
	}
}

// Params returns the injected program identities.
func (e *Engine) Params() Params {
	return e.params
}

// Execute decodes the instruction data and runs the matching handler against
// the supplied accounts. Every failure aborts the whole instruction with
// exactly one error kind; the host discards all attempted mutations.
func (e *Engine) Execute(ctx context.Context, data []byte, accounts []*Account) error {
	ix, err := UnpackInstruction(data)
	if err != nil {
		return err
	}

	switch ix.Kind {
	case InstructionInitialize:
		return e.initialize(ctx, accounts)
	case InstructionDeposit:
		return e.deposit(ctx, accounts, ix.Amount)
	case InstructionWithdraw:
		return e.withdraw(ctx, accounts, ix.Amount)
	case InstructionWithdrawAll:
		return e.withdrawAll(ctx, accounts)
	case InstructionClose:
		return e.close(ctx, accounts)
	default:
		return fmt.Errorf("unknown instruction tag %d: %w", ix.Kind, ErrInvalidInput)
	}
}

// loadVaultState reads a vault record off its account. The owning tag
// decides the failure kind: an unallocated account was never written, a
// foreign tag or a malformed buffer is corruption.
func (e *Engine) loadVaultState(account *Account) (*VaultState, error) {
	if account.Owner.Equals(e.params.SystemProgramID) {
		return nil, fmt.Errorf("vault record %s does not exist: %w", account.Address, ErrAccountNotInitialized)
	}
	if !account.Owner.Equals(e.params.ProgramID) {
		return nil, fmt.Errorf("vault record %s owned by %s: %w", account.Address, account.Owner, ErrInvalidInput)
	}
	state, err := DecodeVaultState(account.Data)
	if err != nil {
		return nil, err
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	return state, nil
}

// storeVaultState validates and writes a vault record back to its account.
func (e *Engine) storeVaultState(account *Account, state *VaultState) error {
	if err := state.Validate(); err != nil {
		return err
	}
	data, err := state.Marshal()
	if err != nil {
		return err
	}
	if len(account.Data) != len(data) {
		return fmt.Errorf("vault record buffer is %d bytes, want %d: %w", len(account.Data), len(data), ErrInvalidInput)
	}
	copy(account.Data, data)
	return nil
}

// loadUserBalance reads a user-balance record off its account under the same
// owning-tag rules as loadVaultState.
func (e *Engine) loadUserBalance(account *Account) (*UserBalance, error) {
	if account.Owner.Equals(e.params.SystemProgramID) {
		return nil, fmt.Errorf("user balance record %s does not exist: %w", account.Address, ErrAccountNotInitialized)
	}
	if !account.Owner.Equals(e.params.ProgramID) {
		return nil, fmt.Errorf("user balance record %s owned by %s: %w", account.Address, account.Owner, ErrInvalidInput)
	}
	balance, err := DecodeUserBalance(account.Data)
	if err != nil {
		return nil, err
	}
	if err := balance.Validate(); err != nil {
		return nil, err
	}
	return balance, nil
}

// storeUserBalance validates and writes a user-balance record back to its
// account.
func (e *Engine) storeUserBalance(account *Account, balance *UserBalance) error {
	if err := balance.Validate(); err != nil {
		return err
	}
	data, err := balance.Marshal()
	if err != nil {
		return err
	}
	if len(account.Data) != len(data) {
		return fmt.Errorf("user balance buffer is %d bytes, want %d: %w", len(account.Data), len(data), ErrInvalidInput)
	}
	copy(account.Data, data)
	return nil
}
