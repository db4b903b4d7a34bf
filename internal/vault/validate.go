package vault

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// AccountRule declares the capabilities one account slot must satisfy.
// Zero-valued fields skip their check.
type AccountRule struct {
	// Name labels the slot in error messages.
	Name string

	// Signer requires the account to have signed the unit of work.
	Signer bool

	// Writable requires the account to be in the declared write set.
	Writable bool

	// Owner, when set, requires the account's owning-program tag to equal
	// it. OwnerErr picks the error kind on failure; nil defaults to
	// ErrInvalidTokenAccount.
	Owner    solana.PublicKey
	OwnerErr error

	// Address, when set, requires the account's address to equal it.
	// AddressErr picks the error kind on failure; nil defaults to
	// ErrInvalidInput.
	Address    solana.PublicKey
	AddressErr error
}

// Validator runs the shared trust-boundary checklist before any handler
// mutates state. All four mutating instructions go through it so the per-slot
// requirements cannot drift apart.
type Validator struct {
	params Params
}

// NewValidator returns a Validator bound to the program identities.
func NewValidator(params Params) *Validator {
	return &Validator{params: params}
}

// Check enforces the rules against the instruction's account list. The list
// must carry at least len(rules) accounts. Checks run in capability phases,
// signers first, then write flags, then identity requirements, and fail fast
// with exactly one error kind.
func (v *Validator) Check(accounts []*Account, rules []AccountRule) error {
	if len(accounts) < len(rules) {
		return fmt.Errorf("%d accounts supplied, need %d: %w", len(accounts), len(rules), ErrInvalidInput)
	}

	for i, rule := range rules {
		if rule.Signer {
			if err := verifySigner(accounts[i], rule.Name); err != nil {
				return err
			}
		}
	}

	for i, rule := range rules {
		if rule.Writable && !accounts[i].IsWritable {
			return fmt.Errorf("account %s must be writable: %w", rule.Name, ErrInvalidInput)
		}
	}

	for i, rule := range rules {
		if !rule.Owner.IsZero() {
			if err := verifyAccountOwner(accounts[i], rule.Owner, rule.OwnerErr); err != nil {
				return fmt.Errorf("account %s: %w", rule.Name, err)
			}
		}
		if !rule.Address.IsZero() && !accounts[i].Address.Equals(rule.Address) {
			kind := rule.AddressErr
			if kind == nil {
				kind = ErrInvalidInput
			}
			return fmt.Errorf("account %s is %s, want %s: %w", rule.Name, accounts[i].Address, rule.Address, kind)
		}
	}
	return nil
}

// verifyAccountOwner checks the owning-program tag. kind defaults to
// ErrInvalidTokenAccount, matching the most common use against custody
// accounts.
func verifyAccountOwner(account *Account, owner solana.PublicKey, kind error) error {
	if kind == nil {
		kind = ErrInvalidTokenAccount
	}
	if !account.Owner.Equals(owner) {
		return fmt.Errorf("owned by %s, want %s: %w", account.Owner, owner, kind)
	}
	return nil
}

// verifySigner requires a signature for the account.
func verifySigner(account *Account, name string) error {
	if !account.IsSigner {
		return fmt.Errorf("account %s must be a signer: %w", name, ErrUnauthorizedAccess)
	}
	return nil
}

// verifyUnallocated requires an account no program has ever written: still
// owned by the system program and carrying no data.
func verifyUnallocated(account *Account, systemProgramID solana.PublicKey, name string) error {
	if !account.Owner.Equals(systemProgramID) {
		return fmt.Errorf("account %s is already initialized: %w", name, ErrAccountNotInitialized)
	}
	if len(account.Data) != 0 {
		return fmt.Errorf("account %s must be empty: %w", name, ErrAccountNotInitialized)
	}
	return nil
}
