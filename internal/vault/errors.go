// Package vault implements the custody-ledger program core: the persisted
// VaultState and UserBalance records, the instruction codec, deterministic
// address derivation, account validation, and the transition engine that
// processes the five vault instructions. Callers should use errors.Is to
// match the error kinds below.
package vault

import "errors"

// The closed error taxonomy of the program. Every failed instruction maps to
// exactly one of these kinds; contextual detail is added with %w wrapping so
// the kind survives for errors.Is.
var (
	// ErrInsufficientFunds is returned when a custody account or a ledgered
	// balance is too low for the requested withdrawal or deposit.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnauthorizedAccess is returned when a required signer is missing or
	// the caller is not the vault owner on an owner-only instruction.
	ErrUnauthorizedAccess = errors.New("unauthorized access")

	// ErrInvalidInput covers malformed instruction data, zero amounts, wrong
	// account flags, mismatched derived addresses and corrupt records.
	ErrInvalidInput = errors.New("invalid input")

	// ErrVaultClosed is returned for any instruction against a closed vault.
	ErrVaultClosed = errors.New("vault is closed")

	// ErrInvalidTokenAccount is returned when a custody account fails a
	// structural or ownership check.
	ErrInvalidTokenAccount = errors.New("invalid token account")

	// ErrInvalidMint is returned when a mint fails a structural check or a
	// custody account references a different mint than the vault.
	ErrInvalidMint = errors.New("invalid mint")

	// ErrArithmeticOverflow is returned when a checked balance update would
	// wrap a 64-bit counter.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrAccountNotInitialized is returned when an expected ledger record is
	// absent, or present where an unallocated account was required.
	ErrAccountNotInitialized = errors.New("account not initialized")
)

// errorCodes fixes the numeric code of each kind. The order is part of the
// wire contract and must not change.
var errorCodes = []error{
	ErrInsufficientFunds,
	ErrUnauthorizedAccess,
	ErrInvalidInput,
	ErrVaultClosed,
	ErrInvalidTokenAccount,
	ErrInvalidMint,
	ErrArithmeticOverflow,
	ErrAccountNotInitialized,
}

// ErrorCode resolves err to its numeric program code. The second return is
// false when err does not belong to the taxonomy.
func ErrorCode(err error) (uint32, bool) {
	for i, kind := range errorCodes {
		if errors.Is(err, kind) {
			return uint32(i), true
		}
	}
	return 0, false
}

// ErrorKind unwraps err to the taxonomy sentinel it belongs to, or nil.
func ErrorKind(err error) error {
	for _, kind := range errorCodes {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
