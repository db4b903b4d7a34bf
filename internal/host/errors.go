package host

import "errors"

// Errors raised by the host itself, before or around engine execution.
// Engine-level failures keep their own taxonomy from the vault package.
var (
	// ErrMalformedUnit reports a unit envelope that does not decode.
	ErrMalformedUnit = errors.New("malformed unit")

	// ErrMissingSignature reports a required signer with no matching
	// signature, or a seed credential that does not open the account.
	ErrMissingSignature = errors.New("missing required signature")

	// ErrBadSignature reports a signature that does not verify over the
	// unit payload.
	ErrBadSignature = errors.New("signature verification failed")

	// ErrUnknownProgram reports an instruction addressed to a program this
	// host does not run.
	ErrUnknownProgram = errors.New("unknown program")

	// ErrAccountInUse reports an allocation over an account that already
	// holds data, funds or a foreign owner.
	ErrAccountInUse = errors.New("account already in use")

	// ErrInsufficientFunding reports a payer short of the rent-exemption
	// minimum for a new account.
	ErrInsufficientFunding = errors.New("insufficient funding for allocation")
)
