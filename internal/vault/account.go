package vault

import "github.com/gagliardetto/solana-go"

// Account is the engine's view of one account referenced by an instruction.
// The host assembles these snapshots before execution and commits them back
// only when the whole instruction succeeds, so handlers may mutate them
// freely.
type Account struct {
	// Address is the account's identity key.
	Address solana.PublicKey

	// Owner is the owning-program tag. Records owned by the system program
	// count as unallocated.
	Owner solana.PublicKey

	// Lamports funds the account's storage.
	Lamports uint64

	// Data is the stored payload. Ledger records require an exact length.
	Data []byte

	// IsSigner is set by the host after verifying a signature for this
	// address on the submitted unit of work.
	IsSigner bool

	// IsWritable marks the account as part of the declared write set.
	IsWritable bool
}

// Clone returns a deep copy. Hosts snapshot accounts with it so a failed
// instruction can be discarded without touching durable state.
func (a *Account) Clone() *Account {
	c := *a
	if a.Data != nil {
		c.Data = make([]byte, len(a.Data))
		copy(c.Data, a.Data)
	}
	return &c
}

// Unallocated reports whether the account is still owned by the system
// program and carries no data, i.e. it has never been written by any program.
func (a *Account) Unallocated(systemProgramID solana.PublicKey) bool {
	return a.Owner.Equals(systemProgramID) && len(a.Data) == 0
}
