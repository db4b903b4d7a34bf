package vault

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Seed tags for the two derived record addresses.
var (
	vaultSeed       = []byte("vault")
	userBalanceSeed = []byte("user_balance")
)

// DeriveVaultAddress computes the deterministic vault record address for an
// (owner, mint) pair together with its bump. The bump guarantees the address
// is off the signing curve, so only the program itself can authorize it.
func DeriveVaultAddress(programID, owner, tokenMint solana.PublicKey) (solana.PublicKey, uint8, error) {
	seeds := [][]byte{vaultSeed, owner.Bytes(), tokenMint.Bytes()}
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive vault address: %v: %w", err, ErrInvalidInput)
	}
	return addr, bump, nil
}

// DeriveUserBalanceAddress computes the deterministic user-balance record
// address for a (user, vault) pair together with its bump.
func DeriveUserBalanceAddress(programID, user, vaultAddress solana.PublicKey) (solana.PublicKey, uint8, error) {
	seeds := [][]byte{userBalanceSeed, user.Bytes(), vaultAddress.Bytes()}
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive user balance address: %v: %w", err, ErrInvalidInput)
	}
	return addr, bump, nil
}

// VerifyVaultAddress recomputes the vault address from the claimed bump and
// rejects substituted accounts.
func VerifyVaultAddress(programID, claimed, owner, tokenMint solana.PublicKey, bump uint8) error {
	seeds := [][]byte{vaultSeed, owner.Bytes(), tokenMint.Bytes(), {bump}}
	expected, err := solana.CreateProgramAddress(seeds, programID)
	if err != nil {
		return fmt.Errorf("recompute vault address: %v: %w", err, ErrInvalidInput)
	}
	if !expected.Equals(claimed) {
		return fmt.Errorf("vault address %s does not match derivation: %w", claimed, ErrInvalidInput)
	}
	return nil
}

// VerifyUserBalanceAddress recomputes the user-balance address from the
// claimed bump and rejects substituted accounts.
func VerifyUserBalanceAddress(programID, claimed, user, vaultAddress solana.PublicKey, bump uint8) error {
	seeds := [][]byte{userBalanceSeed, user.Bytes(), vaultAddress.Bytes(), {bump}}
	expected, err := solana.CreateProgramAddress(seeds, programID)
	if err != nil {
		return fmt.Errorf("recompute user balance address: %v: %w", err, ErrInvalidInput)
	}
	if !expected.Equals(claimed) {
		return fmt.Errorf("user balance address %s does not match derivation: %w", claimed, ErrInvalidInput)
	}
	return nil
}

// SeedAuthority is the typed derivation-seed credential. The engine hands it
// to the transfer executor to authorize moves out of vault custody without
// holding any private key; the executor proves it by recomputing the address
// from the seeds.
type SeedAuthority struct {
	// Program the seeds are derived under.
	Program solana.PublicKey

	// Seeds including the bump as the final one-byte seed.
	Seeds [][]byte
}

// Address recomputes the derived address the credential stands for.
func (s SeedAuthority) Address() (solana.PublicKey, error) {
	addr, err := solana.CreateProgramAddress(s.Seeds, s.Program)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("recompute seed authority address: %w", err)
	}
	return addr, nil
}

// VaultSeedAuthority builds the credential for a vault record, using the
// stored owner, mint and bump.
func VaultSeedAuthority(programID solana.PublicKey, state *VaultState) SeedAuthority {
	return SeedAuthority{
		Program: programID,
		Seeds:   [][]byte{vaultSeed, state.Owner.Bytes(), state.TokenMint.Bytes(), {state.Bump}},
	}
}

// UserBalanceSeedAuthority builds the credential for a user-balance record.
// Record creation is signed with it because a derived account must authorize
// its own allocation.
func UserBalanceSeedAuthority(programID, user, vaultAddress solana.PublicKey, bump uint8) SeedAuthority {
	return SeedAuthority{
		Program: programID,
		Seeds:   [][]byte{userBalanceSeed, user.Bytes(), vaultAddress.Bytes(), {bump}},
	}
}

// VaultRecordSeedAuthority builds the creation credential for a vault record
// before any state exists, from the raw derivation inputs.
func VaultRecordSeedAuthority(programID, owner, tokenMint solana.PublicKey, bump uint8) SeedAuthority {
	return SeedAuthority{
		Program: programID,
		Seeds:   [][]byte{vaultSeed, owner.Bytes(), tokenMint.Bytes(), {bump}},
	}
}

// Authority identifies who approves a token transfer: either an account that
// signed the current unit of work, or a derivation-seed credential presented
// by the engine. Exactly one of the two fields is set.
type Authority struct {
	Account *Account
	Seed    *SeedAuthority
}

// SignerAuthority wraps a signing account, used when the depositing user
// moves their own funds.
func SignerAuthority(account *Account) Authority {
	return Authority{Account: account}
}

// DerivedAuthority wraps a seed credential, used when the vault moves funds
// out of its own custody.
func DerivedAuthority(seed SeedAuthority) Authority {
	return Authority{Seed: &seed}
}
