package vault

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Persisted record sizes. The layouts are a wire contract shared with any
// other implementation reading the same storage, so both encode and decode
// insist on these exact lengths.
const (
	// VaultStateSize is the serialized size of VaultState:
	// owner 32 + token_mint 32 + token_account 32 + total_deposited 8 +
	// is_closed 1 + bump 1.
	VaultStateSize = 106

	// UserBalanceSize is the serialized size of UserBalance:
	// user 32 + vault 32 + balance 8 + bump 1.
	UserBalanceSize = 73
)

// VaultState is the global ledger record of one vault, one instance per
// (owner, mint) pair. It lives at the derived vault address and is owned by
// the program.
type VaultState struct {
	// Owner may initialize, sweep and close the vault.
	Owner solana.PublicKey

	// TokenMint is the single token type this vault custodies.
	TokenMint solana.PublicKey

	// TokenAccount is the vault's custody account holding the actual tokens.
	TokenAccount solana.PublicKey

	// TotalDeposited tracks the sum of all user balances. An owner sweep
	// resets it to zero without touching the per-user records.
	TotalDeposited uint64

	// IsClosed marks the vault terminal. No field changes after it is set.
	IsClosed bool

	// Bump disambiguates the derived vault address.
	Bump uint8
}

// NewVaultState returns an open vault record with a zero total.
func NewVaultState(owner, tokenMint, tokenAccount solana.PublicKey, bump uint8) *VaultState {
	return &VaultState{
		Owner:        owner,
		TokenMint:    tokenMint,
		TokenAccount: tokenAccount,
		Bump:         bump,
	}
}

// Validate rejects records carrying the zero identity key in any key field.
func (s *VaultState) Validate() error {
	if s.Owner.IsZero() {
		return fmt.Errorf("vault owner is the zero key: %w", ErrInvalidInput)
	}
	if s.TokenMint.IsZero() {
		return fmt.Errorf("vault token mint is the zero key: %w", ErrInvalidInput)
	}
	if s.TokenAccount.IsZero() {
		return fmt.Errorf("vault token account is the zero key: %w", ErrInvalidInput)
	}
	return nil
}

// IsOperational reports whether the vault still accepts instructions.
func (s *VaultState) IsOperational() bool {
	return !s.IsClosed
}

// AddDeposit increases the running total, rejecting u64 wraparound.
func (s *VaultState) AddDeposit(amount uint64) error {
	sum := s.TotalDeposited + amount
	if sum < s.TotalDeposited {
		return fmt.Errorf("vault total %d + %d wraps: %w", s.TotalDeposited, amount, ErrArithmeticOverflow)
	}
	s.TotalDeposited = sum
	return nil
}

// SubtractWithdrawal decreases the running total. Draining below zero is an
// insufficient-funds condition, never a wrap.
func (s *VaultState) SubtractWithdrawal(amount uint64) error {
	if amount > s.TotalDeposited {
		return fmt.Errorf("vault total %d - %d underflows: %w", s.TotalDeposited, amount, ErrInsufficientFunds)
	}
	s.TotalDeposited -= amount
	return nil
}

// ResetTotalDeposited zeroes the running total after an owner sweep.
func (s *VaultState) ResetTotalDeposited() {
	s.TotalDeposited = 0
}

// Close marks the vault terminal.
func (s *VaultState) Close() {
	s.IsClosed = true
}

// MarshalWithEncoder writes the fixed 106-byte layout.
func (s *VaultState) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteBytes(s.Owner[:], false); err != nil {
		return err
	}
	if err := encoder.WriteBytes(s.TokenMint[:], false); err != nil {
		return err
	}
	if err := encoder.WriteBytes(s.TokenAccount[:], false); err != nil {
		return err
	}
	if err := encoder.WriteUint64(s.TotalDeposited, bin.LE); err != nil {
		return err
	}
	if err := encoder.WriteBool(s.IsClosed); err != nil {
		return err
	}
	return encoder.WriteByte(s.Bump)
}

// UnmarshalWithDecoder reads the fixed 106-byte layout. Booleans are strict:
// any byte other than 0 or 1 is corruption.
func (s *VaultState) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(s.Owner[:], pk)

	pk, err = decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(s.TokenMint[:], pk)

	pk, err = decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(s.TokenAccount[:], pk)

	if s.TotalDeposited, err = decoder.ReadUint64(bin.LE); err != nil {
		return err
	}
	if s.IsClosed, err = readStrictBool(decoder); err != nil {
		return err
	}
	s.Bump, err = decoder.ReadByte()
	return err
}

// Marshal serializes the record and checks the result is exactly
// VaultStateSize bytes.
func (s *VaultState) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := s.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		return nil, fmt.Errorf("encode vault state: %w", err)
	}
	if buf.Len() != VaultStateSize {
		return nil, fmt.Errorf("vault state encoded to %d bytes, want %d: %w", buf.Len(), VaultStateSize, ErrInvalidInput)
	}
	return buf.Bytes(), nil
}

// DecodeVaultState parses a stored vault record. The buffer must be exactly
// VaultStateSize bytes; anything else is corruption, never partially parsed.
func DecodeVaultState(data []byte) (*VaultState, error) {
	if len(data) != VaultStateSize {
		return nil, fmt.Errorf("vault state is %d bytes, want %d: %w", len(data), VaultStateSize, ErrInvalidInput)
	}
	s := &VaultState{}
	if err := s.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, fmt.Errorf("decode vault state: %v: %w", err, ErrInvalidInput)
	}
	return s, nil
}

// UserBalance is the per-depositor ledger record, one instance per
// (user, vault) pair, created lazily on first deposit and never deleted.
type UserBalance struct {
	// User is the depositor's identity key.
	User solana.PublicKey

	// Vault points back to the vault record this balance belongs to.
	Vault solana.PublicKey

	// Balance is the user's ledgered amount, maintained with checked
	// arithmetic so it can never go negative.
	Balance uint64

	// Bump disambiguates the derived user-balance address.
	Bump uint8
}

// NewUserBalance returns a zero-balance record for the pair.
func NewUserBalance(user, vaultAddress solana.PublicKey, bump uint8) *UserBalance {
	return &UserBalance{User: user, Vault: vaultAddress, Bump: bump}
}

// Validate rejects records carrying the zero identity key in any key field.
func (b *UserBalance) Validate() error {
	if b.User.IsZero() {
		return fmt.Errorf("user is the zero key: %w", ErrInvalidInput)
	}
	if b.Vault.IsZero() {
		return fmt.Errorf("vault reference is the zero key: %w", ErrInvalidInput)
	}
	return nil
}

// AddBalance increases the balance, rejecting u64 wraparound.
func (b *UserBalance) AddBalance(amount uint64) error {
	sum := b.Balance + amount
	if sum < b.Balance {
		return fmt.Errorf("user balance %d + %d wraps: %w", b.Balance, amount, ErrArithmeticOverflow)
	}
	b.Balance = sum
	return nil
}

// SubtractBalance decreases the balance. Draining below zero is an
// insufficient-funds condition.
func (b *UserBalance) SubtractBalance(amount uint64) error {
	if amount > b.Balance {
		return fmt.Errorf("user balance %d - %d underflows: %w", b.Balance, amount, ErrInsufficientFunds)
	}
	b.Balance -= amount
	return nil
}

// HasSufficientBalance reports whether the ledgered balance covers amount.
func (b *UserBalance) HasSufficientBalance(amount uint64) bool {
	return b.Balance >= amount
}

// MarshalWithEncoder writes the fixed 73-byte layout.
func (b *UserBalance) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteBytes(b.User[:], false); err != nil {
		return err
	}
	if err := encoder.WriteBytes(b.Vault[:], false); err != nil {
		return err
	}
	if err := encoder.WriteUint64(b.Balance, bin.LE); err != nil {
		return err
	}
	return encoder.WriteByte(b.Bump)
}

// UnmarshalWithDecoder reads the fixed 73-byte layout.
func (b *UserBalance) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(b.User[:], pk)

	pk, err = decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(b.Vault[:], pk)

	if b.Balance, err = decoder.ReadUint64(bin.LE); err != nil {
		return err
	}
	b.Bump, err = decoder.ReadByte()
	return err
}

// Marshal serializes the record and checks the result is exactly
// UserBalanceSize bytes.
func (b *UserBalance) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := b.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		return nil, fmt.Errorf("encode user balance: %w", err)
	}
	if buf.Len() != UserBalanceSize {
		return nil, fmt.Errorf("user balance encoded to %d bytes, want %d: %w", buf.Len(), UserBalanceSize, ErrInvalidInput)
	}
	return buf.Bytes(), nil
}

// DecodeUserBalance parses a stored user-balance record. The buffer must be
// exactly UserBalanceSize bytes.
func DecodeUserBalance(data []byte) (*UserBalance, error) {
	if len(data) != UserBalanceSize {
		return nil, fmt.Errorf("user balance is %d bytes, want %d: %w", len(data), UserBalanceSize, ErrInvalidInput)
	}
	b := &UserBalance{}
	if err := b.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, fmt.Errorf("decode user balance: %v: %w", err, ErrInvalidInput)
	}
	return b, nil
}

// readStrictBool decodes a one-byte boolean, rejecting anything but 0 or 1.
func readStrictBool(decoder *bin.Decoder) (bool, error) {
	b, err := decoder.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("invalid bool byte 0x%02x", b)
	}
}
